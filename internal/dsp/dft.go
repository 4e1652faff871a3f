package dsp

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxBins bounds the work done for a single window. A full
// spectrum is O(N²), so at 1024 bins the worst case stays near 10⁶
// multiply-adds and fits comfortably inside one animation frame.
const DefaultMaxBins = 1024

// ErrInvalidWindow reports a sample window the engine refuses to
// transform: empty, or containing non-finite values.
var ErrInvalidWindow = errors.New("dsp: invalid sample window")

// BinResult is the DFT output for one frequency bin. Phase is in
// degrees, in (-180, 180]; Magnitude is always >= 0.
type BinResult struct {
	Re        float64
	Im        float64
	Magnitude float64
	Phase     float64
}

// Term is one addend of the DFT summation for a selected bin:
// Weighted = Amplitude × Twiddle.
type Term struct {
	Twiddle   Complex
	Amplitude float64
	Weighted  Complex
}

// Engine computes the DFT by direct summation. This is intentionally the
// O(N²) textbook definition rather than an FFT: every term of every sum
// stays individually inspectable through TwiddleSeries.
type Engine struct {
	// MaxBins caps both the number of bins Spectrum produces and the
	// summation length per bin. Windows longer than MaxBins yield a
	// truncated spectrum, not an aliased one; callers must treat the
	// returned length as authoritative. Zero or negative selects
	// DefaultMaxBins.
	MaxBins int
}

// NewEngine returns an Engine with the default bin cap.
func NewEngine() *Engine {
	return &Engine{MaxBins: DefaultMaxBins}
}

func (e *Engine) binCap() int {
	if e.MaxBins <= 0 {
		return DefaultMaxBins
	}
	return e.MaxBins
}

// Bins returns the number of bins the engine computes for a window of n
// samples: min(n, MaxBins).
func (e *Engine) Bins(n int) int {
	return min(n, e.binCap())
}

// Bin computes the DFT coefficient for bin k by direct summation, with
// real and imaginary parts accumulated separately. k is clamped into the
// computed bin range rather than rejected, so a stale selection after a
// window resize degrades gracefully.
func (e *Engine) Bin(samples []float64, k int) (Complex, error) {
	if err := validateWindow(samples); err != nil {
		return Complex{}, err
	}
	return e.bin(samples, e.clampBin(samples, k)), nil
}

func (e *Engine) bin(samples []float64, k int) Complex {
	n := float64(len(samples))
	var re, im float64
	for idx := range e.Bins(len(samples)) {
		w := Twiddle(n, k, idx)
		re += samples[idx] * w.Re
		im += samples[idx] * w.Im
	}
	return Complex{Re: re, Im: im}
}

// Spectrum computes every bin for the window, one BinResult per
// k in [0, min(N, MaxBins)).
func (e *Engine) Spectrum(samples []float64) ([]BinResult, error) {
	if err := validateWindow(samples); err != nil {
		return nil, err
	}
	out := make([]BinResult, e.Bins(len(samples)))
	for k := range out {
		c := e.bin(samples, k)
		out[k] = BinResult{
			Re:        c.Re,
			Im:        c.Im,
			Magnitude: c.Magnitude(),
			Phase:     c.PhaseDegrees(),
		}
	}
	return out, nil
}

// TwiddleSeries exposes every term of the summation for bin k, in
// summation order. Summing the Weighted fields reproduces Bin(samples, k).
func (e *Engine) TwiddleSeries(samples []float64, k int) ([]Term, error) {
	if err := validateWindow(samples); err != nil {
		return nil, err
	}
	k = e.clampBin(samples, k)
	n := float64(len(samples))
	out := make([]Term, e.Bins(len(samples)))
	for idx := range out {
		w := Twiddle(n, k, idx)
		out[idx] = Term{
			Twiddle:   w,
			Amplitude: samples[idx],
			Weighted:  w.Scale(samples[idx]),
		}
	}
	return out, nil
}

func (e *Engine) clampBin(samples []float64, k int) int {
	if k < 0 {
		return 0
	}
	if last := e.Bins(len(samples)) - 1; k > last {
		return last
	}
	return k
}

func validateWindow(samples []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidWindow)
	}
	for i, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrInvalidWindow, i)
		}
	}
	return nil
}
