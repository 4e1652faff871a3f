package capture

import (
	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/dsp"
)

// Window size bounds. Below 4 samples there is nothing to look at; above
// 2048 the per-tick cost stops fitting a frame budget.
const (
	MinWindowSize     = 4
	MaxWindowSize     = 2048
	DefaultWindowSize = 256
)

// Source supplies the most recent audio samples and transport state. It
// is owned by the playback layer; the sampler only observes it.
type Source interface {
	// TimeDomainWindow returns a freshly allocated slice of the most
	// recent n mono samples in [-1, 1], or nil when no audio has been
	// captured yet.
	TimeDomainWindow(n int) []float64
	Playing() bool
	SampleRate() int
}

// Snapshot is one complete capture: the time-domain window it was
// computed from, the full spectrum, and the per-term twiddle series for
// the bin that was selected at capture time. A snapshot is never
// partially updated; the sampler replaces it wholesale or not at all.
type Snapshot struct {
	Window   []float64
	Spectrum []dsp.BinResult
	Series   []dsp.Term
	Bin      int
	// Cursor cycles over the series indices, one step per tick, for
	// highlighting the "active" term.
	Cursor int
}

// Sampler drives the DFT engine once per animation tick while the
// transport plays, and freezes the last results while it is paused.
//
// All methods must be called from a single goroutine (the UI update
// loop); the snapshot swap is a plain pointer assignment, so with one
// writer no locking is needed.
type Sampler struct {
	engine     *dsp.Engine
	source     Source
	windowSize int
	bin        int
	frozen     *Snapshot
}

// New returns a Sampler reading from source with the default window size.
func New(source Source) *Sampler {
	return &Sampler{
		engine:     dsp.NewEngine(),
		source:     source,
		windowSize: DefaultWindowSize,
	}
}

// Tick captures the current window and recomputes the spectrum and
// twiddle series, replacing the frozen snapshot. While the transport is
// paused, or when no window is available yet, the tick is a no-op and
// the previous snapshot stays served.
func (s *Sampler) Tick() {
	if !s.source.Playing() {
		return
	}
	window := s.source.TimeDomainWindow(s.windowSize)
	if window == nil {
		return
	}

	spectrum, err := s.engine.Spectrum(window)
	if err != nil {
		// Malformed capture: skip the tick, keep the last good snapshot.
		return
	}
	bin := clampBin(s.bin, len(spectrum))
	series, err := s.engine.TwiddleSeries(window, bin)
	if err != nil {
		return
	}

	cursor := 0
	if prev := s.frozen; prev != nil && len(series) > 0 {
		cursor = (prev.Cursor + 1) % len(series)
	}

	s.frozen = &Snapshot{
		Window:   window,
		Spectrum: spectrum,
		Series:   series,
		Bin:      bin,
		Cursor:   cursor,
	}
}

// Current returns the frozen snapshot: the live result while playing,
// the last-played result while paused, nil before the first capture.
// Callers must not mutate it.
func (s *Sampler) Current() *Snapshot {
	return s.frozen
}

// Bin returns the selected frequency bin.
func (s *Sampler) Bin() int {
	return s.bin
}

// SetBin selects the frequency bin whose twiddle series is exposed.
// While playing, the next tick picks it up. While paused, the series for
// the new bin is recomputed against the frozen window immediately, with
// the spectrum and window left untouched, so the per-term view never
// shows a stale bin.
func (s *Sampler) SetBin(k int) {
	s.bin = clampBin(k, s.windowSize)
	if s.source.Playing() {
		return
	}

	prev := s.frozen
	if prev == nil {
		return
	}
	bin := clampBin(s.bin, len(prev.Spectrum))
	series, err := s.engine.TwiddleSeries(prev.Window, bin)
	if err != nil {
		return
	}
	next := *prev
	next.Series = series
	next.Bin = bin
	if len(series) > 0 && next.Cursor >= len(series) {
		next.Cursor = 0
	}
	s.frozen = &next
}

// WindowSize returns the current window length N.
func (s *Sampler) WindowSize() int {
	return s.windowSize
}

// SetWindowSize changes the window length, clamped to
// [MinWindowSize, MaxWindowSize]. The new length takes effect on the
// next tick; the frozen snapshot keeps the old length until then.
func (s *Sampler) SetWindowSize(n int) {
	s.windowSize = min(max(n, MinWindowSize), MaxWindowSize)
	s.bin = clampBin(s.bin, s.windowSize)
}

// SampleRate reports the source sample rate, for frequency labeling only;
// the DFT itself works in bin-index space.
func (s *Sampler) SampleRate() int {
	return s.source.SampleRate()
}

// BinFrequency returns the analyzed frequency of bin k in Hz:
// k · sampleRate / N.
func (s *Sampler) BinFrequency(k int) float64 {
	return float64(k) * float64(s.source.SampleRate()) / float64(s.windowSize)
}

func clampBin(k, bins int) int {
	if k < 0 {
		return 0
	}
	if k >= bins {
		return bins - 1
	}
	return k
}
