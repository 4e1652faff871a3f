package visualizer

import (
	"strings"

	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/capture"
)

var waterfallChars = []rune{' ', '.', ':', '-', '=', '+', '*', '#', '%', '@'}

// Waterfall renders a scrolling heatmap of bin magnitudes, newest row
// on top. Only the lower half of the spectrum is shown; the upper half
// mirrors it for real input.
type Waterfall struct {
	smooth  springField
	history [][]float64
	output  string
	profile colorProfile
}

// NewWaterfall creates a new waterfall visualizer.
func NewWaterfall() *Waterfall {
	return &Waterfall{
		smooth:  newSpringField(30, 8.5, 0.72),
		profile: currentColorProfile(),
	}
}

func (w *Waterfall) Name() string { return "waterfall" }

func (w *Waterfall) Update(snap *capture.Snapshot, sampleRate, width, height int) {
	if snap == nil || len(snap.Spectrum) == 0 || width < 4 || height < 1 {
		w.output = ""
		return
	}

	cols := width - 2
	if cols < 8 {
		cols = 8
	}
	w.smooth.resize(cols)

	// Lower half of the spectrum (through Nyquist), normalized.
	bins := len(snap.Spectrum)/2 + 1
	maxMag := 0.01
	for k := range bins {
		if m := snap.Spectrum[k].Magnitude; m > maxMag {
			maxMag = m
		}
	}

	den := cols - 1
	if den < 1 {
		den = 1
	}
	line := make([]float64, cols)
	for c := range cols {
		frac := float64(c) / float64(den) * float64(bins-1)
		lo := int(frac)
		hi := lo + 1
		if hi >= bins {
			hi = bins - 1
		}
		t := frac - float64(lo)
		a := snap.Spectrum[lo].Magnitude / maxMag
		b := snap.Spectrum[hi].Magnitude / maxMag
		line[c] = clamp01(w.smooth.step(c, a*(1-t)+b*t))
	}

	if len(w.history) != height || (height > 0 && len(w.history[0]) != cols) {
		w.history = make([][]float64, height)
		for r := range height {
			w.history[r] = make([]float64, cols)
		}
	}
	for r := height - 1; r > 0; r-- {
		copy(w.history[r], w.history[r-1])
	}
	copy(w.history[0], line)

	var out strings.Builder
	color := newANSIState()
	for r := range height {
		if r > 0 {
			out.WriteByte('\n')
		}
		age := float64(r) / float64(height)
		for c := range cols {
			v := clamp01(w.history[r][c])
			idx := int(v * float64(len(waterfallChars)-1))
			ch := waterfallChars[idx]
			if ch == ' ' || w.profile == colorNone {
				out.WriteRune(ch)
				continue
			}
			col := heatColor(v)
			col = lerpColor(col, colorRGB{R: 18, G: 22, B: 32}, age*0.65)
			color.set(&out, col)
			out.WriteRune(ch)
		}
		color.reset(&out)
	}

	w.output = out.String()
}

func (w *Waterfall) View() string {
	return w.output
}
