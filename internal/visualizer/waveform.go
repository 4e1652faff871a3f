package visualizer

import (
	"math"
	"strings"

	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/capture"
)

// Waveform renders the captured time-domain window as a single trace
// with spring smoothing. The cursor sample, the summation term
// currently highlighted in the phasor view, is marked on the trace.
type Waveform struct {
	trace   springField
	output  string
	profile colorProfile
}

// Cell layers for the waveform mask.
const (
	waveEmpty uint8 = iota
	waveMidline
	waveTrace
	waveCursor
)

// NewWaveform creates a new waveform visualizer.
func NewWaveform() *Waveform {
	return &Waveform{
		trace:   newSpringField(30, 14.0, 0.8),
		profile: currentColorProfile(),
	}
}

func (w *Waveform) Name() string { return "waveform" }

func (w *Waveform) Update(snap *capture.Snapshot, sampleRate, width, height int) {
	if snap == nil || len(snap.Window) == 0 || width < 4 || height < 1 {
		w.output = ""
		return
	}

	cols := width - 2
	if cols < 8 {
		cols = 8
	}
	w.trace.resize(cols)

	samples := snap.Window
	spc := float64(len(samples)) / float64(cols)
	for c := range cols {
		lo := int(float64(c) * spc)
		hi := int(float64(c+1) * spc)
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(samples) {
			hi = len(samples)
		}
		var sum float64
		for i := lo; i < hi; i++ {
			sum += samples[i]
		}
		w.trace.step(c, sum/float64(hi-lo))
	}

	mask := make([][]uint8, height)
	for r := range mask {
		mask[r] = make([]uint8, cols)
	}
	if mid := height / 2; mid < height {
		for c := range cols {
			mask[mid][c] = waveMidline
		}
	}

	prevY := ampToRow(w.trace.pos[0], height)
	for c := 1; c < cols; c++ {
		y := ampToRow(w.trace.pos[c], height)
		drawLineMask(mask, c-1, prevY, c, y, waveTrace)
		prevY = y
	}

	// Mark the active summation term's sample on the trace.
	cursorCol := -1
	if spc > 0 && snap.Cursor < len(samples) {
		cursorCol = int(float64(snap.Cursor) / spc)
		if cursorCol >= cols {
			cursorCol = cols - 1
		}
		y := ampToRow(w.trace.pos[cursorCol], height)
		mask[y][cursorCol] = waveCursor
	}

	var out strings.Builder
	color := newANSIState()
	den := cols - 1
	if den < 1 {
		den = 1
	}
	for r := range height {
		if r > 0 {
			out.WriteByte('\n')
		}
		for c := range cols {
			switch mask[r][c] {
			case waveTrace:
				if w.profile != colorNone {
					col := rgbFromHSV(0.53+0.04*math.Sin(float64(c)*0.22), 0.7, 0.95)
					color.set(&out, col)
				}
				out.WriteRune('●')
			case waveCursor:
				if w.profile != colorNone {
					color.set(&out, colorRGB{R: 255, G: 248, B: 190})
				}
				out.WriteRune('✦')
			case waveMidline:
				if w.profile != colorNone {
					fade := 0.15 + 0.15*float64(c)/float64(den)
					color.set(&out, rgbFromHSV(0.6, 0.2, fade))
				}
				out.WriteRune('·')
			default:
				out.WriteByte(' ')
			}
		}
		color.reset(&out)
	}

	w.output = out.String()
}

func (w *Waveform) View() string {
	return w.output
}
