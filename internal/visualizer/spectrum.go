package visualizer

import (
	"strings"

	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/capture"
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

// Spectrum renders every computed DFT bin as a vertical bar on a linear
// bin axis, so the conjugate mirror around the Nyquist bin stays
// visible. The selected bin's column is highlighted.
type Spectrum struct {
	smooth  springField
	output  string
	profile colorProfile
}

// NewSpectrum creates a new spectrum visualizer.
func NewSpectrum() *Spectrum {
	return &Spectrum{
		smooth:  newSpringField(30, 10.0, 0.75),
		profile: currentColorProfile(),
	}
}

func (s *Spectrum) Name() string { return "spectrum" }

func (s *Spectrum) Update(snap *capture.Snapshot, sampleRate, width, height int) {
	if snap == nil || len(snap.Spectrum) == 0 || width < 4 || height < 1 {
		s.output = ""
		return
	}

	bins := len(snap.Spectrum)
	cols := width - 2
	if cols < 8 {
		cols = 8
	}
	if cols > bins {
		cols = bins
	}
	s.smooth.resize(cols)

	// Group bins linearly into columns and remember which column holds
	// the selected bin.
	binsPerCol := float64(bins) / float64(cols)
	selectedCol := int(float64(snap.Bin) / binsPerCol)
	if selectedCol >= cols {
		selectedCol = cols - 1
	}

	maxMag := 0.01
	for _, bin := range snap.Spectrum {
		if bin.Magnitude > maxMag {
			maxMag = bin.Magnitude
		}
	}

	levels := make([]float64, cols)
	for c := range cols {
		lo := int(float64(c) * binsPerCol)
		hi := int(float64(c+1) * binsPerCol)
		if hi <= lo {
			hi = lo + 1
		}
		if hi > bins {
			hi = bins
		}
		sum := 0.0
		for k := lo; k < hi; k++ {
			sum += snap.Spectrum[k].Magnitude
		}
		target := sum / float64(hi-lo) / maxMag
		levels[c] = clamp01(s.smooth.step(c, target))
	}

	colWidth := (width - 2) / cols
	if colWidth < 1 {
		colWidth = 1
	}

	var out strings.Builder
	color := newANSIState()
	for row := range height {
		if row > 0 {
			out.WriteByte('\n')
		}
		for c := range cols {
			level := levels[c] * float64(height)
			rowFromBottom := float64(height - 1 - row)
			charIdx := 0
			if level > rowFromBottom+1 {
				charIdx = len(barChars) - 1
			} else if level > rowFromBottom {
				charIdx = int((level - rowFromBottom) * float64(len(barChars)-1))
			}
			ch := barChars[charIdx]

			if s.profile != colorNone && charIdx > 0 {
				if c == selectedCol {
					color.set(&out, colorRGB{R: 255, G: 140, B: 0})
				} else {
					color.set(&out, heatColor(levels[c]))
				}
			}
			for range colWidth {
				if ch == ' ' && c == selectedCol && row == 0 {
					// Mark the selected column even when its bar is flat.
					out.WriteRune('┊')
					continue
				}
				out.WriteRune(ch)
			}
		}
		color.reset(&out)
	}

	s.output = out.String()
}

func (s *Spectrum) View() string {
	return s.output
}
