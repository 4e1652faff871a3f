package visualizer

import (
	"math"
	"strings"

	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/capture"
	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/dsp"
)

// Phasor renders the twiddle series of the selected bin on the complex
// plane: the unit circle of rotation factors, the path traced by the
// running partial sum of weighted terms, and the active term's vector.
// It is the per-term view of the DFT summation: each dot on the circle
// is one e^(-2πi·k·idx/N).
type Phasor struct {
	output  string
	profile colorProfile
}

// Cell layers, later layers draw over earlier ones.
const (
	phasorEmpty uint8 = iota
	phasorCircle
	phasorSumPath
	phasorVector
	phasorTip
)

// NewPhasor creates a new phasor visualizer.
func NewPhasor() *Phasor {
	return &Phasor{profile: currentColorProfile()}
}

func (p *Phasor) Name() string { return "phasor" }

func (p *Phasor) Update(snap *capture.Snapshot, sampleRate, width, height int) {
	if snap == nil || len(snap.Series) == 0 || width < 8 || height < 3 {
		p.output = ""
		return
	}

	cols := width - 2
	// Terminal cells are roughly twice as tall as wide.
	radiusY := float64(height-1) / 2
	radiusX := math.Min(float64(cols-1)/2, radiusY*2)
	cx := cols / 2
	cy := height / 2

	mask := make([][]uint8, height)
	for r := range mask {
		mask[r] = make([]uint8, cols)
	}

	plot := func(re, im float64, scale float64, layer uint8) (int, int) {
		x := cx + int(math.Round(re*scale*radiusX))
		y := cy - int(math.Round(im*scale*radiusY))
		if y >= 0 && y < height && x >= 0 && x < cols {
			if mask[y][x] < layer {
				mask[y][x] = layer
			}
		}
		return x, y
	}

	// Unit circle of twiddle factors.
	for _, term := range snap.Series {
		plot(term.Twiddle.Re, term.Twiddle.Im, 1, phasorCircle)
	}

	// Running partial sum, normalized to its own maximum excursion.
	partials := make([]dsp.Complex, len(snap.Series))
	var sum dsp.Complex
	maxNorm := 1e-9
	for i, term := range snap.Series {
		sum = sum.Add(term.Weighted)
		partials[i] = sum
		if m := sum.Magnitude(); m > maxNorm {
			maxNorm = m
		}
	}
	scale := 1 / maxNorm
	prevX, prevY := plot(0, 0, 1, phasorSumPath)
	for _, ps := range partials {
		x, y := plot(ps.Re, ps.Im, scale, phasorSumPath)
		drawLineMask(mask, prevX, prevY, x, y, phasorSumPath)
		prevX, prevY = x, y
	}

	// Active term's twiddle vector from the origin.
	cursor := snap.Cursor
	if cursor >= len(snap.Series) {
		cursor = 0
	}
	tw := snap.Series[cursor].Twiddle
	tipX := cx + int(math.Round(tw.Re * radiusX))
	tipY := cy - int(math.Round(tw.Im * radiusY))
	drawLineMask(mask, cx, cy, tipX, tipY, phasorVector)
	plot(tw.Re, tw.Im, 1, phasorTip)

	var out strings.Builder
	color := newANSIState()
	for r := range height {
		if r > 0 {
			out.WriteByte('\n')
		}
		for c := range cols {
			switch mask[r][c] {
			case phasorCircle:
				if p.profile != colorNone {
					color.set(&out, colorRGB{R: 70, G: 90, B: 140})
				}
				out.WriteRune('·')
			case phasorSumPath:
				if p.profile != colorNone {
					color.set(&out, colorRGB{R: 20, G: 255, B: 161})
				}
				out.WriteRune('●')
			case phasorVector:
				if p.profile != colorNone {
					color.set(&out, colorRGB{R: 255, G: 140, B: 0})
				}
				out.WriteRune('•')
			case phasorTip:
				if p.profile != colorNone {
					color.set(&out, colorRGB{R: 255, G: 248, B: 190})
				}
				out.WriteRune('✦')
			default:
				out.WriteByte(' ')
			}
		}
		color.reset(&out)
	}

	p.output = out.String()
}

func (p *Phasor) View() string {
	return p.output
}
