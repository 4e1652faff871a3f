package visualizer

import "github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/capture"

// Visualizer renders one view of a DFT snapshot as terminal text.
// Update is called once per animation tick with the current (possibly
// frozen) snapshot; snap may be nil before any audio has played.
type Visualizer interface {
	Name() string
	Update(snap *capture.Snapshot, sampleRate, width, height int)
	View() string
}

// Modes returns all available visualizers, in cycling order.
func Modes() []Visualizer {
	return []Visualizer{
		NewSpectrum(),
		NewPhasor(),
		NewWaveform(),
		NewWaterfall(),
	}
}
