package capture

import (
	"math"
	"testing"
)

// scriptedSource serves a controllable window and transport state.
type scriptedSource struct {
	window  []float64
	playing bool
	rate    int
}

func (s *scriptedSource) TimeDomainWindow(n int) []float64 {
	if s.window == nil {
		return nil
	}
	out := make([]float64, n)
	copy(out, s.window)
	return out
}

func (s *scriptedSource) Playing() bool   { return s.playing }
func (s *scriptedSource) SampleRate() int { return s.rate }

func impulse(n int) []float64 {
	out := make([]float64, n)
	out[0] = 1
	return out
}

func TestTickIsNoOpBeforeAudioAvailable(t *testing.T) {
	src := &scriptedSource{playing: true, rate: 48000}
	s := New(src)

	s.Tick()
	if s.Current() != nil {
		t.Fatal("expected nil snapshot before any window is available")
	}
}

func TestTickCapturesWhilePlaying(t *testing.T) {
	src := &scriptedSource{window: impulse(8), playing: true, rate: 48000}
	s := New(src)
	s.SetWindowSize(8)

	s.Tick()
	snap := s.Current()
	if snap == nil {
		t.Fatal("expected snapshot after playing tick")
	}
	if len(snap.Window) != 8 {
		t.Fatalf("expected window length 8, got %d", len(snap.Window))
	}
	if len(snap.Spectrum) != 8 {
		t.Fatalf("expected 8 bins, got %d", len(snap.Spectrum))
	}
	if len(snap.Series) != 8 {
		t.Fatalf("expected 8 series terms, got %d", len(snap.Series))
	}
	for k, bin := range snap.Spectrum {
		if math.Abs(bin.Magnitude-1) > 1e-9 {
			t.Fatalf("bin %d: expected unit magnitude for impulse, got %g", k, bin.Magnitude)
		}
	}
}

func TestPauseFreezesLastPlayedSnapshot(t *testing.T) {
	src := &scriptedSource{window: impulse(8), playing: true, rate: 48000}
	s := New(src)
	s.SetWindowSize(8)

	s.Tick()
	frozen := s.Current()

	// Pause, then change the underlying signal; the frozen snapshot
	// must not move.
	src.playing = false
	src.window = []float64{1, 1, 1, 1, 1, 1, 1, 1}
	for range 5 {
		s.Tick()
	}
	if s.Current() != frozen {
		t.Fatal("expected snapshot to stay frozen across paused ticks")
	}

	// Resume: the next tick lands a fresh capture.
	src.playing = true
	s.Tick()
	next := s.Current()
	if next == frozen {
		t.Fatal("expected fresh snapshot after resume")
	}
	if math.Abs(next.Spectrum[0].Magnitude-8) > 1e-9 {
		t.Fatalf("expected DC magnitude 8 from constant window, got %g", next.Spectrum[0].Magnitude)
	}
}

func TestInvalidCaptureRetainsPreviousSnapshot(t *testing.T) {
	src := &scriptedSource{window: impulse(8), playing: true, rate: 48000}
	s := New(src)
	s.SetWindowSize(8)

	s.Tick()
	good := s.Current()

	src.window = []float64{0, math.NaN(), 0, 0, 0, 0, 0, 0}
	s.Tick()
	if s.Current() != good {
		t.Fatal("expected invalid window to leave previous snapshot in place")
	}
}

func TestSetBinWhilePlayingDefersToNextTick(t *testing.T) {
	src := &scriptedSource{window: impulse(16), playing: true, rate: 48000}
	s := New(src)
	s.SetWindowSize(16)

	s.Tick()
	before := s.Current()

	s.SetBin(5)
	if s.Current() != before {
		t.Fatal("expected SetBin while playing to not touch the snapshot")
	}

	s.Tick()
	if got := s.Current().Bin; got != 5 {
		t.Fatalf("expected next tick to pick up bin 5, got %d", got)
	}
}

func TestSetBinWhilePausedRecomputesSeriesOnly(t *testing.T) {
	src := &scriptedSource{window: impulse(16), playing: true, rate: 48000}
	s := New(src)
	s.SetWindowSize(16)

	s.Tick()
	src.playing = false
	frozen := s.Current()

	s.SetBin(3)
	snap := s.Current()
	if snap == frozen {
		t.Fatal("expected paused SetBin to swap in a new snapshot")
	}
	if snap.Bin != 3 {
		t.Fatalf("expected bin 3, got %d", snap.Bin)
	}
	// Spectrum and window are shared with the frozen capture, untouched.
	if &snap.Spectrum[0] != &frozen.Spectrum[0] {
		t.Fatal("expected spectrum to be reused, not recomputed")
	}
	if &snap.Window[0] != &frozen.Window[0] {
		t.Fatal("expected window to be reused")
	}
	// Series must correspond to the new bin: for an impulse only the
	// idx=0 term is nonzero and its twiddle is always 1+0i.
	if snap.Series[0].Weighted != (snap.Series[0].Twiddle.Scale(1)) {
		t.Fatal("expected weighted term to track amplitude")
	}
	want, err := s.engine.TwiddleSeries(frozen.Window, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if snap.Series[i] != want[i] {
			t.Fatalf("term %d: series does not match bin 3 recompute", i)
		}
	}
}

func TestSetBinWhilePausedBeforeFirstCapture(t *testing.T) {
	src := &scriptedSource{rate: 48000}
	s := New(src)

	s.SetBin(10) // must not panic with no snapshot
	if s.Current() != nil {
		t.Fatal("expected nil snapshot")
	}
	if s.Bin() != 10 {
		t.Fatalf("expected selection to stick, got %d", s.Bin())
	}
}

func TestCursorCyclesThroughSeries(t *testing.T) {
	src := &scriptedSource{window: impulse(4), playing: true, rate: 48000}
	s := New(src)
	s.SetWindowSize(4)

	want := []int{0, 1, 2, 3, 0, 1}
	for i, w := range want {
		s.Tick()
		if got := s.Current().Cursor; got != w {
			t.Fatalf("tick %d: expected cursor %d, got %d", i, w, got)
		}
	}
}

func TestWindowSizeClamped(t *testing.T) {
	src := &scriptedSource{rate: 48000}
	s := New(src)

	s.SetWindowSize(1)
	if got := s.WindowSize(); got != MinWindowSize {
		t.Fatalf("expected clamp to %d, got %d", MinWindowSize, got)
	}
	s.SetWindowSize(1 << 20)
	if got := s.WindowSize(); got != MaxWindowSize {
		t.Fatalf("expected clamp to %d, got %d", MaxWindowSize, got)
	}

	s.SetBin(4000)
	s.SetWindowSize(8)
	if got := s.Bin(); got != 7 {
		t.Fatalf("expected bin re-clamped to 7 after shrink, got %d", got)
	}
}

func TestBinFrequency(t *testing.T) {
	src := &scriptedSource{rate: 48000}
	s := New(src)
	s.SetWindowSize(1024)

	if got := s.BinFrequency(0); got != 0 {
		t.Fatalf("expected DC at 0 Hz, got %g", got)
	}
	if got := s.BinFrequency(512); got != 24000 {
		t.Fatalf("expected Nyquist at 24 kHz, got %g", got)
	}
	if got := s.BinFrequency(1); got != 46.875 {
		t.Fatalf("expected bin width 46.875 Hz, got %g", got)
	}
}
