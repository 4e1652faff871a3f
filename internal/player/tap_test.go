package player

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func framesLE(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestTapKeepsMostRecentBytes(t *testing.T) {
	src := bytes.NewReader(framesLE(1, 1, 2, 2, 3, 3, 4, 4))
	tap := newPCMTap(src, 2*playbackFrameSize) // ring holds two frames

	buf := make([]byte, 8*2)
	if _, err := tap.Read(buf); err != nil {
		t.Fatalf("tap read: %v", err)
	}

	got := tap.recent(2 * playbackFrameSize)
	want := framesLE(3, 3, 4, 4)
	if !bytes.Equal(got, want) {
		t.Fatalf("expected ring to keep newest frames:\n got %v\nwant %v", got, want)
	}
}

func TestMonoWindowMixesAndNormalizes(t *testing.T) {
	// Two stereo frames: full-scale left+right, then silence.
	src := bytes.NewReader(framesLE(16384, 16384, 0, 0))
	tap := newPCMTap(src, 4*playbackFrameSize)

	buf := make([]byte, 2*playbackFrameSize)
	if _, err := tap.Read(buf); err != nil {
		t.Fatalf("tap read: %v", err)
	}

	window := tap.monoWindow(2)
	if window == nil {
		t.Fatal("expected a window from two buffered frames")
	}
	if math.Abs(window[0]-0.5) > 1e-9 {
		t.Fatalf("expected first sample 0.5, got %g", window[0])
	}
	if window[1] != 0 {
		t.Fatalf("expected second sample 0, got %g", window[1])
	}
}

func TestMonoWindowNilWhenUnderfilled(t *testing.T) {
	src := bytes.NewReader(framesLE(1, 1))
	tap := newPCMTap(src, 8*playbackFrameSize)

	buf := make([]byte, playbackFrameSize)
	if _, err := tap.Read(buf); err != nil {
		t.Fatalf("tap read: %v", err)
	}

	if got := tap.monoWindow(4); got != nil {
		t.Fatalf("expected nil window with one buffered frame, got %v", got)
	}
	if got := tap.monoWindow(1); len(got) != 1 {
		t.Fatalf("expected single-frame window, got %v", got)
	}
}

func TestTapResetDropsBufferedAudio(t *testing.T) {
	src := bytes.NewReader(framesLE(5, 5, 6, 6))
	tap := newPCMTap(src, 4*playbackFrameSize)

	if _, err := tap.Read(make([]byte, 2*playbackFrameSize)); err != nil {
		t.Fatalf("tap read: %v", err)
	}
	tap.reset()
	if got := tap.monoWindow(1); got != nil {
		t.Fatalf("expected nil window after reset, got %v", got)
	}
}

func TestMonoWindowClipsAtFullScale(t *testing.T) {
	// -32768 on both channels sums to -65536/65536 = -1.
	src := bytes.NewReader(framesLE(-32768, -32768))
	tap := newPCMTap(src, 2*playbackFrameSize)

	if _, err := tap.Read(make([]byte, playbackFrameSize)); err != nil {
		t.Fatalf("tap read: %v", err)
	}
	window := tap.monoWindow(1)
	if window[0] != -1 {
		t.Fatalf("expected -1, got %g", window[0])
	}
}
