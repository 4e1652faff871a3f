package player

import (
	"bytes"
	"io"
	"testing"
	"time"
)

type stubSeekDecoder struct {
	pos        int64
	length     int64
	sampleRate int
	channels   int
	seekErr    error
}

func (d *stubSeekDecoder) Read([]byte) (int, error) { return 0, io.EOF }

func (d *stubSeekDecoder) Seek(offset int64, whence int) (int64, error) {
	if d.seekErr != nil {
		return d.pos, d.seekErr
	}
	switch whence {
	case io.SeekStart:
		d.pos = offset
	case io.SeekCurrent:
		d.pos += offset
	case io.SeekEnd:
		d.pos = d.length + offset
	}
	return d.pos, nil
}

func (d *stubSeekDecoder) Length() int64     { return d.length }
func (d *stubSeekDecoder) SampleRate() int   { return d.sampleRate }
func (d *stubSeekDecoder) ChannelCount() int { return d.channels }

func TestClampSeekByteOffsetClampsAndAligns(t *testing.T) {
	got := clampSeekByteOffset(3900*time.Millisecond, 10, 10, 4)
	if got != 8 {
		t.Fatalf("expected clamped aligned seek offset 8, got %d", got)
	}

	got = clampSeekByteOffset(-1*time.Second, 10, 100, 4)
	if got != 0 {
		t.Fatalf("expected negative seek to clamp to 0, got %d", got)
	}
}

func TestPauseSetsPausedWithoutToggle(t *testing.T) {
	p := &Player{}
	p.Pause()
	if !p.paused {
		t.Fatal("expected pause to set paused state")
	}
}

func TestSeekToClampsAndAlignsToFrameBoundary(t *testing.T) {
	dec := &stubSeekDecoder{
		length:     41,
		sampleRate: playbackSampleRate,
		channels:   playbackChannels,
	}
	counter := &countingReader{}
	p := &Player{
		decoder: dec,
		counter: counter,
	}

	// A target past the end must clamp to the decoder length and align
	// down to a whole frame: 41 → 40.
	if err := p.SeekTo(time.Hour, false); err != nil {
		t.Fatalf("SeekTo returned error: %v", err)
	}
	if dec.pos != 40 {
		t.Fatalf("expected decoder seek position 40, got %d", dec.pos)
	}
	if got := counter.Pos(); got != 40 {
		t.Fatalf("expected counter position 40, got %d", got)
	}
	if !p.paused {
		t.Fatal("expected paused state after non-resuming seek")
	}
}

func TestSeekToResetsTap(t *testing.T) {
	tap := newPCMTap(bytes.NewReader(make([]byte, 64)), 64)
	if _, err := tap.Read(make([]byte, 64)); err != nil {
		t.Fatalf("tap read: %v", err)
	}
	if tap.recent(4) == nil {
		t.Fatal("expected tap to hold data before seek")
	}

	p := &Player{
		decoder: &stubSeekDecoder{length: 100},
		counter: &countingReader{},
		tap:     tap,
	}
	if err := p.SeekTo(0, false); err != nil {
		t.Fatalf("SeekTo returned error: %v", err)
	}
	if got := tap.recent(4); got != nil {
		t.Fatalf("expected empty tap after seek, got %d bytes", len(got))
	}
}

func TestPlayerCloseRunsCleanupOnce(t *testing.T) {
	calls := 0
	p := &Player{
		stopMon: make(chan struct{}),
		cleanup: func() {
			calls++
		},
	}

	p.Close()
	p.Close()

	if calls != 1 {
		t.Fatalf("expected cleanup to run once, got %d", calls)
	}
}

func TestRestartStopsPreviousMonitor(t *testing.T) {
	p := &Player{
		decoder: &stubSeekDecoder{length: 40},
		counter: &countingReader{pos: 40},
		done:    make(chan struct{}),
		stopMon: make(chan struct{}),
	}

	retiredStop := p.stopMon
	retiredDone := p.done
	go p.monitor(retiredStop, retiredDone)

	// What Restart does to the monitor generation, without the oto half.
	close(p.stopMon)
	p.mu.Lock()
	p.stopMon = make(chan struct{})
	p.done = make(chan struct{})
	current := p.done
	p.mu.Unlock()
	go p.monitor(p.stopMon, current)

	select {
	case <-current:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not signal end of playback")
	}

	select {
	case <-retiredDone:
		t.Error("retired monitor closed its done channel after restart")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestMonitorExitsWhenDoneChannelRetired(t *testing.T) {
	p := &Player{
		decoder: &stubSeekDecoder{length: 40},
		counter: &countingReader{pos: 40},
		done:    make(chan struct{}),
		stopMon: make(chan struct{}),
	}

	staleDone := p.done
	go p.monitor(p.stopMon, staleDone)

	// Retire the channel before the monitor's first poll fires.
	p.mu.Lock()
	p.done = make(chan struct{})
	p.mu.Unlock()

	select {
	case <-staleDone:
		t.Error("monitor closed a done channel the player no longer holds")
	case <-time.After(500 * time.Millisecond):
	}
}
