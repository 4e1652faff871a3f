package player

import (
	"encoding/binary"
	"io"
	"sync"
)

// pcmTap sits between the speed reader and the audio device, keeping a
// ring of the most recent PCM bytes on their way to the speaker. The
// visualization layer reads its windows from here, so what is analyzed
// is exactly what is audible.
type pcmTap struct {
	source io.Reader
	buf    []byte
	size   int
	w      int
	fill   int
	mu     sync.Mutex
}

// newPCMTap wraps source and retains the most recent capacity bytes read
// through it. capacity should be a multiple of the frame size.
func newPCMTap(source io.Reader, capacity int) *pcmTap {
	return &pcmTap{
		source: source,
		buf:    make([]byte, capacity),
		size:   capacity,
	}
}

func (t *pcmTap) Read(p []byte) (int, error) {
	n, err := t.source.Read(p)
	if n > 0 {
		t.mu.Lock()
		for _, b := range p[:n] {
			t.buf[t.w] = b
			t.w = (t.w + 1) % t.size
		}
		t.fill += n
		if t.fill > t.size {
			t.fill = t.size
		}
		t.mu.Unlock()
	}
	return n, err
}

// recent returns the most recent n bytes, oldest first, or fewer when
// the ring has not filled yet.
func (t *pcmTap) recent(n int) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n > t.fill {
		n = t.fill
	}
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	start := (t.w - n + t.size) % t.size
	for i := range n {
		out[i] = t.buf[(start+i)%t.size]
	}
	return out
}

// reset drops buffered audio, used after seeks so stale samples are not
// visualized.
func (t *pcmTap) reset() {
	t.mu.Lock()
	t.w = 0
	t.fill = 0
	t.mu.Unlock()
}

// monoWindow returns the most recent n frames mixed down to mono
// float64 samples in [-1, 1], or nil when fewer than n frames have
// passed through the tap. The tap stores s16le stereo frames.
func (t *pcmTap) monoWindow(n int) []float64 {
	raw := t.recent(n * playbackFrameSize)
	if len(raw) < n*playbackFrameSize {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		off := i * playbackFrameSize
		left := int16(binary.LittleEndian.Uint16(raw[off:]))
		right := int16(binary.LittleEndian.Uint16(raw[off+2:]))
		out[i] = float64(int32(left)+int32(right)) / 65536.0
	}
	return out
}
