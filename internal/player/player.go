package player

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerSec = playbackSampleRate * playbackFrameSize

// tapSeconds of recent PCM kept for visualization. One second is far
// more than any window the analyzer asks for.
const tapSeconds = 1

// countingReader wraps an io.Reader and tracks bytes read, which is the
// player's single source of truth for playback position.
type countingReader struct {
	reader io.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player decodes an audio file and plays it through oto. The decoded
// stream flows decoder → resampler → position counter → speed reader →
// PCM tap → oto, so the tap always carries the frames most recently
// sent to the device.
type Player struct {
	file      *os.File
	decoder   audioDecoder
	counter   *countingReader
	speed     *speedReader
	tap       *pcmTap
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	duration  time.Duration
	volume    float64
	speedMode SpeedMode
	paused    bool
	done      chan struct{}
	stopMon   chan struct{}
	cleanup   func()
	mu        sync.Mutex
	closed    bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New creates a Player for the given audio file path. Format is chosen
// by extension (.mp3 .wav .flac .ogg).
func New(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	format, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	dec, err := newResampledDecoder(format)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto()
	if err != nil {
		f.Close()
		return nil, err
	}

	dur := time.Duration(float64(dec.Length()) / float64(bytesPerSec) * float64(time.Second))

	cr := &countingReader{reader: dec}
	sr := newSpeedReader(cr, playbackFrameSize)
	tap := newPCMTap(sr, tapSeconds*bytesPerSec)

	p := &Player{
		file:     f,
		decoder:  dec,
		counter:  cr,
		speed:    sr,
		tap:      tap,
		otoCtx:   ctx,
		duration: dur,
		volume:   0.8,
		done:     make(chan struct{}),
		stopMon:  make(chan struct{}),
		cleanup:  func() { f.Close() },
	}

	p.otoPlayer = ctx.NewPlayer(tap)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor(p.stopMon, p.done)

	return p, nil
}

// monitor polls for end of playback and closes done when the stream
// drains. Each monitor owns exactly one done channel; it exits without
// closing when the player is closed, when stop is closed, or when a
// restart has retired its done channel, so done is closed at most once.
func (p *Player) monitor(stop, done chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-time.After(200 * time.Millisecond):
		}

		p.mu.Lock()
		if p.closed || done != p.done {
			p.mu.Unlock()
			return
		}
		pos := p.counter.Pos()
		total := p.decoder.Length()
		paused := p.paused
		p.mu.Unlock()

		if !paused && pos >= total {
			close(done)
			return
		}
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks to the beginning and resumes playback. Resets the done
// channel so Done can be used again.
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Stop the previous monitor before arming a new one, so the current
	// done channel always has a single owner.
	close(p.stopMon)
	p.stopMon = make(chan struct{})

	p.decoder.Seek(0, io.SeekStart)
	p.counter.SetPos(0)
	p.speed.clearBuf()
	p.tap.reset()

	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.tap)
	p.otoPlayer.SetVolume(p.volume)

	p.done = make(chan struct{})
	p.paused = false
	p.otoPlayer.Play()

	go p.monitor(p.stopMon, p.done)
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Pause pauses playback without toggling.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		if p.otoPlayer != nil {
			p.otoPlayer.Pause()
		}
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	pos := p.counter.Pos()
	secs := float64(pos) / float64(bytesPerSec)
	return time.Duration(secs * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// clampSeekByteOffset converts a target position to a byte offset
// clamped to [0, length] and aligned down to a frame boundary.
func clampSeekByteOffset(target time.Duration, bytesPerSec int64, length int64, frameSize int64) int64 {
	offset := int64(target.Seconds() * float64(bytesPerSec))
	if offset < 0 {
		return 0
	}
	if offset > length {
		offset = length
	}
	return offset - offset%frameSize
}

// Seek moves playback by the given delta from the current position.
func (p *Player) Seek(delta time.Duration) {
	p.SeekTo(p.Position()+delta, !p.Paused())
}

// SeekTo seeks to an absolute position. When resume is false the player
// stays paused after the seek.
func (p *Player) SeekTo(target time.Duration, resume bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	newPos := clampSeekByteOffset(target, bytesPerSec, p.decoder.Length(), playbackFrameSize)
	if _, err := p.decoder.Seek(newPos, io.SeekStart); err != nil {
		return err
	}
	p.counter.SetPos(newPos)
	if p.speed != nil {
		p.speed.clearBuf()
	}
	if p.tap != nil {
		p.tap.reset()
	}

	// Recreate the oto player to flush device buffers.
	if p.otoCtx != nil {
		p.otoPlayer.Pause()
		p.otoPlayer = p.otoCtx.NewPlayer(p.tap)
		p.otoPlayer.SetVolume(p.volume)
		if resume {
			p.otoPlayer.Play()
		}
	}
	p.paused = !resume
	return nil
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// CycleSpeed advances to the next playback speed and returns it.
func (p *Player) CycleSpeed() SpeedMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speedMode = p.speedMode.Next()
	p.speed.setSpeed(p.speedMode)
	return p.speedMode
}

// Speed returns the current playback speed mode.
func (p *Player) Speed() SpeedMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speedMode
}

// TimeDomainWindow returns the most recent n mono samples sent to the
// device, in [-1, 1], or nil when not enough audio has played yet.
func (p *Player) TimeDomainWindow(n int) []float64 {
	return p.tap.monoWindow(n)
}

// Playing reports whether the transport is advancing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.paused && !p.closed
}

// SampleRate returns the playback sample rate in Hz.
func (p *Player) SampleRate() int {
	return playbackSampleRate
}

// Close releases all resources. Safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.stopMon)
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	if p.cleanup != nil {
		p.cleanup()
		p.cleanup = nil
	}
}
