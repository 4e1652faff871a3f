package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/capture"
	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/player"
	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/util"
	"github.com/SamCourtneyTech/SCT005-FOURIER-VIEW/internal/visualizer"
)

// transport is the slice of the player the UI drives. Kept as an
// interface so model behavior is testable without an audio device.
type transport interface {
	TogglePause()
	Pause()
	Paused() bool
	Position() time.Duration
	Duration() time.Duration
	Seek(delta time.Duration)
	Volume() float64
	AdjustVolume(delta float64)
	CycleSpeed() player.SpeedMode
	Speed() player.SpeedMode
	Restart()
	Done() <-chan struct{}
	Close()
}

// Model is the Bubble Tea model for the fourierview TUI.
type Model struct {
	transport transport
	sampler   *capture.Sampler
	metadata  player.Metadata
	modes     []visualizer.Visualizer
	mode      int
	progress  progress.Model

	elapsed  time.Duration
	duration time.Duration
	volume   float64
	paused   bool
	speed    player.SpeedMode
	width    int
	height   int
	quitting bool
}

// New creates a Model playing and analyzing through p.
func New(p *player.Player, meta player.Metadata) Model {
	return newModel(p, capture.New(p), meta)
}

func newModel(t transport, sampler *capture.Sampler, meta player.Metadata) Model {
	prog := progress.New(
		progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
		progress.WithoutPercentage(),
	)
	return Model{
		transport: t,
		sampler:   sampler,
		metadata:  meta,
		modes:     visualizer.Modes(),
		progress:  prog,
		duration:  t.Duration(),
		volume:    t.Volume(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), checkDone(m.transport), tea.SetWindowTitle(windowTitle(m.metadata.Title, false)))
}

func checkDone(t transport) tea.Cmd {
	return func() tea.Msg {
		<-t.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.sampler.Tick()
		m.elapsed = m.transport.Position()
		m.volume = m.transport.Volume()
		m.paused = m.transport.Paused()
		m.speed = m.transport.Speed()
		m.updateVisualizer()
		return m, tickCmd()

	case playbackEndedMsg:
		// End of track: freeze rather than quit, so the last spectrum
		// stays inspectable.
		m.transport.Pause()
		m.paused = true
		m.elapsed = m.duration
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := msg.Width - 16
		if barWidth < 10 {
			barWidth = 10
		}
		m.progress.Width = barWidth
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.transport.Close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		m.transport.TogglePause()
		m.paused = m.transport.Paused()
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
	case "left":
		m.transport.Seek(-5 * time.Second)
	case "right":
		m.transport.Seek(5 * time.Second)
	case "up":
		m.transport.AdjustVolume(0.05)
		m.volume = m.transport.Volume()
	case "down":
		m.transport.AdjustVolume(-0.05)
		m.volume = m.transport.Volume()
	case "[":
		m.sampler.SetBin(m.sampler.Bin() - 1)
	case "]":
		m.sampler.SetBin(m.sampler.Bin() + 1)
	case "{":
		m.sampler.SetBin(m.sampler.Bin() - 16)
	case "}":
		m.sampler.SetBin(m.sampler.Bin() + 16)
	case "-":
		m.sampler.SetWindowSize(m.sampler.WindowSize() / 2)
	case "=":
		m.sampler.SetWindowSize(m.sampler.WindowSize() * 2)
	case "v":
		m.mode = (m.mode + 1) % len(m.modes)
		m.updateVisualizer()
	case "x":
		m.speed = m.transport.CycleSpeed()
	case "r":
		m.transport.Restart()
		m.elapsed = 0
		m.paused = false
		return m, checkDone(m.transport)
	}
	return m, nil
}

func (m *Model) updateVisualizer() {
	if len(m.modes) == 0 {
		return
	}
	w := m.width
	if w < 30 {
		w = 60
	}
	m.modes[m.mode].Update(m.sampler.Current(), m.sampler.SampleRate(), w, m.panelHeight())
}

func (m Model) panelHeight() int {
	h := m.height - 13
	if h < 6 {
		h = 6
	}
	if h > 24 {
		h = 24
	}
	return h
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 30 {
		w = 60
	}

	header := headerStyle.Render("fourierview")
	title := titleStyle.Render(m.metadata.Title)

	subtitle := ""
	if m.metadata.Artist != "" && m.metadata.Album != "" {
		subtitle = artistStyle.Render(fmt.Sprintf("%s - %s", m.metadata.Artist, m.metadata.Album))
	} else if m.metadata.Artist != "" {
		subtitle = artistStyle.Render(m.metadata.Artist)
	} else if m.metadata.Album != "" {
		subtitle = artistStyle.Render(m.metadata.Album)
	}

	panel := m.modes[m.mode].View()
	if panel == "" {
		panel = helpStyle.Render("waiting for audio...")
	}

	elapsedStr := timeStyle.Render(util.FormatDuration(m.elapsed))
	durationStr := timeStyle.Render(util.FormatDuration(m.duration))
	var ratio float64
	if m.duration > 0 {
		ratio = float64(m.elapsed) / float64(m.duration)
	}
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, m.progress.ViewAs(ratio), durationStr)

	statusIcon := "▶"
	statusText := "playing"
	if m.paused {
		statusIcon = "❚❚"
		statusText = "paused"
	}
	status := fmt.Sprintf("%s  %s", statusIcon, statusText)
	if label := m.speed.Label(); label != "" {
		status += "  " + label
	}
	status += fmt.Sprintf("  ·  %s  ·  vol %d%%", m.modes[m.mode].Name(), int(m.volume*100))

	lines := "\n"
	lines += "  " + header + "\n"
	lines += "\n"
	lines += "  " + title + "\n"
	if subtitle != "" {
		lines += "  " + subtitle + "\n"
	}
	lines += "\n"
	lines += indentBlock(panel, "  ") + "\n"
	lines += "\n"
	lines += "  " + binStyle.Render(m.binInfo()) + "\n"
	lines += "  " + progressLine + "\n"
	lines += "  " + statusStyle.Render(status) + "\n"
	lines += "\n"
	lines += "  " + helpStyle.Render(helpText()) + "\n"

	return lines
}

// binInfo describes the selected bin against the current snapshot.
func (m Model) binInfo() string {
	k := m.sampler.Bin()
	n := m.sampler.WindowSize()
	info := fmt.Sprintf("bin %d/%d  ·  %s  ·  N=%d", k, n-1, util.FormatHz(m.sampler.BinFrequency(k)), n)

	snap := m.sampler.Current()
	if snap != nil && snap.Bin < len(snap.Spectrum) {
		bin := snap.Spectrum[snap.Bin]
		info += fmt.Sprintf("  ·  mag %.3f  ·  phase %+.1f°", bin.Magnitude, bin.Phase)
	}
	return info
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " - fourierview"
	}
	return "▶ " + title + " - fourierview"
}
