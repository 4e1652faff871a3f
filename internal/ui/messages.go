package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Animation cadence. The DFT recomputes once per tick; playback position
// always derives from the player's byte counter, never from tick counts,
// so a late tick cannot drift the transport.
const tickInterval = 33 * time.Millisecond

type tickMsg time.Time
type playbackEndedMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
