// Package tui provides the Bubble Tea integration: the game loop, menus,
// the scoreboard, the training dashboard and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-evolve/internal/core"
)

// TickMsg advances the simulation by one step.
type TickMsg time.Time

// tickInterval is the frame period for rate ticks per second. A rate of
// zero or less falls back to the default rate.
func tickInterval(rate int) time.Duration {
	if rate <= 0 {
		rate = core.DefaultConfig().TickRate
	}
	return time.Second / time.Duration(rate)
}

// tickCmd schedules the next TickMsg.
func tickCmd(rate int) tea.Cmd {
	return tea.Tick(tickInterval(rate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
