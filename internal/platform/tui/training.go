package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappyai"
)

// dashboardRows is how many finished generations the table shows.
const dashboardRows = 5

// dashboardHeight is the space taken below the episode view:
// progress line, table header and border, rows, help line.
const dashboardHeight = dashboardRows + 5

var dashHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// TrainingModel is the train --tui dashboard: the live episode on top, a
// progress bar and the latest generations below.
type TrainingModel struct {
	game      *flappyai.Game
	screen    *core.Screen
	config    core.RuntimeConfig
	keyMapper *KeyMapper
	input     core.InputFrame
	progress  progress.Model
	table     table.Model
	width     int
	height    int
	quitting  bool
}

// NewTrainingModel creates the dashboard around a training game.
func NewTrainingModel(game *flappyai.Game, cfg core.RuntimeConfig) TrainingModel {
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	m := TrainingModel{
		game:      game,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		input:     core.NewInputFrame(),
		progress:  progress.New(progress.WithDefaultGradient()),
	}
	m.resize(cfg.ScreenW, cfg.ScreenH)
	return m
}

func (m *TrainingModel) resize(w, h int) {
	m.width, m.height = w, h
	m.screen = core.NewScreen(w, max(h-dashboardHeight, 8))
	m.progress.Width = max(w-24, 10)
	m.table = newStyledTable(generationColumns(w), dashboardRows)
	m.table.Blur()
	m.refreshTable()
}

func generationColumns(width int) []table.Column {
	cols := []table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Best", Width: 9},
		{Title: "Mean", Width: 9},
		{Title: "Median", Width: 9},
		{Title: "Score", Width: 6},
		{Title: "Species", Width: 8},
	}
	if width >= 72 {
		cols = append(cols, table.Column{Title: "Nodes+Links", Width: 11})
	}
	return cols
}

func (m *TrainingModel) refreshTable() {
	history := m.game.History()
	from := max(len(history)-dashboardRows, 0)
	withSize := len(m.table.Columns()) > 6

	rows := make([]table.Row, 0, dashboardRows)
	for i := len(history) - 1; i >= from; i-- {
		rows = append(rows, generationRow(history[i], withSize))
	}
	m.table.SetRows(rows)
}

func generationRow(s evolve.GenerationStats, withSize bool) table.Row {
	row := table.Row{
		fmt.Sprintf("%d", s.Generation),
		fmt.Sprintf("%.1f", s.Best),
		fmt.Sprintf("%.1f", s.Mean),
		fmt.Sprintf("%.1f", s.Median),
		fmt.Sprintf("%d", s.Score),
		fmt.Sprintf("%d", s.Species),
	}
	if withSize {
		row = append(row, fmt.Sprintf("%d", s.ChampionComplexity))
	}
	return row
}

// Init starts the game and the tick loop.
func (m TrainingModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages.
func (m TrainingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.keyMapper.MapKeyToFrame(msg, &m.input) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.input.Has(core.ActionBack) && (m.game.Done() || m.game.State().Paused) {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.config.ScreenW, m.config.ScreenH = msg.Width, msg.Height
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		done := len(m.game.History())
		m.game.Step(m.input)
		m.input.Clear()
		if len(m.game.History()) != done {
			m.refreshTable()
		}
		return m, tickCmd(m.config.TickRate)
	}
	return m, nil
}

// Percent returns the share of planned generations already finished.
// Unbounded runs report zero.
func (m TrainingModel) Percent() float64 {
	planned := m.game.Evolution().Generations
	if planned <= 0 {
		return 0
	}
	return min(float64(len(m.game.History()))/float64(planned), 1)
}

// View renders the dashboard.
func (m TrainingModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	m.game.Render(m.screen)

	planned := "∞"
	if n := m.game.Evolution().Generations; n > 0 {
		planned = fmt.Sprintf("%d", n)
	}
	status := fmt.Sprintf(" gen %d/%s ", m.game.Generation(), planned)

	var b strings.Builder
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(status + m.progress.ViewAs(m.Percent()))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(dashHelpStyle.Render("+/-: speed  p: pause  b: back when paused or done  q: quit"))
	return b.String()
}

// Game returns the training game.
func (m TrainingModel) Game() *flappyai.Game {
	return m.game
}

// RunTraining runs the dashboard until the user quits. Training state stays
// in game, so the caller can save the champion afterwards.
func RunTraining(game *flappyai.Game, cfg core.RuntimeConfig) error {
	p := tea.NewProgram(NewTrainingModel(game, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
