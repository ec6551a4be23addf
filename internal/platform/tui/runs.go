package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

const maxRuns = 50

// RunsModel lists recent training runs. Tab switches to the generations of
// the highlighted run.
type RunsModel struct {
	store      *storage.Store
	runs       []storage.Run
	runsTable  table.Model
	genTable   table.Model
	showDetail bool
	help       help.Model
	keys       ListKeyMap
	width      int
	height     int
	err        error
	quitting   bool
	goingBack  bool
}

// NewRunsModel creates the runs view and loads the latest runs.
func NewRunsModel(store *storage.Store, width, height int) RunsModel {
	m := RunsModel{
		store:  store,
		help:   help.New(),
		keys:   DefaultListKeyMap(),
		width:  width,
		height: height,
	}
	m.buildTables()
	m.loadRuns()
	return m
}

func (m *RunsModel) buildTables() {
	m.runsTable = newStyledTable([]table.Column{
		{Title: "Run", Width: 5},
		{Title: "Status", Width: 10},
		{Title: "Gens", Width: 9},
		{Title: "Pop", Width: 5},
		{Title: "Best", Width: 9},
		{Title: "Score", Width: 6},
		{Title: "Started", Width: 13},
	}, m.height-8)
	m.genTable = newStyledTable([]table.Column{
		{Title: "Gen", Width: 5},
		{Title: "Best", Width: 9},
		{Title: "Mean", Width: 9},
		{Title: "StdDev", Width: 8},
		{Title: "Median", Width: 9},
		{Title: "Score", Width: 6},
		{Title: "Species", Width: 8},
	}, m.height-8)
}

func (m *RunsModel) loadRuns() {
	if m.store == nil {
		return
	}
	runs, err := m.store.RecentRuns(maxRuns)
	if err != nil {
		m.err = err
		return
	}
	m.runs = runs

	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			fmt.Sprintf("%d", r.ID),
			r.Status,
			fmt.Sprintf("%d/%d", r.GenerationsDone, r.GenerationsPlanned),
			fmt.Sprintf("%d", r.PopulationSize),
			fmt.Sprintf("%.1f", r.BestFitness),
			fmt.Sprintf("%d", r.BestScore),
			r.StartedAt.Format("Jan 02 15:04"),
		}
	}
	m.runsTable.SetRows(rows)
}

func (m *RunsModel) loadGenerations() {
	m.genTable.SetRows(nil)
	run, ok := m.selectedRun()
	if !ok {
		return
	}
	gens, err := m.store.Generations(run.ID)
	if err != nil {
		m.err = err
		return
	}
	rows := make([]table.Row, len(gens))
	for i, g := range gens {
		rows[i] = table.Row{
			fmt.Sprintf("%d", g.Generation),
			fmt.Sprintf("%.1f", g.Best),
			fmt.Sprintf("%.1f", g.Mean),
			fmt.Sprintf("%.2f", g.StdDev),
			fmt.Sprintf("%.1f", g.Median),
			fmt.Sprintf("%d", g.Score),
			fmt.Sprintf("%d", g.Species),
		}
	}
	m.genTable.SetRows(rows)
	m.genTable.GotoTop()
}

func (m RunsModel) selectedRun() (storage.Run, bool) {
	i := m.runsTable.Cursor()
	if i < 0 || i >= len(m.runs) {
		return storage.Run{}, false
	}
	return m.runs[i], true
}

// Init initializes the runs view.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the runs view.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			if m.showDetail {
				m.showDetail = false
				return m, nil
			}
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
			m.showDetail = !m.showDetail
			if m.showDetail {
				m.loadGenerations()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.buildTables()
		m.loadRuns()
		m.showDetail = false
		m.help.Width = msg.Width
		return m, nil
	}

	var cmd tea.Cmd
	if m.showDetail {
		m.genTable, cmd = m.genTable.Update(msg)
	} else {
		m.runsTable, cmd = m.runsTable.Update(msg)
	}
	return m, cmd
}

// View renders the runs view.
func (m RunsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "TRAINING RUNS"
	content := m.runsTable.View()
	if m.showDetail {
		if run, ok := m.selectedRun(); ok {
			title = fmt.Sprintf("RUN %d  seed %d", run.ID, run.Seed)
		}
		content = m.genTable.View()
	}
	switch {
	case m.store == nil:
		content = boardEmptyStyle.Render("No database available.")
	case m.err != nil:
		content = boardEmptyStyle.Render("Could not load runs: " + m.err.Error())
	case len(m.runs) == 0:
		content = boardEmptyStyle.Render("No training runs yet.\nRun `flappy train` to start one.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(boardTitleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	b.WriteString(boardFrameStyle.Render(content))
	b.WriteString("\n")
	b.WriteString(boardHelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m RunsModel) IsGoingBack() bool {
	return m.goingBack
}

// RunRuns runs the runs view. Returns true if user wants to go back to menu.
func RunRuns(store *storage.Store, width, height int) (goBack bool, err error) {
	p := tea.NewProgram(NewRunsModel(store, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(RunsModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}
