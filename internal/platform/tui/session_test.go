package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappyai"
)

// isolate keeps user config files out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

var testRuntime = core.RuntimeConfig{ScreenW: 80, ScreenH: 30, TickRate: 30, Seed: 3}

func sendKeys(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(keyMsg(k))
	}
	return m
}

func TestMenuListsVariants(t *testing.T) {
	m := NewMenuModel(testRuntime)

	var ids []string
	for _, item := range m.items {
		ids = append(ids, item.GameID)
	}
	if strings.Join(ids, ",") != "flappy,flappy_ai,flappy_skeleton" {
		t.Fatalf("menu items = %v", ids)
	}

	view := m.View()
	for _, want := range []string{"Flappy Bird", "Flappy Evolve", "Tab: Scores"} {
		if !strings.Contains(view, want) {
			t.Errorf("menu view missing %q", want)
		}
	}
}

func TestMenuResults(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want MenuResult
	}{
		{"select second", []string{"down", "enter"}, MenuResult{GameID: "flappy_ai"}},
		{"cursor stops at top", []string{"up", "up", "enter"}, MenuResult{GameID: "flappy"}},
		{"scoreboard", []string{"tab"}, MenuResult{WantsScoreboard: true}},
		{"runs", []string{"t"}, MenuResult{WantsRuns: true}},
		{"quit", []string{"q"}, MenuResult{Quit: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			final := sendKeys(NewMenuModel(testRuntime), tc.keys...).(MenuModel)
			got := final.result()
			got.Config = core.RuntimeConfig{}
			if got != tc.want {
				t.Errorf("result = %+v, expected %+v", got, tc.want)
			}
		})
	}
}

func TestSessionFlow(t *testing.T) {
	isolate(t)
	store := openTestStore(t)
	var m tea.Model = NewSessionModel(store, testRuntime, log.New(io.Discard))

	m = sendKeys(m, "tab")
	if s := m.(SessionModel); s.view != viewScores {
		t.Fatalf("tab should open the scoreboard, view = %v", s.view)
	}
	if !strings.Contains(m.View(), "HIGH SCORES") {
		t.Error("scoreboard not rendered")
	}

	m = sendKeys(m, "b")
	if s := m.(SessionModel); s.view != viewMenu || s.quitting {
		t.Fatalf("back should return to the menu, view = %v", s.view)
	}

	m = sendKeys(m, "t")
	if !strings.Contains(m.View(), "No training runs yet") {
		t.Errorf("runs view = %q", m.View())
	}
	m = sendKeys(m, "esc", "enter")
	s := m.(SessionModel)
	if s.view != viewGame || s.game.game.ID() != "flappy" {
		t.Fatalf("enter should start the first variant, view = %v", s.view)
	}

	m, _ = m.Update(TickMsg{})
	m = sendKeys(m, "p")
	m, _ = m.Update(TickMsg{})
	m = sendKeys(m, "b")
	if s := m.(SessionModel); s.view != viewMenu {
		t.Fatalf("back from a paused game should return to the menu, view = %v", s.view)
	}

	m, cmd := m.Update(keyMsg("q"))
	if !m.(SessionModel).quitting || cmd == nil {
		t.Error("q in the menu should end the session")
	}
}

func TestTrainingDashboard(t *testing.T) {
	isolate(t)
	evo := config.DefaultEvolutionConfig()
	evo.PopulationSize = 4
	evo.Generations = 7
	evo.MaxTicks = 20

	game := flappyai.NewConfigured(config.DefaultFlappyConfig(), evo)
	var m tea.Model = NewTrainingModel(game, testRuntime)
	m.Init()

	for range 2 {
		m = sendKeys(m, "+")
		m, _ = m.Update(TickMsg{})
	}
	for i := 0; i < 400 && !game.Done(); i++ {
		m, _ = m.Update(TickMsg{})
	}
	if game.Speed() != 4 {
		t.Errorf("speed = %d, expected 4 after two presses", game.Speed())
	}
	if !game.Done() || len(game.History()) != 7 {
		t.Fatalf("training done %v with %d generations", game.Done(), len(game.History()))
	}

	dash := m.(TrainingModel)
	if dash.Percent() != 1 {
		t.Errorf("Percent() = %v, expected 1", dash.Percent())
	}
	rows := dash.table.Rows()
	if len(rows) != dashboardRows || rows[0][0] != "7" {
		t.Errorf("table shows %d rows starting at %v, expected the latest %d", len(rows), rows[0], dashboardRows)
	}
	if view := m.View(); !strings.Contains(view, "gen 7/7") {
		t.Errorf("dashboard missing progress line:\n%s", view)
	}

	_, cmd := m.Update(keyMsg("b"))
	if cmd == nil {
		t.Error("back after training should leave the dashboard")
	}
}
