package flappyai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/registry"
)

// newTestGame resets a game with a small, quick evolution config.
func newTestGame(t *testing.T, yaml string) *Game {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "evolution.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	SetConfigPath(path)
	t.Cleanup(func() { SetConfigPath("") })

	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 1})
	if g.err != nil {
		t.Fatalf("Reset() error = %v", g.err)
	}
	return g
}

const quickConfig = "population_size: 6\ngenerations: 2\nmax_ticks: 40\n"

func frame(actions ...core.Action) core.InputFrame {
	f := core.NewInputFrame()
	for _, a := range actions {
		f.Set(a)
	}
	return f
}

func TestTrainingRunsConfiguredGenerations(t *testing.T) {
	g := newTestGame(t, quickConfig)

	if g.Generation() != 1 || len(g.Episode().Agents()) != 6 {
		t.Fatalf("generation %d with %d birds, expected 1 with 6", g.Generation(), len(g.Episode().Agents()))
	}

	for i := 0; i < 500 && !g.State().GameOver; i++ {
		g.Step(core.InputFrame{})
	}

	if !g.State().GameOver {
		t.Fatal("training should finish after the configured generations")
	}
	if len(g.History()) != 2 {
		t.Errorf("history = %d generations, expected 2", len(g.History()))
	}
	for i, s := range g.History() {
		if s.Generation != i+1 {
			t.Errorf("history[%d].Generation = %d", i, s.Generation)
		}
		if s.Ticks > 40 {
			t.Errorf("generation %d ran %d ticks past max_ticks", s.Generation, s.Ticks)
		}
	}
	if g.Trainer().Champion().Genome == nil {
		t.Error("finished training should have a champion")
	}

	// Finished training ignores further steps.
	tick := g.Episode().Tick()
	g.Step(core.InputFrame{})
	if g.Episode().Tick() != tick {
		t.Error("steps after completion should do nothing")
	}
}

func TestSpeedControls(t *testing.T) {
	g := newTestGame(t, quickConfig)

	g.Step(frame(core.ActionFaster))
	if g.speed != 2 || g.Episode().Tick() != 2 {
		t.Fatalf("speed %d after %d ticks, expected speed 2 after 2 ticks", g.speed, g.Episode().Tick())
	}
	for i := 0; i < 10; i++ {
		g.Step(frame(core.ActionFaster, core.ActionPause))
		g.Step(frame(core.ActionPause))
	}
	if g.speed != maxSpeed {
		t.Errorf("speed = %d, expected the cap %d", g.speed, maxSpeed)
	}
	for i := 0; i < 10; i++ {
		g.Step(frame(core.ActionSlower, core.ActionPause))
		g.Step(frame(core.ActionPause))
	}
	if g.speed != 1 {
		t.Errorf("speed = %d, expected 1", g.speed)
	}
}

func TestPauseFreezesTraining(t *testing.T) {
	g := newTestGame(t, quickConfig)

	g.Step(frame(core.ActionPause))
	if !g.State().Paused {
		t.Fatal("expected paused state")
	}
	for i := 0; i < 5; i++ {
		g.Step(core.InputFrame{})
	}
	if g.Episode().Tick() != 0 {
		t.Errorf("tick = %d while paused, expected 0", g.Episode().Tick())
	}

	g.Step(frame(core.ActionPause))
	if g.State().Paused || g.Episode().Tick() != 1 {
		t.Errorf("after resume: paused %v, tick %d", g.State().Paused, g.Episode().Tick())
	}
}

func TestFitnessThresholdEndsTraining(t *testing.T) {
	g := newTestGame(t, quickConfig+"fitness_threshold: 0.5\n")

	for i := 0; i < 200 && !g.State().GameOver; i++ {
		g.Step(core.InputFrame{})
	}
	if len(g.History()) != 1 {
		t.Errorf("history = %d generations, expected to stop after 1", len(g.History()))
	}
}

func TestInvalidConfigFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	SetConfigPath(filepath.Join(t.TempDir(), "missing.yaml"))
	t.Cleanup(func() { SetConfigPath("") })

	g := New()
	g.Reset(core.RuntimeConfig{Seed: 1})
	if g.err == nil {
		t.Fatal("missing config should be reported")
	}
	if g.evo.PopulationSize != 50 || len(g.Episode().Agents()) != 50 {
		t.Errorf("population = %d, expected the default 50", len(g.Episode().Agents()))
	}
}

func TestRenderShowsTrainingPanel(t *testing.T) {
	g := newTestGame(t, quickConfig)
	for i := 0; i < 45; i++ {
		g.Step(core.InputFrame{})
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()
	for _, want := range []string{"Flappy Evolve", "Gen:   2", "Speed: x1", "Last best:", "Alive:"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRegisteredUnscored(t *testing.T) {
	info, ok := registry.Info("flappy_ai")
	if !ok {
		t.Fatal("flappy_ai not registered")
	}
	if info.Scored {
		t.Error("training must not reach the scoreboard")
	}
}

func TestConfiguredGameNotifiesListeners(t *testing.T) {
	evo := config.DefaultEvolutionConfig()
	evo.PopulationSize = 5
	evo.Generations = 3
	evo.MaxTicks = 30

	var seen []int
	listener := evolve.ListenerFunc(func(s evolve.GenerationStats, _ evolve.Champion) {
		seen = append(seen, s.Generation)
	})

	g := NewConfigured(config.DefaultFlappyConfig(), evo, evolve.WithListener(listener))
	g.Reset(core.RuntimeConfig{Seed: 7})
	for i := 0; i < 500 && !g.Done(); i++ {
		g.Step(core.InputFrame{})
	}

	if g.Err() != nil {
		t.Fatalf("training error = %v", g.Err())
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("listener saw generations %v, expected [1 2 3]", seen)
	}
	if g.Evolution().PopulationSize != 5 {
		t.Error("configured game should keep its evolution config")
	}
}
