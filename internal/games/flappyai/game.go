// Package flappyai is the neuro-evolved variant: a whole population flies at
// once and each finished episode breeds the next generation.
package flappyai

import (
	"fmt"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappy"
	"github.com/vovakirdan/flappy-evolve/internal/registry"
)

const maxSpeed = 16

// configPath is the custom evolution config path (set via SetConfigPath).
var configPath string

// SetConfigPath sets the custom evolution config path used on Reset.
func SetConfigPath(path string) {
	configPath = path
}

// Game trains a population live, one simulation tick per speed step.
type Game struct {
	world       config.FlappyConfig
	evo         config.EvolutionConfig
	configured  bool
	trainerOpts []evolve.TrainerOption
	trainer     *evolve.Trainer

	episode    *flappy.Episode
	brains     []*evolve.Brain
	generation int
	history    []evolve.GenerationStats

	speed  int
	paused bool
	done   bool
	err    error
}

// New creates the training game.
func New() *Game {
	return &Game{speed: 1}
}

// NewConfigured creates a training game with fixed configs instead of the
// config files. The options are passed to every trainer Reset builds.
func NewConfigured(world config.FlappyConfig, evo config.EvolutionConfig, opts ...evolve.TrainerOption) *Game {
	return &Game{
		world:       world,
		evo:         evo,
		configured:  true,
		trainerOpts: opts,
		speed:       1,
	}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string { return "flappy_ai" }

// Title returns the display name for this game.
func (g *Game) Title() string { return "Flappy Evolve" }

// Description implements registry.Describer.
func (g *Game) Description() string { return "Watch a NEAT population learn to fly" }

// Unscored implements registry.Unscored.
func (g *Game) Unscored() bool { return true }

// Reset starts training from fresh founders.
func (g *Game) Reset(rt core.RuntimeConfig) {
	g.err = nil
	if !g.configured {
		g.loadConfigs()
	}

	g.history = nil
	g.paused = false
	g.done = false
	g.generation = 1

	tr, err := evolve.NewTrainer(g.world, g.evo, rt.Seed, g.trainerOpts...)
	if err != nil {
		g.err = err
		g.done = true
		return
	}
	g.trainer = tr
	g.startEpisode()
}

func (g *Game) loadConfigs() {
	world, err := flappy.LoadConfig()
	if err != nil {
		world, g.err = config.DefaultFlappyConfig(), err
	}
	evo, err := config.LoadEvolution(configPath)
	if err != nil {
		evo, g.err = config.DefaultEvolutionConfig(), err
	}
	g.world, g.evo = world, evo
}

func (g *Game) startEpisode() {
	ep, brains, err := g.trainer.NewEpisode(g.generation)
	if err != nil {
		g.err = err
		g.done = true
		return
	}
	g.episode, g.brains = ep, brains
}

// Step advances training by speed ticks. A finished episode is bred into the
// next generation on the following tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if in.Has(core.ActionFaster) {
		g.speed = core.Min(g.speed*2, maxSpeed)
	}
	if in.Has(core.ActionSlower) {
		g.speed = core.Max(g.speed/2, 1)
	}
	if g.paused || g.done {
		return core.StepResult{State: g.State()}
	}

	var none core.InputFrame
	for i := 0; i < g.speed && !g.done; i++ {
		if g.episode.State() == flappy.StateOver || g.tickLimitReached() {
			g.finishGeneration()
			continue
		}
		g.episode.Step(none)
	}
	return core.StepResult{State: g.State()}
}

func (g *Game) tickLimitReached() bool {
	return g.evo.MaxTicks > 0 && g.episode.Tick() >= g.evo.MaxTicks
}

func (g *Game) finishGeneration() {
	stats, err := g.trainer.Finish(g.generation, g.episode, g.brains)
	if err != nil {
		g.err = err
		g.done = true
		return
	}
	g.history = append(g.history, stats)

	if g.evo.FitnessThreshold > 0 && stats.Best >= g.evo.FitnessThreshold {
		g.done = true
		return
	}
	if g.evo.Generations > 0 && g.generation >= g.evo.Generations {
		g.done = true
		return
	}
	g.generation++
	g.startEpisode()
}

// Render draws the live episode with the training panel.
func (g *Game) Render(dst *core.Screen) {
	if g.episode == nil {
		flappy.DrawCenteredMessage(dst, "TRAINING FAILED", errorText(g.err))
		return
	}

	hud := flappy.HUD{Title: g.Title(), Lines: g.panel()}
	flappy.RenderEpisode(dst, g.episode, hud)

	switch {
	case g.done && g.err != nil:
		flappy.DrawCenteredMessage(dst, "TRAINING STOPPED", errorText(g.err))
	case g.done:
		flappy.DrawCenteredMessage(dst, "TRAINING COMPLETE",
			fmt.Sprintf("Best fitness %.1f  |  Press R to restart", g.trainer.Champion().Fitness))
	case g.paused:
		flappy.DrawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
}

func (g *Game) panel() []string {
	lines := []string{fmt.Sprintf("Speed: x%d", g.speed)}
	if n := len(g.history); n > 0 {
		last := g.history[n-1]
		lines = append(lines,
			"",
			fmt.Sprintf("Last best: %.1f", last.Best),
			fmt.Sprintf("Last mean: %.1f", last.Mean),
			fmt.Sprintf("Last score: %d", last.Score),
			fmt.Sprintf("Species: %d", last.Species),
			fmt.Sprintf("Champion: %.1f", g.trainer.Champion().Fitness),
		)
	}
	lines = append(lines, "", "+/-: speed", "P: pause", "B: back")
	if g.err != nil && !g.done {
		lines = append(lines, "", "config error,", "using defaults")
	}
	return lines
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// State returns the current game state. The score is the current episode's.
func (g *Game) State() core.GameState {
	if g.episode == nil {
		return core.GameState{GameOver: true}
	}
	st := g.episode.GameState()
	st.GameOver = g.done
	st.Paused = g.paused
	return st
}

// Speed returns the simulation ticks run per Step.
func (g *Game) Speed() int { return g.speed }

// Done reports whether training has finished or stopped.
func (g *Game) Done() bool { return g.done }

// Err returns the error that stopped training or forced the default configs.
func (g *Game) Err() error { return g.err }

// Evolution returns the evolution config in use.
func (g *Game) Evolution() config.EvolutionConfig { return g.evo }

// Generation returns the generation currently flying.
func (g *Game) Generation() int { return g.generation }

// History returns the stats of every finished generation.
func (g *Game) History() []evolve.GenerationStats { return g.history }

// Trainer exposes the underlying trainer.
func (g *Game) Trainer() *evolve.Trainer { return g.trainer }

// Episode exposes the running episode.
func (g *Game) Episode() *flappy.Episode { return g.episode }

func init() {
	registry.Register("flappy_ai", func() registry.Game {
		return New()
	})
}
