package flappyai

import (
	"fmt"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappy"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
)

// Replay flies one saved genome. It is not registered: the watch command
// builds it from a genome file.
type Replay struct {
	rec       evolve.GenomeRecord
	genome    *genetics.Genome
	world     config.FlappyConfig
	threshold float64

	episode *flappy.Episode
	brain   *evolve.Brain
	flights int
	best    int
	paused  bool
	err     error
}

// NewReplay checks the record and prepares a replay. Reset starts the
// first flight.
func NewReplay(rec evolve.GenomeRecord, world config.FlappyConfig, net config.NetworkConfig) (*Replay, error) {
	g, err := rec.Genome()
	if err != nil {
		return nil, err
	}
	return &Replay{rec: rec, genome: g, world: world, threshold: net.JumpThreshold}, nil
}

// ID returns the unique identifier for this game.
func (r *Replay) ID() string { return "flappy_watch" }

// Title returns the display name for this game.
func (r *Replay) Title() string { return "Champion Replay" }

// Unscored implements registry.Unscored.
func (r *Replay) Unscored() bool { return true }

// Reset starts a new flight with a fresh network.
func (r *Replay) Reset(rt core.RuntimeConfig) {
	r.paused = false
	brain, err := evolve.NewBrain(r.genome, r.threshold)
	if err != nil {
		r.err = err
		return
	}
	ep, err := flappy.NewEpisode(r.world, []flappy.Controller{brain}, flappy.WithSeed(rt.Seed))
	if err != nil {
		r.err = err
		return
	}
	r.brain, r.episode = brain, ep
	r.flights++
}

// Step advances the flight by one tick.
func (r *Replay) Step(in core.InputFrame) core.StepResult {
	if r.episode == nil {
		return core.StepResult{State: r.State()}
	}
	if in.Has(core.ActionPause) && r.episode.State() != flappy.StateOver {
		r.paused = !r.paused
	}
	if !r.paused && r.episode.State() != flappy.StateOver {
		var none core.InputFrame
		r.episode.Step(none)
		r.best = max(r.best, r.episode.Score())
	}
	return core.StepResult{State: r.State()}
}

// Render draws the flight with the genome's details.
func (r *Replay) Render(dst *core.Screen) {
	if r.episode == nil {
		flappy.DrawCenteredMessage(dst, "CANNOT FLY GENOME", errorText(r.err))
		return
	}

	hud := flappy.HUD{Title: r.Title(), Lines: []string{
		fmt.Sprintf("Genome: %d", r.rec.ID),
		fmt.Sprintf("From gen: %d", r.rec.Generation),
		fmt.Sprintf("Fitness: %.1f", r.rec.Fitness),
		fmt.Sprintf("Net: %dn %dl", r.brain.NodeCount(), r.brain.LinkCount()),
		fmt.Sprintf("Flight: %d", r.flights),
		fmt.Sprintf("Best: %d", r.best),
		"",
		"P: pause",
		"R: fly again",
	}}
	flappy.RenderEpisode(dst, r.episode, hud)

	switch {
	case r.episode.State() == flappy.StateOver:
		flappy.DrawCenteredMessage(dst, "CRASHED", fmt.Sprintf("Score: %d  |  Press R to fly again", r.episode.Score()))
	case r.paused:
		flappy.DrawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
}

// State returns the current game state.
func (r *Replay) State() core.GameState {
	if r.episode == nil {
		return core.GameState{GameOver: true}
	}
	st := r.episode.GameState()
	st.Paused = r.paused
	return st
}

// Episode exposes the running flight.
func (r *Replay) Episode() *flappy.Episode { return r.episode }
