package flappy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
)

// ErrNoAgents is returned when an episode is created without birds.
var ErrNoAgents = errors.New("flappy: episode needs at least one agent")

// State is the episode state machine.
type State int

const (
	StateRunning State = iota
	StateOver
)

func (s State) String() string {
	if s == StateOver {
		return "over"
	}
	return "running"
}

// Cause says why an agent left the episode.
type Cause int

const (
	CauseNone Cause = iota
	CauseCollision
	CauseGround
	CauseCeiling
)

func (c Cause) String() string {
	switch c {
	case CauseCollision:
		return "collision"
	case CauseGround:
		return "ground"
	case CauseCeiling:
		return "ceiling"
	default:
		return "none"
	}
}

// Action is a controller's decision for one tick.
type Action uint8

const (
	Glide Action = iota
	Jump
)

// Observation is what a controller sees each tick: the bird's height and its
// vertical distances to the next pipe's gap line and bottom pipe.
type Observation struct {
	Y       float64
	DTop    float64
	DBottom float64
}

// Vector returns the observation as network inputs.
func (o Observation) Vector() []float64 {
	return []float64{o.Y, o.DTop, o.DBottom}
}

// Controller decides for one bird. It is called once per active bird per tick.
type Controller interface {
	Decide(obs Observation) Action
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(Observation) Action

// Decide implements Controller.
func (f ControllerFunc) Decide(obs Observation) Action { return f(obs) }

// Agent is a bird taking part in an episode. Agents with a Controller earn
// fitness; agents without one follow the player's input.
type Agent struct {
	ID           int
	Bird         *Bird
	Controller   Controller
	Fitness      float64
	Alive        bool
	EliminatedAt int
	Cause        Cause
}

// Driven reports whether the agent is controller-driven.
func (a *Agent) Driven() bool { return a.Controller != nil }

// Elimination records an agent leaving the episode.
type Elimination struct {
	AgentID int
	Cause   Cause
}

// StepReport summarises one tick.
type StepReport struct {
	Tick       int
	Eliminated []Elimination
	Passed     bool
	Retired    int
	State      core.GameState
}

// Option configures an Episode.
type Option func(*Episode)

// WithScoreCap ends the episode once the score exceeds n. 0 means no cap.
func WithScoreCap(n int) Option {
	return func(e *Episode) { e.scoreCap = n }
}

// WithGeneration labels the episode with a generation number.
func WithGeneration(g int) Option {
	return func(e *Episode) { e.generation = g }
}

// WithCollider overrides the collider chosen from the configuration.
func WithCollider(c Collider) Option {
	return func(e *Episode) { e.collider = c }
}

// WithGapSource overrides the random source for pipe gaps.
func WithGapSource(src GapSource) Option {
	return func(e *Episode) { e.gaps = src }
}

// WithSeed seeds the default gap source.
func WithSeed(seed int64) Option {
	return func(e *Episode) { e.gaps = rand.New(rand.NewSource(seed)) }
}

// WithoutPipes runs bird physics only.
func WithoutPipes() Option {
	return func(e *Episode) { e.pipesOn = false }
}

// Episode is one run of the simulation from start to StateOver.
// It is owned by a single goroutine.
type Episode struct {
	cfg        config.FlappyConfig
	field      *PipeField
	collider   Collider
	gaps       GapSource
	agents     []*Agent // every agent, by ID
	active     []*Agent // still flying, by ID
	score      int
	tick       int
	state      State
	generation int
	scoreCap   int
	pipesOn    bool
}

// NewEpisode creates an episode with one agent per controller. A nil
// controller makes a player-driven agent.
func NewEpisode(cfg config.FlappyConfig, controllers []Controller, opts ...Option) (*Episode, error) {
	if len(controllers) == 0 {
		return nil, ErrNoAgents
	}

	e := &Episode{cfg: cfg, pipesOn: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.collider == nil {
		c, err := NewCollider(cfg)
		if err != nil {
			return nil, err
		}
		e.collider = c
	}
	if e.gaps == nil {
		e.gaps = rand.New(rand.NewSource(rand.Int63()))
	}

	e.field = NewPipeField(cfg.Pipes, e.gaps)
	if e.pipesOn {
		e.field.Spawn(cfg.Pipes.InitialX)
	}

	e.agents = make([]*Agent, len(controllers))
	for i, c := range controllers {
		e.agents[i] = &Agent{
			ID:         i,
			Bird:       NewBird(cfg),
			Controller: c,
			Alive:      true,
		}
	}
	e.active = slices.Clone(e.agents)
	return e, nil
}

// Step advances the episode by one tick. Stepping a finished episode is a no-op.
func (e *Episode) Step(input core.InputFrame) StepReport {
	if e.state == StateOver {
		return StepReport{Tick: e.tick, State: e.GameState()}
	}
	e.tick++
	rep := StepReport{Tick: e.tick}

	// Decide on pre-move state, then move and jump.
	next := e.field.Next(e.cfg.Bird.X)
	for _, a := range e.active {
		a.Bird.BeginTick()
		var jump bool
		if a.Driven() {
			jump = a.Controller.Decide(e.observe(a.Bird, next)) == Jump
		} else {
			jump = input.Has(core.ActionJump)
		}
		a.Bird.Move()
		if jump {
			a.Bird.Jump()
		}
	}

	for _, a := range e.active {
		if a.Driven() {
			a.Fitness += e.cfg.Rewards.Survival
		}
	}

	e.field.Advance()
	var hit []*Agent
	for _, a := range e.active {
		for _, p := range e.field.Pipes() {
			if e.collider.Collides(a.Bird, p) {
				hit = append(hit, a)
				break
			}
		}
	}
	for _, a := range hit {
		if a.Driven() {
			a.Fitness += e.cfg.Rewards.Collision
		}
		e.eliminate(a, CauseCollision, &rep)
	}
	e.sweep()

	if lead := e.lead(); lead != nil {
		for _, p := range e.field.Pipes() {
			if !p.Passed && p.X < lead.Bird.X {
				p.Passed = true
				rep.Passed = true
			}
		}
	}

	if rep.Passed {
		e.score++
		for _, a := range e.active {
			if a.Driven() {
				a.Fitness += e.cfg.Rewards.Pass
			}
		}
		e.field.Spawn(e.cfg.Pipes.SpawnX)
	}

	rep.Retired = len(e.field.Retire())

	ground, ceiling := float64(e.cfg.Field.GroundY), float64(e.cfg.Field.CeilingY)
	for _, a := range e.active {
		switch {
		case a.Bird.Y+float64(a.Bird.Height()) >= ground:
			e.eliminate(a, CauseGround, &rep)
		case a.Bird.Y < ceiling:
			e.eliminate(a, CauseCeiling, &rep)
		}
	}
	e.sweep()

	if len(e.active) == 0 || (e.scoreCap > 0 && e.score > e.scoreCap) {
		e.state = StateOver
	}

	rep.State = e.GameState()
	return rep
}

// Run steps a controller-driven episode until it is over, maxTicks have
// elapsed (0 = no limit) or ctx is cancelled. Cancellation is checked
// between ticks.
func (e *Episode) Run(ctx context.Context, maxTicks int) error {
	input := core.NewInputFrame()
	for e.state == StateRunning {
		if maxTicks > 0 && e.tick >= maxTicks {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("flappy: episode stopped at tick %d: %w", e.tick, err)
		}
		e.Step(input)
	}
	return nil
}

// observe builds the observation for b against the pipe it is heading to.
// Without pipes the distances are measured to the bird itself.
func (e *Episode) observe(b *Bird, next *Pipe) Observation {
	obs := Observation{Y: b.Y}
	if next != nil {
		obs.DTop = math.Abs(b.Y - float64(next.Height))
		obs.DBottom = math.Abs(b.Y - float64(next.Bottom()))
	}
	return obs
}

func (e *Episode) eliminate(a *Agent, cause Cause, rep *StepReport) {
	if !a.Alive {
		return
	}
	a.Alive = false
	a.Cause = cause
	a.EliminatedAt = e.tick
	rep.Eliminated = append(rep.Eliminated, Elimination{AgentID: a.ID, Cause: cause})
}

// sweep drops eliminated agents from the active set.
func (e *Episode) sweep() {
	e.active = slices.DeleteFunc(e.active, func(a *Agent) bool { return !a.Alive })
}

// lead is the agent whose position decides when a pipe counts as passed.
func (e *Episode) lead() *Agent {
	if len(e.active) == 0 {
		return nil
	}
	return e.active[0]
}

// GameState returns the platform view of the episode.
func (e *Episode) GameState() core.GameState {
	return core.GameState{
		Score:    e.score,
		Tick:     e.tick,
		GameOver: e.state == StateOver,
	}
}

// State returns the state machine position.
func (e *Episode) State() State { return e.state }

// Score returns the number of pipes passed.
func (e *Episode) Score() int { return e.score }

// Tick returns the number of ticks simulated.
func (e *Episode) Tick() int { return e.tick }

// Generation returns the label given with WithGeneration.
func (e *Episode) Generation() int { return e.generation }

// Agents returns every agent, including eliminated ones, ordered by ID.
func (e *Episode) Agents() []*Agent { return e.agents }

// Active returns the agents still flying, ordered by ID.
func (e *Episode) Active() []*Agent { return e.active }

// Pipes returns the active pipes, leftmost first.
func (e *Episode) Pipes() []*Pipe { return e.field.Pipes() }

// Config returns the world parameters of the episode.
func (e *Episode) Config() config.FlappyConfig { return e.cfg }

// Best returns the agent with the highest fitness, or nil.
func (e *Episode) Best() *Agent {
	var best *Agent
	for _, a := range e.agents {
		if best == nil || a.Fitness > best.Fitness {
			best = a
		}
	}
	return best
}
