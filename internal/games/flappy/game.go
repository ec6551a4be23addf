// Package flappy implements the Flappy Bird simulation: bird kinematics,
// the pipe field, collision oracles and the per-tick episode loop, plus the
// keyboard-driven variants registered with the platform.
package flappy

import (
	"fmt"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/registry"
)

// configPath is the custom config path (set via SetConfigPath).
var configPath string

// SetConfigPath sets the custom world config path used on Reset.
func SetConfigPath(path string) {
	configPath = path
}

// LoadConfig loads the world configuration from the configured path.
func LoadConfig() (config.FlappyConfig, error) {
	return config.LoadFlappy(configPath)
}

// Game is a single keyboard-driven bird.
type Game struct {
	id       string
	title    string
	skeleton bool

	cfg     config.FlappyConfig
	episode *Episode
	paused  bool
	err     error
}

// New creates the playable game.
func New() *Game {
	return &Game{id: "flappy", title: "Flappy Bird"}
}

// NewSkeleton creates the physics-only variant: no pipes, just the bird.
func NewSkeleton() *Game {
	return &Game{id: "flappy_skeleton", title: "Flappy Skeleton", skeleton: true}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string { return g.id }

// Title returns the display name for this game.
func (g *Game) Title() string { return g.title }

// Description implements registry.Describer.
func (g *Game) Description() string {
	if g.skeleton {
		return "Bird physics only, no pipes"
	}
	return "Flap through the pipes"
}

// Reset starts a fresh episode. Config errors fall back to the defaults and
// are shown on screen.
func (g *Game) Reset(rt core.RuntimeConfig) {
	cfg, err := LoadConfig()
	if err != nil {
		cfg = config.DefaultFlappyConfig()
	}
	g.cfg = cfg
	g.err = err
	g.paused = false

	opts := []Option{WithSeed(rt.Seed)}
	if g.skeleton {
		opts = append(opts, WithoutPipes())
	}
	ep, err := NewEpisode(cfg, []Controller{nil}, opts...)
	if err != nil {
		// Only an unknown collision mode can fail here, defaults cannot.
		g.err = err
		ep, _ = NewEpisode(config.DefaultFlappyConfig(), []Controller{nil}, opts...)
	}
	g.episode = ep
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.episode.State() == StateOver {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.episode.Step(in)
	return core.StepResult{State: g.State()}
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	hud := HUD{Title: g.title, Lines: []string{"", "Space: flap", "P: pause", "B: back"}}
	if g.err != nil {
		hud.Lines = append(hud.Lines, "", "config error,", "using defaults")
	}
	RenderEpisode(dst, g.episode, hud)

	if g.paused {
		DrawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
	if g.episode.State() == StateOver {
		DrawCenteredMessage(dst, "GAME OVER", fmt.Sprintf("Score: %d  |  Press R to restart", g.episode.Score()))
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	st := g.episode.GameState()
	st.Paused = g.paused
	return st
}

// Episode exposes the running episode.
func (g *Game) Episode() *Episode { return g.episode }

// DrawCenteredMessage draws a message box in the center of the screen.
func DrawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := core.Max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))

	dst.DrawTextCentered(boxY+1, title, core.ColorHUD)
	dst.DrawTextCentered(boxY+3, subtitle, core.ColorDefault)
}

func init() {
	registry.Register("flappy", func() registry.Game {
		return New()
	})
	registry.Register("flappy_skeleton", func() registry.Game {
		return NewSkeleton()
	})
}
