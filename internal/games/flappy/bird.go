package flappy

import (
	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
)

// Bird is one flapping entity. Its horizontal position never changes;
// vertical motion follows a closed-form law of the ticks since the last jump.
type Bird struct {
	X, Y  float64
	Vel   float64 // set only by Jump
	Ticks int     // ticks since the last jump
	Tilt  float64 // degrees, display only
	JumpY float64 // Y at the last jump

	width, height int
	phys          config.PhysicsConfig
	jumped        bool
}

// NewBird places a bird at the configured start position, at rest.
func NewBird(cfg config.FlappyConfig) *Bird {
	return &Bird{
		X:      cfg.Bird.X,
		Y:      cfg.Bird.Y,
		JumpY:  cfg.Bird.Y,
		width:  cfg.Bird.Width,
		height: cfg.Bird.Height,
		phys:   cfg.Physics,
	}
}

// BeginTick re-arms the once-per-tick jump guard.
func (b *Bird) BeginTick() {
	b.jumped = false
}

// Jump applies an upward impulse. A second call within the same tick is
// ignored and reports false.
func (b *Bird) Jump() bool {
	if b.jumped {
		return false
	}
	b.jumped = true
	b.Vel = b.phys.JumpVelocity
	b.Ticks = 0
	b.JumpY = b.Y
	return true
}

// Move advances the bird by one tick and returns the displacement applied.
func (b *Bird) Move() float64 {
	b.Ticks++
	d := Displacement(b.phys, b.Vel, b.Ticks)
	b.Y += d

	if d < 0 || b.Y < b.JumpY+b.phys.TiltHold {
		if b.Tilt < b.phys.MaxRotation {
			b.Tilt = b.phys.MaxRotation
		}
	} else if b.Tilt > b.phys.MinTilt {
		b.Tilt = core.ClampF(b.Tilt-b.phys.RotationVelocity, b.phys.MinTilt, b.phys.MaxRotation)
	}
	return d
}

// Displacement is the vertical travel during the given tick after an impulse
// of vel: vel*t + a*t^2, capped at the terminal value downward and boosted
// while rising.
func Displacement(phys config.PhysicsConfig, vel float64, ticks int) float64 {
	t := float64(ticks)
	d := vel*t + phys.Acceleration*t*t
	if d >= phys.TerminalVelocity {
		d = phys.TerminalVelocity
	}
	if d < 0 {
		d -= phys.RiseBoost
	}
	return d
}

// Width returns the sprite width.
func (b *Bird) Width() int { return b.width }

// Height returns the sprite height.
func (b *Bird) Height() int { return b.height }

// Rect returns the bird's bounding box in world pixels.
func (b *Bird) Rect() core.Rect {
	return core.NewRect(core.Round(b.X), core.Round(b.Y), b.width, b.height)
}
