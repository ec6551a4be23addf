package flappy

import (
	"fmt"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
)

// Collider decides whether a bird touches either half of a pipe.
type Collider interface {
	Collides(b *Bird, p *Pipe) bool
}

// MaskCollider tests pixel occupancy, offsetting pipe masks relative to the
// bird's rounded position.
type MaskCollider struct {
	Sprites Sprites
}

// Collides implements Collider.
func (c MaskCollider) Collides(b *Bird, p *Pipe) bool {
	by := core.Round(b.Y)
	dx := core.Round(p.X - b.X)
	if c.Sprites.Bird.Overlap(c.Sprites.PipeBottom, dx, p.Bottom()-by) {
		return true
	}
	return c.Sprites.Bird.Overlap(c.Sprites.PipeTop, dx, p.Top()-by)
}

// BoxCollider tests axis-aligned bounding boxes.
type BoxCollider struct{}

// Collides implements Collider.
func (BoxCollider) Collides(b *Bird, p *Pipe) bool {
	r := b.Rect()
	return r.Intersects(p.TopRect()) || r.Intersects(p.BottomRect())
}

// NewCollider returns the collider selected by cfg.Collision.Mode.
func NewCollider(cfg config.FlappyConfig) (Collider, error) {
	switch cfg.Collision.Mode {
	case config.CollisionMask, "":
		return MaskCollider{Sprites: NewSprites(cfg)}, nil
	case config.CollisionBox:
		return BoxCollider{}, nil
	default:
		return nil, fmt.Errorf("flappy: unknown collision mode %q", cfg.Collision.Mode)
	}
}
