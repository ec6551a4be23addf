package flappy

import (
	"slices"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
)

// GapSource draws gap positions. *rand.Rand satisfies it.
type GapSource interface {
	Intn(n int) int
}

// Pipe is a top/bottom obstacle pair around a gap.
type Pipe struct {
	ID     int
	X      float64 // left edge
	Height int     // gap line: the top pipe ends here
	Passed bool

	width, gap, spriteHeight int
}

// Top is the y of the top sprite's upper edge (usually negative).
func (p *Pipe) Top() int { return p.Height - p.spriteHeight }

// Bottom is the y where the bottom sprite starts.
func (p *Pipe) Bottom() int { return p.Height + p.gap }

// Width returns the sprite width.
func (p *Pipe) Width() int { return p.width }

// Right is the x just past the pipe's right edge.
func (p *Pipe) Right() float64 { return p.X + float64(p.width) }

// TopRect is the top sprite's box in world pixels.
func (p *Pipe) TopRect() core.Rect {
	return core.NewRect(core.Round(p.X), p.Top(), p.width, p.spriteHeight)
}

// BottomRect is the bottom sprite's box in world pixels.
func (p *Pipe) BottomRect() core.Rect {
	return core.NewRect(core.Round(p.X), p.Bottom(), p.width, p.spriteHeight)
}

// PipeField owns the active pipes, ordered leftmost first.
type PipeField struct {
	cfg    config.PipesConfig
	src    GapSource
	pipes  []*Pipe
	nextID int
}

// NewPipeField creates an empty field drawing gaps from src.
func NewPipeField(cfg config.PipesConfig, src GapSource) *PipeField {
	return &PipeField{
		cfg:   cfg,
		src:   src,
		pipes: make([]*Pipe, 0, 4),
	}
}

// Spawn adds a pipe at x with a gap line drawn uniformly from [GapMin, GapMax).
// Pipes only ever spawn to the right of existing ones, so order is kept.
func (f *PipeField) Spawn(x float64) *Pipe {
	f.nextID++
	p := &Pipe{
		ID:           f.nextID,
		X:            x,
		Height:       f.cfg.GapMin + f.src.Intn(f.cfg.GapMax-f.cfg.GapMin),
		width:        f.cfg.Width,
		gap:          f.cfg.Gap,
		spriteHeight: f.cfg.SpriteHeight,
	}
	f.pipes = append(f.pipes, p)
	return p
}

// Advance moves every pipe left by the configured velocity.
func (f *PipeField) Advance() {
	for _, p := range f.pipes {
		p.X -= f.cfg.Velocity
	}
}

// Retire removes pipes whose right edge has left the field and returns them.
func (f *PipeField) Retire() []*Pipe {
	var gone []*Pipe
	f.pipes = slices.DeleteFunc(f.pipes, func(p *Pipe) bool {
		if p.Right() < 0 {
			gone = append(gone, p)
			return true
		}
		return false
	})
	return gone
}

// Next returns the pipe a bird at birdX should look at: the first one whose
// right edge has not yet fallen behind the bird. Nil when there is none.
func (f *PipeField) Next(birdX float64) *Pipe {
	for _, p := range f.pipes {
		if p.Right() >= birdX {
			return p
		}
	}
	return nil
}

// Pipes returns the active pipes, leftmost first. Callers must not modify the slice.
func (f *PipeField) Pipes() []*Pipe {
	return f.pipes
}
