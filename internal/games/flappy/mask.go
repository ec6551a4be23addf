package flappy

import (
	"strings"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
)

// Mask is a packed 1-bit occupancy grid, one bit per sprite pixel.
// Row y, column x lives in word y*stride + x/64, bit x%64.
type Mask struct {
	w, h   int
	stride int
	words  []uint64
}

// NewMask returns an empty mask of the given size.
func NewMask(w, h int) *Mask {
	w, h = core.Max(w, 0), core.Max(h, 0)
	stride := (w + 63) / 64
	return &Mask{w: w, h: h, stride: stride, words: make([]uint64, stride*h)}
}

// FilledMask returns a mask with every pixel set.
func FilledMask(w, h int) *Mask {
	m := NewMask(w, h)
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			m.Set(x, y)
		}
	}
	return m
}

// EllipseMask returns the ellipse inscribed in a w×h box.
func EllipseMask(w, h int) *Mask {
	m := NewMask(w, h)
	rx, ry := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Pixel centres
			dx := (float64(x) + 0.5 - rx) / rx
			dy := (float64(y) + 0.5 - ry) / ry
			if dx*dx+dy*dy <= 1 {
				m.Set(x, y)
			}
		}
	}
	return m
}

// ParseMask builds a mask from rows of text, '#' marks a set pixel.
func ParseMask(rows ...string) *Mask {
	w := 0
	for _, r := range rows {
		w = core.Max(w, len(r))
	}
	m := NewMask(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] == '#' {
				m.Set(x, y)
			}
		}
	}
	return m
}

// Set marks a pixel. Out-of-bounds coordinates are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		return
	}
	m.words[y*m.stride+x/64] |= 1 << uint(x%64)
}

// Get reports whether a pixel is set.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || x >= m.w || y < 0 || y >= m.h {
		return false
	}
	return m.words[y*m.stride+x/64]&(1<<uint(x%64)) != 0
}

// span returns up to 64 bits of row y starting at column x.
func (m *Mask) span(x, y int) uint64 {
	row := m.words[y*m.stride : (y+1)*m.stride]
	k, off := x/64, uint(x%64)
	v := row[k] >> off
	if off != 0 && k+1 < len(row) {
		v |= row[k+1] << (64 - off)
	}
	return v
}

// Overlap reports whether any set pixel of m coincides with a set pixel of
// other placed with its origin at (dx, dy) in m's coordinates.
// m.Overlap(o, dx, dy) == o.Overlap(m, -dx, -dy).
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	x0, x1 := core.Max(0, dx), core.Min(m.w, dx+other.w)
	y0, y1 := core.Max(0, dy), core.Min(m.h, dy+other.h)
	if x0 >= x1 || y0 >= y1 {
		return false
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x += 64 {
			n := core.Min(64, x1-x)
			keep := ^uint64(0)
			if n < 64 {
				keep = (1 << uint(n)) - 1
			}
			if m.span(x, y)&other.span(x-dx, y-dy)&keep != 0 {
				return true
			}
		}
	}
	return false
}

// String draws the mask with '#' and '.', one line per row.
func (m *Mask) String() string {
	var sb strings.Builder
	for y := 0; y < m.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < m.w; x++ {
			if m.Get(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

// Sprites holds the occupancy masks of every sprite that takes part in
// collisions.
type Sprites struct {
	Bird       *Mask
	PipeTop    *Mask
	PipeBottom *Mask
}

// NewSprites builds masks for the configured sprite sizes: a rounded bird body
// and solid pipes.
func NewSprites(cfg config.FlappyConfig) Sprites {
	return Sprites{
		Bird:       EllipseMask(cfg.Bird.Width, cfg.Bird.Height),
		PipeTop:    FilledMask(cfg.Pipes.Width, cfg.Pipes.SpriteHeight),
		PipeBottom: FilledMask(cfg.Pipes.Width, cfg.Pipes.SpriteHeight),
	}
}
