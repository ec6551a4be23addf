package flappy

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/config"
)

func TestParseMask(t *testing.T) {
	m := ParseMask(
		".#.",
		"###",
		".#.",
	)
	if m.w != 3 || m.h != 3 {
		t.Fatalf("size = %dx%d", m.w, m.h)
	}
	set := 0
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.Get(x, y) {
				set++
			}
		}
	}
	if set != 5 {
		t.Errorf("set pixels = %d, expected 5", set)
	}
	if m.Get(0, 0) || !m.Get(1, 0) || !m.Get(2, 1) {
		t.Errorf("unexpected pixels:\n%s", m)
	}
	if m.Get(-1, 0) || m.Get(3, 3) {
		t.Error("out of bounds pixels should read unset")
	}
}

func TestMaskOverlapOffsets(t *testing.T) {
	plus := ParseMask(
		".#.",
		"###",
		".#.",
	)
	dot := ParseMask("#")

	tests := []struct {
		name   string
		dx, dy int
		want   bool
	}{
		{"centre", 1, 1, true},
		{"empty corner", 0, 0, false},
		{"edge arm", 2, 1, true},
		{"outside right", 3, 1, false},
		{"outside above", 1, -1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := plus.Overlap(dot, tc.dx, tc.dy); got != tc.want {
				t.Errorf("Overlap(%d, %d) = %v, expected %v", tc.dx, tc.dy, got, tc.want)
			}
		})
	}
}

func TestMaskOverlapSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	random := func(w, h int) *Mask {
		m := NewMask(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if rng.Intn(5) == 0 {
					m.Set(x, y)
				}
			}
		}
		return m
	}

	for i := 0; i < 300; i++ {
		a := random(1+rng.Intn(140), 1+rng.Intn(20))
		b := random(1+rng.Intn(140), 1+rng.Intn(20))
		dx, dy := rng.Intn(300)-150, rng.Intn(40)-20

		if a.Overlap(b, dx, dy) != b.Overlap(a, -dx, -dy) {
			t.Fatalf("asymmetric overlap at (%d, %d)", dx, dy)
		}
		if a.Overlap(b, dx, dy) != bruteOverlap(a, b, dx, dy) {
			t.Fatalf("Overlap disagrees with per-pixel check at (%d, %d)", dx, dy)
		}
	}
}

func bruteOverlap(a, b *Mask, dx, dy int) bool {
	for y := 0; y < a.h; y++ {
		for x := 0; x < a.w; x++ {
			if a.Get(x, y) && b.Get(x-dx, y-dy) {
				return true
			}
		}
	}
	return false
}

func TestEllipseMaskCorners(t *testing.T) {
	m := EllipseMask(68, 48)
	if m.Get(0, 0) || m.Get(67, 0) || m.Get(0, 47) || m.Get(67, 47) {
		t.Error("ellipse corners should be empty")
	}
	if !m.Get(34, 24) || !m.Get(0, 24) || !m.Get(67, 24) {
		t.Error("ellipse centre row should span the full width")
	}
}

func TestBoxAndMaskCollidersAgreeOnSolidSprites(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	solid := MaskCollider{Sprites: Sprites{
		Bird:       FilledMask(cfg.Bird.Width, cfg.Bird.Height),
		PipeTop:    FilledMask(cfg.Pipes.Width, cfg.Pipes.SpriteHeight),
		PipeBottom: FilledMask(cfg.Pipes.Width, cfg.Pipes.SpriteHeight),
	}}
	box := BoxCollider{}

	rng := rand.New(rand.NewSource(11))
	field := NewPipeField(cfg.Pipes, rng)
	b := NewBird(cfg)
	for i := 0; i < 2000; i++ {
		p := field.Spawn(float64(rng.Intn(500) - 120))
		b.Y = float64(rng.Intn(760) - 30)

		if solid.Collides(b, p) != box.Collides(b, p) {
			t.Fatalf("colliders disagree: bird y=%v pipe x=%v height=%d", b.Y, p.X, p.Height)
		}
	}
}

func TestMaskColliderRoundedBody(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	c := MaskCollider{Sprites: NewSprites(cfg)}
	b := NewBird(cfg)
	f := NewPipeField(cfg.Pipes, fixedGap(250)) // gap line 300, bottom 500

	// Bird box corner clips the bottom pipe's corner by two pixels; the
	// rounded body does not reach it.
	b.Y = 500 - 48 + 2
	p := f.Spawn(b.X + 66)
	if !(BoxCollider{}).Collides(b, p) {
		t.Fatal("boxes should touch in this setup")
	}
	if c.Collides(b, p) {
		t.Error("rounded body should miss the corner")
	}

	// Deep overlap hits either way.
	b.Y = 480
	p.X = b.X
	if !c.Collides(b, p) {
		t.Error("bird inside the bottom pipe should collide")
	}
}
