package flappy

import (
	"math"

	"github.com/vovakirdan/flappy-evolve/internal/config"
)

// fixedGap always draws the same offset into the gap range.
type fixedGap int

func (f fixedGap) Intn(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

// noCollider never reports a collision.
type noCollider struct{}

func (noCollider) Collides(*Bird, *Pipe) bool { return false }

// hover jumps whenever the bird has sunk below target.
func hover(target float64) Controller {
	return ControllerFunc(func(o Observation) Action {
		if o.Y > target {
			return Jump
		}
		return Glide
	})
}

func boxConfig() config.FlappyConfig {
	cfg := config.DefaultFlappyConfig()
	cfg.Collision.Mode = config.CollisionBox
	return cfg
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
