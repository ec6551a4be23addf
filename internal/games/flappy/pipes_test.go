package flappy

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/config"
)

func TestPipeSpawnGapRange(t *testing.T) {
	cfg := config.DefaultFlappyConfig().Pipes
	f := NewPipeField(cfg, rand.New(rand.NewSource(7)))

	for i := 0; i < 2000; i++ {
		p := f.Spawn(600)
		if p.Height < 50 || p.Height >= 450 {
			t.Fatalf("gap line %d outside [50, 450)", p.Height)
		}
		if p.Top() != p.Height-640 {
			t.Fatalf("Top() = %d, expected %d", p.Top(), p.Height-640)
		}
		if p.Bottom() != p.Height+200 {
			t.Fatalf("Bottom() = %d, expected %d", p.Bottom(), p.Height+200)
		}
	}
}

func TestPipeIDsIncrease(t *testing.T) {
	f := NewPipeField(config.DefaultFlappyConfig().Pipes, fixedGap(0))
	a := f.Spawn(600)
	b := f.Spawn(900)
	if b.ID <= a.ID {
		t.Errorf("IDs not increasing: %d then %d", a.ID, b.ID)
	}
	if f.Pipes()[0] != a || f.Pipes()[1] != b {
		t.Error("pipes should be ordered leftmost first")
	}
}

func TestPipeAdvanceAndRetire(t *testing.T) {
	cfg := config.DefaultFlappyConfig().Pipes
	f := NewPipeField(cfg, fixedGap(100))
	f.Spawn(0)
	f.Spawn(300)

	f.Advance()
	if f.Pipes()[0].X != -5 || f.Pipes()[1].X != 295 {
		t.Fatalf("after Advance x = %v, %v", f.Pipes()[0].X, f.Pipes()[1].X)
	}

	// Right edge at -5+104 = 99: still visible.
	if gone := f.Retire(); len(gone) != 0 {
		t.Fatalf("Retire removed %d visible pipes", len(gone))
	}

	for i := 0; i < 20; i++ {
		f.Advance()
	}
	// x = -105, right edge -1: off-field.
	gone := f.Retire()
	if len(gone) != 1 || gone[0].X != -105 {
		t.Fatalf("Retire = %+v, expected the first pipe", gone)
	}
	if len(f.Pipes()) != 1 {
		t.Fatalf("pipes = %d after retire, expected 1", len(f.Pipes()))
	}

	// Retiring again is a no-op.
	if again := f.Retire(); len(again) != 0 || len(f.Pipes()) != 1 {
		t.Errorf("second Retire removed %d pipes", len(again))
	}
}

func TestPipeNext(t *testing.T) {
	f := NewPipeField(config.DefaultFlappyConfig().Pipes, fixedGap(0))
	if f.Next(230) != nil {
		t.Fatal("empty field should have no next pipe")
	}

	first := f.Spawn(126) // right edge exactly at the bird
	second := f.Spawn(400)

	if got := f.Next(230); got != first {
		t.Errorf("Next = pipe %d, expected the first pipe while its edge reaches the bird", got.ID)
	}
	f.Advance()
	if got := f.Next(230); got != second {
		t.Errorf("Next = pipe %d, expected the second pipe once the first is behind", got.ID)
	}
}
