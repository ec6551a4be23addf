package registry

import (
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/core"
)

type stubGame struct {
	id       string
	unscored bool
	state    core.GameState
}

func (g *stubGame) ID() string               { return g.id }
func (g *stubGame) Title() string            { return "Stub " + g.id }
func (g *stubGame) Description() string      { return "a stub" }
func (g *stubGame) Unscored() bool           { return g.unscored }
func (g *stubGame) Reset(core.RuntimeConfig) { g.state = core.GameState{} }
func (g *stubGame) Render(*core.Screen)      {}
func (g *stubGame) State() core.GameState    { return g.state }
func (g *stubGame) Step(core.InputFrame) core.StepResult {
	g.state.Tick++
	return core.StepResult{State: g.state}
}

func TestRegisterAndCreate(t *testing.T) {
	Register("test_stub_a", func() Game { return &stubGame{id: "test_stub_a"} })
	Register("test_stub_b", func() Game { return &stubGame{id: "test_stub_b", unscored: true} })

	if !Exists("test_stub_a") {
		t.Fatal("registered game should exist")
	}

	g, err := Create("test_stub_a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.ID() != "test_stub_a" {
		t.Errorf("ID() = %q", g.ID())
	}

	info, ok := Info("test_stub_b")
	if !ok {
		t.Fatal("Info should find test_stub_b")
	}
	if info.Scored || info.Description != "a stub" || info.Title != "Stub test_stub_b" {
		t.Errorf("info = %+v", info)
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID > list[i].ID {
			t.Errorf("List not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
}

func TestCreateUnknown(t *testing.T) {
	if _, err := Create("no_such_game"); err == nil {
		t.Error("Create of unknown id should fail")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("test_stub_dup", func() Game { return &stubGame{id: "test_stub_dup"} })

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("test_stub_dup", func() Game { return &stubGame{id: "test_stub_dup"} })
}
