package core

import "testing"

func TestInputFrameSetHasClear(t *testing.T) {
	f := NewInputFrame()
	if !f.Empty() {
		t.Fatal("new frame should be empty")
	}

	f.Set(ActionJump)
	if !f.Has(ActionJump) || f.Has(ActionQuit) {
		t.Errorf("Has() mismatch after Set(Jump): %v", f.Actions)
	}

	clone := f.Clone()
	f.Clear()
	if !f.Empty() {
		t.Error("Clear() should leave no actions")
	}
	if !clone.Has(ActionJump) {
		t.Error("Clone() should not share state with the original")
	}
}

func TestInputFrameZeroValue(t *testing.T) {
	var f InputFrame
	if f.Has(ActionJump) {
		t.Error("zero frame should report no actions")
	}
	f.Set(ActionPause)
	if !f.Has(ActionPause) {
		t.Error("Set() on zero frame should allocate")
	}
}

func TestActionString(t *testing.T) {
	tests := map[Action]string{
		ActionJump:   "Jump",
		ActionFaster: "Faster",
		Action(99):   "Unknown",
	}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("Action(%d).String() = %q, expected %q", a, got, want)
		}
	}
}

func TestAgentColorWraps(t *testing.T) {
	if AgentColor(0) != AgentColor(len(birdPalette)) {
		t.Error("AgentColor should cycle through the palette")
	}
	if AgentColor(-3) != AgentColor(3) {
		t.Error("negative indices should map like positive ones")
	}
}
