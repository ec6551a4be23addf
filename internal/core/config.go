package core

// RuntimeConfig is what the platform hands a game on Reset.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second
	Seed     int64 // RNG seed; 0 lets the platform pick one
}

// DefaultConfig returns the runtime settings used when nothing is overridden.
// 30 ticks per second matches the pace the physics constants were tuned for.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// GameState is the externally visible status of a running game.
type GameState struct {
	Score    int  // Pipes passed
	Tick     int  // Ticks simulated in the current episode
	GameOver bool // Whether the episode has ended
	Paused   bool // Whether the game is paused
}

// StepResult is returned by Game.Step after each tick.
type StepResult struct {
	State GameState
}
