package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evolve/internal/platform/tui"
	"github.com/vovakirdan/flappy-evolve/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play <variant>",
	Short: "Play a variant",
	Long: `Start the given variant.

Controls:
  Space/W/Up  - Flap
  P           - Pause
  R           - Restart (after game over)
  +/-         - Training speed (flappy_ai)
  B/Esc       - Leave (when paused or over)
  Q/Ctrl+C    - Quit

Examples:
  flappy play flappy
  flappy play flappy_skeleton
  flappy play flappy_ai --evo-config ./evolution.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(_ *cobra.Command, args []string) error {
	gameID := args[0]
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown variant %q, run 'flappy list' to see them", gameID)
	}
	if _, _, err := loadConfigs(); err != nil {
		return err
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	_, err = tui.Run(game, store, runtimeConfig(), logger)
	return err
}
