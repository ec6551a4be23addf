package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evolve/internal/platform/tui"
	"github.com/vovakirdan/flappy-evolve/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick variants from an interactive menu",
	Long: `Start in menu mode. After a game you return to the menu.

Controls:
  Up/Down/j/k  - Navigate
  Enter/Space  - Select
  Tab          - High scores
  T            - Training runs
  Q            - Quit`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	if _, _, err := loadConfigs(); err != nil {
		return err
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	cfg := runtimeConfig()
	for {
		res, err := tui.RunMenu(cfg)
		if err != nil {
			return err
		}
		cfg = res.Config

		var back bool
		switch {
		case res.Quit:
			return nil
		case res.WantsScoreboard:
			back, err = tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
		case res.WantsRuns:
			back, err = tui.RunRuns(store, cfg.ScreenW, cfg.ScreenH)
		default:
			game, createErr := registry.Create(res.GameID)
			if createErr != nil {
				return createErr
			}
			run := cfg
			if flagSeed == 0 {
				run.Seed = time.Now().UnixNano()
			}
			back, err = tui.Run(game, store, run, logger)
		}
		if err != nil {
			return err
		}
		if !back {
			return nil
		}
	}
}
