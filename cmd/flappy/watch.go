package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappyai"
	"github.com/vovakirdan/flappy-evolve/internal/platform/tui"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

var flagWatchRun int64

var watchCmd = &cobra.Command{
	Use:   "watch [genome.yaml]",
	Short: "Fly a saved genome",
	Long: `Replay a champion genome in a fresh world. The bird flies until it
crashes; R starts another flight with a new pipe layout.

The genome comes from a YAML file written by 'flappy train --save' or from
the best champion of a stored run.

Examples:
  flappy watch champion.yaml
  flappy watch --run 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Int64Var(&flagWatchRun, "run", 0, "Replay the best champion of this stored run")
}

func runWatch(_ *cobra.Command, args []string) error {
	world, evo, err := loadConfigs()
	if err != nil {
		return err
	}

	var rec evolve.GenomeRecord
	switch {
	case len(args) == 1:
		rec, err = evolve.LoadGenome(args[0])
	case flagWatchRun > 0:
		rec, err = storedChampion(flagWatchRun)
	default:
		return errors.New("give a genome file or --run <id>")
	}
	if err != nil {
		return err
	}

	replay, err := flappyai.NewReplay(rec, world, evo.Network)
	if err != nil {
		return err
	}
	logger.Debug("replaying genome", "id", rec.ID, "generation", rec.Generation, "fitness", rec.Fitness)

	_, err = tui.Run(replay, nil, runtimeConfig(), logger)
	return err
}

func storedChampion(runID int64) (evolve.GenomeRecord, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return evolve.GenomeRecord{}, err
	}
	defer store.Close()

	c, err := store.BestChampion(runID)
	if errors.Is(err, storage.ErrNotFound) {
		return evolve.GenomeRecord{}, fmt.Errorf("run %d has no stored champion", runID)
	}
	if err != nil {
		return evolve.GenomeRecord{}, err
	}
	return evolve.ParseGenome(c.Genome)
}
