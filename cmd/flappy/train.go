package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappyai"
	"github.com/vovakirdan/flappy-evolve/internal/platform/tui"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
	"github.com/vovakirdan/flappy-evolve/internal/telemetry"
)

var (
	flagGenerations int
	flagPopulation  int
	flagTrainTUI    bool
	flagOutDir      string
	flagSavePath    string
	flagResume      string
	flagNoDB        bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Evolve a population of birds",
	Long: `Evolve birds with NEAT. Each generation flies one episode, a bird per
genome, and the fittest genomes breed the next generation.

Headless runs log one line per generation. With --tui the live episode is
drawn with a progress bar and the latest generations.

Every run is stored in the database; see 'flappy runs'.

Examples:
  flappy train --generations 100
  flappy train --out ./run1 --save champion.yaml
  flappy train --tui --population 80
  flappy train --resume champion.yaml --generations 20`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generations to run (0 = from the evolution config)")
	trainCmd.Flags().IntVar(&flagPopulation, "population", 0, "Population size (0 = from the evolution config)")
	trainCmd.Flags().BoolVar(&flagTrainTUI, "tui", false, "Show the live training dashboard")
	trainCmd.Flags().StringVar(&flagOutDir, "out", "", "Directory for generations.csv, configs and champion.yaml")
	trainCmd.Flags().StringVar(&flagSavePath, "save", "", "Write the champion genome to this YAML file")
	trainCmd.Flags().StringVar(&flagResume, "resume", "", "Start from mutated copies of a saved genome")
	trainCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Do not record the run in the database")
}

func runTrain(_ *cobra.Command, _ []string) error {
	world, evo, err := loadConfigs()
	if err != nil {
		return err
	}
	if flagGenerations > 0 {
		evo.Generations = flagGenerations
	}
	if flagPopulation > 0 {
		evo.PopulationSize = flagPopulation
	}
	if err := evo.Validate(); err != nil {
		return err
	}
	if !flagTrainTUI && evo.Generations == 0 {
		return errors.New("headless training needs a generation count, set --generations")
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := []evolve.TrainerOption{evolve.WithLogger(logger)}
	if flagResume != "" {
		rec, err := evolve.LoadGenome(flagResume)
		if err != nil {
			return err
		}
		g, err := rec.Genome()
		if err != nil {
			return err
		}
		opts = append(opts, evolve.WithSeedGenome(g))
		logger.Info("resuming from genome", "path", flagResume, "fitness", rec.Fitness)
	}

	var store *storage.Store
	if !flagNoDB {
		store = openStore()
		if store != nil {
			defer store.Close()
		}
	}
	out, err := telemetry.NewOutputManager(flagOutDir)
	if err != nil {
		return err
	}

	rec := telemetry.NewRecorder(store, out, logger)
	if err := rec.Start(seed, world, evo); err != nil {
		logger.Warn("could not record run start", "error", err)
	}
	opts = append(opts, evolve.WithListener(rec))

	logger.Info("training",
		"seed", seed,
		"population", evo.PopulationSize,
		"generations", evo.Generations,
		"run", rec.RunID(),
	)

	var (
		champion evolve.Champion
		status   string
	)
	if flagTrainTUI {
		champion, status, err = trainWithDashboard(world, evo, seed, opts)
	} else {
		champion, status, err = trainHeadless(world, evo, seed, opts)
	}

	if finishErr := rec.Finish(status, champion); finishErr != nil {
		logger.Warn("could not record run end", "error", finishErr)
	}
	if champion.Genome != nil && flagSavePath != "" {
		cr, recErr := champion.Record()
		if recErr == nil {
			recErr = evolve.SaveGenome(flagSavePath, cr)
		}
		if recErr != nil {
			return recErr
		}
		logger.Info("champion saved", "path", flagSavePath, "fitness", champion.Fitness)
	}
	if err != nil {
		return err
	}

	logger.Info("training finished",
		"status", status,
		"best", champion.Fitness,
		"score", champion.Score,
		"generation", champion.Generation,
	)
	return nil
}

// trainHeadless runs the generations without a terminal UI. SIGINT stops
// the run between generations and keeps what was learned so far.
func trainHeadless(world config.FlappyConfig, evo config.EvolutionConfig, seed int64, opts []evolve.TrainerOption) (evolve.Champion, string, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr, err := evolve.NewTrainer(world, evo, seed, opts...)
	if err != nil {
		return evolve.Champion{}, storage.RunFailed, err
	}

	_, err = tr.Run(ctx, evo.Generations)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("training interrupted")
		return tr.Champion(), storage.RunStopped, nil
	case err != nil:
		return tr.Champion(), storage.RunFailed, err
	}
	return tr.Champion(), storage.RunCompleted, nil
}

// trainWithDashboard runs the generations inside the Bubble Tea dashboard.
// Quitting before the last generation leaves the run stopped.
func trainWithDashboard(world config.FlappyConfig, evo config.EvolutionConfig, seed int64, opts []evolve.TrainerOption) (evolve.Champion, string, error) {
	// The dashboard owns the terminal, so log lines would garble it.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	game := flappyai.NewConfigured(world, evo, opts...)
	rt := runtimeConfig()
	rt.Seed = seed

	if err := tui.RunTraining(game, rt); err != nil {
		return championOf(game), storage.RunFailed, err
	}

	switch {
	case game.Done() && game.Err() != nil:
		return championOf(game), storage.RunFailed, fmt.Errorf("training stopped: %w", game.Err())
	case game.Done():
		return championOf(game), storage.RunCompleted, nil
	}
	return championOf(game), storage.RunStopped, nil
}

func championOf(game *flappyai.Game) evolve.Champion {
	if game.Trainer() == nil {
		return evolve.Champion{}
	}
	return game.Trainer().Champion()
}
