package telemetry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

func quickEvolution() config.EvolutionConfig {
	evo := config.DefaultEvolutionConfig()
	evo.PopulationSize = 6
	evo.Generations = 3
	evo.MaxTicks = 60
	return evo
}

func TestRecorderPersistsRun(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "flappy.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	dir := filepath.Join(t.TempDir(), "out")
	out, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	world, evo := config.DefaultFlappyConfig(), quickEvolution()
	rec := NewRecorder(store, out, nil)
	if err := rec.Start(11, world, evo); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if rec.RunID() == 0 {
		t.Fatal("Start() should create a run row")
	}

	tr, err := evolve.NewTrainer(world, evo, 11, evolve.WithListener(rec))
	if err != nil {
		t.Fatal(err)
	}
	history, err := tr.Run(context.Background(), evo.Generations)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := rec.Finish(storage.RunCompleted, tr.Champion()); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	run, err := store.GetRun(rec.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != storage.RunCompleted || run.GenerationsDone != len(history) || run.Seed != 11 {
		t.Errorf("run = %+v", run)
	}
	if run.PopulationSize != 6 || run.Config == "" {
		t.Errorf("run should keep its population size and config, got %d / %q", run.PopulationSize, run.Config)
	}

	gens, err := store.Generations(rec.RunID())
	if err != nil || len(gens) != len(history) {
		t.Fatalf("stored %d generations (err %v), expected %d", len(gens), err, len(history))
	}

	champ, err := store.BestChampion(rec.RunID())
	if err != nil {
		t.Fatalf("BestChampion() error = %v", err)
	}
	parsed, err := evolve.ParseGenome(champ.Genome)
	if err != nil {
		t.Fatalf("stored champion does not parse: %v", err)
	}
	if parsed.Fitness != tr.Champion().Fitness {
		t.Errorf("stored fitness %v, expected %v", parsed.Fitness, tr.Champion().Fitness)
	}

	rows, err := ReadGenerations(filepath.Join(dir, GenerationsFile))
	if err != nil || len(rows) != len(history) {
		t.Fatalf("csv rows = %d (err %v), expected %d", len(rows), err, len(history))
	}
	if _, err := evolve.LoadGenome(filepath.Join(dir, ChampionFile)); err != nil {
		t.Errorf("champion file: %v", err)
	}
}

func TestRecorderWithoutSinks(t *testing.T) {
	rec := NewRecorder(nil, nil, nil)
	if err := rec.Start(1, config.DefaultFlappyConfig(), quickEvolution()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	rec.OnGeneration(evolve.GenerationStats{Generation: 1}, evolve.Champion{})
	if err := rec.Finish(storage.RunStopped, evolve.Champion{}); err != nil {
		t.Errorf("Finish() error = %v", err)
	}
	if rec.RunID() != 0 {
		t.Error("no database means no run id")
	}
}
