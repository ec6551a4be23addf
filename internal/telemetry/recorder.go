package telemetry

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

// Recorder persists a training run: the run row and one generation row per
// generation in the database, plus the CSV and YAML output files.
// Either sink may be nil. Write failures are logged and never stop training.
type Recorder struct {
	store  *storage.Store
	out    *OutputManager
	logger *log.Logger
	runID  int64
}

// NewRecorder creates a recorder over the given sinks.
func NewRecorder(store *storage.Store, out *OutputManager, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Recorder{store: store, out: out, logger: logger}
}

// Start records the beginning of a run.
func (r *Recorder) Start(seed int64, world config.FlappyConfig, evo config.EvolutionConfig) error {
	if err := r.out.WriteConfig(world, evo); err != nil {
		return err
	}
	if r.store == nil {
		return nil
	}

	data, err := yaml.Marshal(evo)
	if err != nil {
		return fmt.Errorf("telemetry: marshaling evolution config: %w", err)
	}
	id, err := r.store.StartRun(seed, evo.PopulationSize, evo.Generations, string(data))
	if err != nil {
		return err
	}
	r.runID = id
	r.logger.Debug("run started", "run", id, "seed", seed)
	return nil
}

// OnGeneration implements evolve.Listener.
func (r *Recorder) OnGeneration(stats evolve.GenerationStats, _ evolve.Champion) {
	if err := r.out.WriteGeneration(stats); err != nil {
		r.logger.Warn("could not write generation", "generation", stats.Generation, "error", err)
	}
	if r.store != nil && r.runID != 0 {
		if err := r.store.SaveGeneration(r.runID, stats); err != nil {
			r.logger.Warn("could not store generation", "generation", stats.Generation, "error", err)
		}
	}
}

// Finish closes the run with status and stores the champion, if any.
func (r *Recorder) Finish(status string, champion evolve.Champion) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if champion.Genome != nil {
		rec, err := champion.Record()
		keep(err)
		if err == nil {
			keep(r.out.WriteChampion(rec))
			keep(r.storeChampion(rec))
		}
	}
	if r.store != nil && r.runID != 0 {
		keep(r.store.FinishRun(r.runID, status))
	}
	keep(r.out.Close())
	return firstErr
}

func (r *Recorder) storeChampion(rec evolve.GenomeRecord) error {
	if r.store == nil || r.runID == 0 {
		return nil
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("telemetry: marshaling champion: %w", err)
	}
	id, err := r.store.SaveChampion(storage.Champion{
		RunID:      r.runID,
		Generation: rec.Generation,
		Fitness:    rec.Fitness,
		Score:      rec.Score,
		Genome:     data,
	})
	if err != nil {
		return err
	}
	r.logger.Debug("champion stored", "run", r.runID, "champion", id)
	return nil
}

// RunID returns the database id of the run, 0 without a database.
func (r *Recorder) RunID() int64 {
	return r.runID
}
