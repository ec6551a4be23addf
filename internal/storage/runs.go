package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/flappy-evolve/internal/evolve"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunStopped   = "stopped"
	RunFailed    = "failed"
)

// Run is one training session.
type Run struct {
	ID                 int64
	Seed               int64
	PopulationSize     int
	GenerationsPlanned int
	GenerationsDone    int
	Status             string
	BestFitness        float64
	BestScore          int
	Config             string // evolution config as YAML
	StartedAt          time.Time
	FinishedAt         time.Time
}

// Champion is a stored genome.
type Champion struct {
	ID         int64
	RunID      int64
	Generation int
	Fitness    float64
	Score      int
	Genome     []byte // evolve.GenomeRecord as YAML
	CreatedAt  time.Time
}

// StartRun records a new training run and returns its ID.
func (s *Store) StartRun(seed int64, populationSize, generations int, config string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO training_runs (seed, population_size, generations_planned, config)
		 VALUES (?, ?, ?, ?)`,
		seed, populationSize, generations, config,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot start run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// SaveGeneration stores a generation summary and folds it into the run's
// running totals.
func (s *Store) SaveGeneration(runID int64, st evolve.GenerationStats) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO generations
		 (run_id, generation, best, mean, stddev, median, worst, score, ticks, species)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, st.Generation, st.Best, st.Mean, st.StdDev, st.Median, st.Worst,
		st.Score, st.Ticks, st.Species,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save generation %d: %w", st.Generation, err)
	}

	res, err := tx.Exec(
		`UPDATE training_runs
		 SET generations_done = MAX(generations_done, ?),
		     best_fitness = CASE WHEN generations_done = 0 OR ? > best_fitness THEN ? ELSE best_fitness END,
		     best_score = MAX(best_score, ?)
		 WHERE id = ?`,
		st.Generation, st.Best, st.Best, st.Score, runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update run %d: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: run %d: %w", runID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit generation: %w", err)
	}
	return nil
}

// FinishRun marks a run as done with the given status.
func (s *Store) FinishRun(runID int64, status string) error {
	res, err := s.db.Exec(
		`UPDATE training_runs SET status = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: run %d: %w", runID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, seed, population_size, generations_planned, generations_done,
	status, best_fitness, best_score, config, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var started, finished any
	err := row.Scan(&r.ID, &r.Seed, &r.PopulationSize, &r.GenerationsPlanned, &r.GenerationsDone,
		&r.Status, &r.BestFitness, &r.BestScore, &r.Config, &started, &finished)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(id int64) (Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM training_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("storage: run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot get run: %w", err)
	}
	return r, nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM training_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// Generations returns the summaries of a run in generation order.
func (s *Store) Generations(runID int64) ([]evolve.GenerationStats, error) {
	rows, err := s.db.Query(
		`SELECT generation, best, mean, stddev, median, worst, score, ticks, species
		 FROM generations WHERE run_id = ? ORDER BY generation`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var out []evolve.GenerationStats
	for rows.Next() {
		var st evolve.GenerationStats
		if err := rows.Scan(&st.Generation, &st.Best, &st.Mean, &st.StdDev, &st.Median, &st.Worst,
			&st.Score, &st.Ticks, &st.Species); err != nil {
			return nil, fmt.Errorf("storage: cannot scan generation: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// SaveChampion stores a champion genome for a run.
func (s *Store) SaveChampion(c Champion) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO champions (run_id, generation, fitness, score, genome) VALUES (?, ?, ?, ?, ?)`,
		c.RunID, c.Generation, c.Fitness, c.Score, string(c.Genome),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save champion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

func (s *Store) queryChampion(query string, args ...any) (Champion, error) {
	var c Champion
	var genome string
	var created any
	err := s.db.QueryRow(query, args...).Scan(&c.ID, &c.RunID, &c.Generation, &c.Fitness, &c.Score, &genome, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Champion{}, ErrNotFound
	}
	if err != nil {
		return Champion{}, fmt.Errorf("storage: cannot get champion: %w", err)
	}
	c.Genome = []byte(genome)
	c.CreatedAt = parseTime(created)
	return c, nil
}

// GetChampion returns a champion by ID.
func (s *Store) GetChampion(id int64) (Champion, error) {
	return s.queryChampion(
		`SELECT id, run_id, generation, fitness, score, genome, created_at
		 FROM champions WHERE id = ?`,
		id,
	)
}

// BestChampion returns the fittest champion of a run. Ties go to the
// earliest generation.
func (s *Store) BestChampion(runID int64) (Champion, error) {
	return s.queryChampion(
		`SELECT id, run_id, generation, fitness, score, genome, created_at
		 FROM champions WHERE run_id = ?
		 ORDER BY fitness DESC, generation ASC LIMIT 1`,
		runID,
	)
}
