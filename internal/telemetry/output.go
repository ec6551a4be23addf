// Package telemetry writes training output to a directory: one CSV row per
// generation, the configs the run used and its champion genome.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/evolve"
	"gopkg.in/yaml.v3"
)

// File names inside the output directory.
const (
	GenerationsFile = "generations.csv"
	ChampionFile    = "champion.yaml"
	WorldFile       = "flappy.yaml"
	EvolutionFile   = "evolution.yaml"
)

// OutputManager handles structured training output.
// A nil *OutputManager is valid and writes nothing.
type OutputManager struct {
	dir             string
	generationsFile *os.File
	headerWritten   bool
}

// NewOutputManager creates the output directory and generations.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, GenerationsFile))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating %s: %w", GenerationsFile, err)
	}
	return &OutputManager{dir: dir, generationsFile: f}, nil
}

// WriteGeneration appends a generation row, writing the header first.
func (om *OutputManager) WriteGeneration(stats evolve.GenerationStats) error {
	if om == nil {
		return nil
	}

	records := []evolve.GenerationStats{stats}
	if !om.headerWritten {
		if err := gocsv.Marshal(records, om.generationsFile); err != nil {
			return fmt.Errorf("telemetry: writing generation: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.generationsFile); err != nil {
		return fmt.Errorf("telemetry: writing generation: %w", err)
	}
	return nil
}

// WriteConfig saves the world and evolution settings of the run as YAML.
func (om *OutputManager) WriteConfig(world config.FlappyConfig, evo config.EvolutionConfig) error {
	if om == nil {
		return nil
	}
	if err := writeYAML(filepath.Join(om.dir, WorldFile), world); err != nil {
		return err
	}
	return writeYAML(filepath.Join(om.dir, EvolutionFile), evo)
}

// WriteChampion saves the champion genome.
func (om *OutputManager) WriteChampion(rec evolve.GenomeRecord) error {
	if om == nil {
		return nil
	}
	return evolve.SaveGenome(filepath.Join(om.dir, ChampionFile), rec)
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("telemetry: marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("telemetry: writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadGenerations loads a generations.csv written by WriteGeneration.
func ReadGenerations(path string) ([]evolve.GenerationStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []evolve.GenerationStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("telemetry: reading %s: %w", path, err)
	}
	return rows, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil || om.generationsFile == nil {
		return nil
	}
	return om.generationsFile.Close()
}
