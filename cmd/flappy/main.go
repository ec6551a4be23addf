// flappy is a terminal Flappy Bird with a neuro-evolution trainer.
//
// Usage:
//
//	flappy list                 - List the variants
//	flappy play <variant>       - Play a variant
//	flappy menu                 - Pick variants interactively
//	flappy train                - Evolve a population headless or with --tui
//	flappy watch <genome.yaml>  - Fly a saved genome
//	flappy runs [run]           - Show training runs
//	flappy scores <variant>     - Show high scores
//	flappy serve                - Start the SSH server
//
// Global flags:
//
//	--fps <rate>           - Tick rate (default: 30)
//	--seed <value>         - RNG seed for reproducible episodes and runs
//	--db <path>            - Database path (default: ~/.flappy/flappy.db)
//	--config <path>        - World config YAML
//	--evo-config <path>    - Evolution config YAML
//	--log-level <level>    - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappy"
	"github.com/vovakirdan/flappy-evolve/internal/games/flappyai"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

var (
	flagFPS       int
	flagSeed      int64
	flagDBPath    string
	flagConfig    string
	flagEvoConfig string
	flagLogLevel  string
)

// logger is built from --log-level before any command runs.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "flappy",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappy",
	Short: "Flappy Bird in the terminal, with birds that learn to fly",
	Long: `flappy runs a Flappy Bird simulation in your terminal.

Play it yourself, or let a NEAT population evolve birds that fly on their own.

Examples:
  flappy play flappy
  flappy play flappy_skeleton
  flappy train --generations 50 --out ./run1 --save champion.yaml
  flappy train --tui
  flappy watch champion.yaml
  flappy serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", core.DefaultConfig().TickRate, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", storage.DefaultPath, "Path to the database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a world config YAML")
	rootCmd.PersistentFlags().StringVar(&flagEvoConfig, "evo-config", "", "Path to an evolution config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup applies the global flags shared by every command.
func setup(_ *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger.SetLevel(level)

	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}

	flappy.SetConfigPath(flagConfig)
	flappyai.SetConfigPath(flagEvoConfig)
	return nil
}

// loadConfigs reads and validates both configs. Commands call it before
// starting anything so a bad file aborts early.
func loadConfigs() (config.FlappyConfig, config.EvolutionConfig, error) {
	world, err := config.LoadFlappy(flagConfig)
	if err != nil {
		return world, config.EvolutionConfig{}, err
	}
	evo, err := config.LoadEvolution(flagEvoConfig)
	if err != nil {
		return world, evo, err
	}
	return world, evo, nil
}

// runtimeConfig builds the runtime settings from the terminal size and flags.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW, cfg.ScreenH = w, h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// openStore opens the database. Interactive commands run without it when
// it cannot be opened.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, scores will not be saved", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}
