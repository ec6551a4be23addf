package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evolve/internal/registry"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the playable variants",
	Long: `List the variants with their best score and the number of rounds
played, when a database is available.`,
	Args: cobra.NoArgs,
	Run:  runList,
}

func runList(_ *cobra.Command, _ []string) {
	var stats map[string]*storage.GameStats
	if store, err := storage.Open(flagDBPath); err == nil {
		stats, err = store.GetAllGamesStats()
		if err != nil {
			logger.Debug("no score summary", "error", err)
		}
		store.Close()
	}
	printVariants(os.Stdout, registry.List(), stats)
}

// printVariants writes the variant table. stats may be nil.
func printVariants(w io.Writer, games []registry.GameInfo, stats map[string]*storage.GameStats) {
	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	fmt.Fprintln(w, "Available variants:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-*s  %-6s  %-6s  %s\n", maxIDLen, "ID", "Best", "Played", "Description")
	fmt.Fprintf(w, "  %-*s  %-6s  %-6s  %s\n", maxIDLen, "--", "----", "------", "-----------")
	for _, g := range games {
		best, played := "-", "-"
		if gs, ok := stats[g.ID]; ok && g.Scored {
			best = fmt.Sprintf("%d", gs.HighScore)
			played = fmt.Sprintf("%d", gs.GamesCount)
		}
		desc := g.Description
		if !g.Scored {
			desc += " (unscored)"
		}
		fmt.Fprintf(w, "  %-*s  %-6s  %-6s  %s\n", maxIDLen, g.ID, best, played, desc)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'flappy play <id>' to start one.")
}
