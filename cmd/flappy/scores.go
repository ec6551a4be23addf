package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-evolve/internal/registry"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresClear bool
	flagScoresAll   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <variant>",
	Short: "Show high scores for a variant",
	Long: `Display the top high scores for the given variant.

Examples:
  flappy scores flappy
  flappy scores flappy --limit 25
  flappy scores flappy --all
  flappy scores flappy_skeleton --clear`,
	Args: cobra.ExactArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all scores of the variant")
	scoresCmd.Flags().BoolVar(&flagScoresAll, "all", false, "Show every recorded score, ignoring --limit")
}

func runScores(_ *cobra.Command, args []string) error {
	gameID := args[0]
	info, ok := registry.Info(gameID)
	if !ok {
		return fmt.Errorf("unknown variant %q, run 'flappy list' to see them", gameID)
	}
	if !info.Scored {
		return fmt.Errorf("%s does not keep scores, see 'flappy runs'", gameID)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearScores(gameID); err != nil {
			return err
		}
		fmt.Printf("Cleared scores for %s.\n", info.Title)
		return nil
	}

	var scores []storage.ScoreEntry
	if flagScoresAll {
		scores, err = store.AllScores(gameID)
	} else {
		scores, err = store.TopScores(gameID, flagScoresLimit)
	}
	if err != nil {
		return err
	}

	var stats *storage.GameStats
	if gs, err := store.GetGameStats(gameID); err == nil {
		stats = gs
	}
	printScores(os.Stdout, info, scores, stats)
	return nil
}

// printScores writes a ranked score list. stats may be nil.
func printScores(w io.Writer, info registry.GameInfo, scores []storage.ScoreEntry, stats *storage.GameStats) {
	fmt.Fprintf(w, "High Scores - %s\n\n", info.Title)
	if len(scores) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Play 'flappy play %s' to set the first high score!\n", info.ID)
		return
	}

	fmt.Fprintf(w, "  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Fprintf(w, "  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Fprintf(w, "  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Best: %d   Games: %d   Average: %.1f\n", stats.HighScore, stats.GamesCount, stats.AvgScore)
	}
}
