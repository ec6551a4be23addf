package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flappy-evolve/internal/platform/tui"
	"github.com/vovakirdan/flappy-evolve/internal/storage"
)

var flagRunsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run]",
	Short: "Show training runs",
	Long: `Without arguments, browse the stored training runs. In a terminal this
opens the runs view; otherwise the list is printed.

With a run ID, print that run's generations and its best champion.

Examples:
  flappy runs
  flappy runs 3
  flappy runs --limit 5 | cat`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Runs to print when not in a terminal")
}

func runRuns(_ *cobra.Command, args []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		return printRun(store, id)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		cfg := runtimeConfig()
		_, err := tui.RunRuns(store, cfg.ScreenW, cfg.ScreenH)
		return err
	}
	return printRuns(store, flagRunsLimit)
}

func printRuns(store *storage.Store, limit int) error {
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No training runs yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTATUS\tGENS\tPOP\tBEST\tSCORE\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%d\t%.1f\t%d\t%s\n",
			r.ID, r.Status, r.GenerationsDone, r.GenerationsPlanned,
			r.PopulationSize, r.BestFitness, r.BestScore,
			r.StartedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func printRun(store *storage.Store, id int64) error {
	run, err := store.GetRun(id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return err
	}
	gens, err := store.Generations(id)
	if err != nil {
		return err
	}

	fmt.Printf("Run %d  seed %d  population %d  %s\n", run.ID, run.Seed, run.PopulationSize, run.Status)
	fmt.Printf("Started %s", run.StartedAt.Format("2006-01-02 15:04:05"))
	if !run.FinishedAt.IsZero() {
		fmt.Printf(", finished %s", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Println()
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "GEN\tBEST\tMEAN\tSTDDEV\tMEDIAN\tWORST\tSCORE\tSPECIES\t")
	for _, g := range gens {
		fmt.Fprintf(w, "%d\t%.1f\t%.1f\t%.2f\t%.1f\t%.1f\t%d\t%d\t\n",
			g.Generation, g.Best, g.Mean, g.StdDev, g.Median, g.Worst, g.Score, g.Species)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c, err := store.BestChampion(id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Println("\nNo champion stored.")
	case err != nil:
		return err
	default:
		fmt.Printf("\nChampion from generation %d: fitness %.1f, score %d\n", c.Generation, c.Fitness, c.Score)
		fmt.Printf("Replay it with: flappy watch --run %d\n", id)
	}
	return nil
}
