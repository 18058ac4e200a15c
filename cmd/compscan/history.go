package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/compscan/compscan/internal/config"
	"github.com/compscan/compscan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [competitor]",
		Short: "Show stored run history",
		Long: `History lists past monitoring runs from the local run database.

Without arguments it lists all stored runs with their summary counts.
With a competitor name it shows that competitor's outcome in each run.

Examples:
  # List all stored runs
  compscan history

  # Show one competitor's history
  compscan history "Acme Robotics"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the run database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no run history found (run 'compscan run' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if len(args) == 1 {
		return printEntityHistory(ctx, cmd, db, args[0])
	}
	return printRuns(ctx, cmd, db)
}

// printRuns lists all stored runs.
func printRuns(ctx context.Context, cmd *cobra.Command, db *database.RunDB) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs stored yet.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-12s %-17s %-14s %-16s %s\n",
		"Date", "Competitors", "Strategic shifts", "Minor updates", "Newly monitored", "Errors")
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-12d %-17d %-14d %-16d %d\n",
			r.RunDate.Format("2006-01-02"),
			r.Summary.Entities,
			r.Summary.StrategicShifts,
			r.Summary.MinorUpdates,
			r.Summary.NewlyMonitored,
			r.Summary.Errors,
		)
	}
	return nil
}

// printEntityHistory shows one competitor's outcome per run.
func printEntityHistory(ctx context.Context, cmd *cobra.Command, db *database.RunDB, entity string) error {
	history, err := db.History(ctx, entity)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No history for %q.\n", entity)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-18s %-8s %s\n", "Date", "Classification", "Score", "Detail")
	for _, h := range history {
		if h.Failed() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-18s %-8s %s: %s\n",
				h.RunDate.Format("2006-01-02"), "error", "-", h.ErrorStage, h.ErrorMessage)
			continue
		}
		score := "-"
		if h.Score.Valid {
			score = strconv.FormatFloat(h.Score.Float64, 'f', 4, 64)
		}
		detail := ""
		if h.BaselineDate != "" {
			detail = "baseline " + h.BaselineDate
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-18s %-8s %s\n",
			h.RunDate.Format("2006-01-02"), h.Classification, score, detail)
	}
	return nil
}
