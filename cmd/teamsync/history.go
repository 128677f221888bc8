package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dimitrije/teamsync/internal/database"
	"github.com/dimitrije/teamsync/internal/models"
	"github.com/dimitrije/teamsync/internal/services"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int
	var showActions bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs recorded in the journal",
		Long: `List the most recent runs against the organization, newest first.
Requires DATABASE_URL.

Examples:
  teamsync history
  teamsync history -o my-class --limit 5 --actions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, os.Stderr)
			if err != nil {
				return err
			}
			if !cfg.JournalEnabled() {
				return errors.New("DATABASE_URL is required to read the run history")
			}
			if cfg.GitHub.Organization == "" {
				return errors.New("missing required settings: GITHUB_ORG should be provided either via command line or in a '.env' file")
			}

			ctx := cmd.Context()
			db, err := database.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(ctx); err != nil {
				return err
			}

			journal := services.NewJournalService(db)
			runs, err := journal.RecentRuns(ctx, cfg.GitHub.Organization, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if err := printRuns(out, runs); err != nil {
				return err
			}
			if !showActions {
				return nil
			}
			for _, run := range runs {
				actions, err := journal.GetActions(ctx, run.ID)
				if err != nil {
					return fmt.Errorf("failed to list actions of run %s: %w", run.ID, err)
				}
				printActions(out, run, actions)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	cmd.Flags().BoolVar(&showActions, "actions", false, "also show the actions of each run")

	return cmd
}

func printRuns(out io.Writer, runs []models.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tMODE\tDRY-RUN\tSTATUS\tDURATION")
	for _, run := range runs {
		duration := "-"
		if run.IsFinished() {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\n",
			run.ID, run.StartedAt.Local().Format(time.DateTime), run.Mode, run.DryRun, run.Status, duration)
	}
	return w.Flush()
}

func printActions(out io.Writer, run models.Run, actions []models.RunAction) {
	fmt.Fprintf(out, "\nRun %s (%s):\n", run.ID, run.Status)
	if run.Error != nil {
		fmt.Fprintf(out, "  error: %s\n", *run.Error)
	}
	for _, action := range actions {
		fmt.Fprintf(out, "  %s\n", action.Message)
	}
}
