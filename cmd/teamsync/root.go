package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dimitrije/teamsync/internal/config"
	"github.com/dimitrije/teamsync/internal/database"
	"github.com/dimitrije/teamsync/internal/github"
	"github.com/dimitrije/teamsync/internal/models"
	"github.com/dimitrije/teamsync/internal/roster"
	"github.com/dimitrije/teamsync/internal/services"
)

const defaultRosterFile = "classroom_roster.csv"

var errSkippedRemovals = errors.New("some removals were rejected by GitHub and skipped")

type options struct {
	token   string
	org     string
	verbose bool
	clean   bool
	dryRun  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "teamsync [roster-file]",
		Short: "Synchronize GitHub organization teams with a classroom roster",
		Long: `teamsync creates one team per group of a GitHub Classroom roster, invites
the students of each group to its team and removes everyone else.

Only teams named "group <id>" are managed. Other teams are never touched.

The token and organization can be given as flags or through the
GITHUB_TOKEN and GITHUB_ORG variables, also read from a .env file.
When DATABASE_URL is set every run and its actions are recorded.

Examples:
  teamsync                              # sync with classroom_roster.csv
  teamsync roster.csv --dry-run         # show what would change
  teamsync --clean -o my-class          # remove students and group teams
  teamsync history                      # list recent runs`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.clean && len(args) > 0 {
				return errors.New("--clean does not take a roster file")
			}
			rosterFile := defaultRosterFile
			if len(args) == 1 {
				rosterFile = args[0]
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts, rosterFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.token, "token", "t", "", "GitHub token (overrides GITHUB_TOKEN)")
	cmd.PersistentFlags().StringVarP(&opts.org, "org", "o", "", "GitHub organization (overrides GITHUB_ORG)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every GitHub request")
	cmd.Flags().BoolVar(&opts.clean, "clean", false, "remove every student and group team from the organization")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report the changes without performing them")

	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

// loadConfig merges the environment with the command line flags.
func loadConfig(opts *options, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.token != "" {
		cfg.GitHub.Token = opts.token
	}
	if opts.org != "" {
		cfg.GitHub.Organization = opts.org
	}

	if err := setupLogging(cfg, opts.verbose, logOut); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config, verbose bool, w io.Writer) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(w, handlerOpts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func run(ctx context.Context, out io.Writer, opts *options, rosterFile string) error {
	cfg, err := loadConfig(opts, os.Stderr)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	org := cfg.GitHub.Organization

	var students []models.Student
	if !opts.clean {
		students, err = roster.LoadFile(rosterFile)
		if err != nil {
			return err
		}
	}

	var gateway services.Gateway = github.NewClient(ctx, cfg.GitHub)
	if opts.dryRun {
		fmt.Fprintln(out, "[DRY-RUN] No changes will be performed.")
		gateway = github.NewDryRun(gateway)
	}

	var observer services.Observer = services.NewConsoleObserver(out)
	var finish func(*services.Report, error)
	if cfg.JournalEnabled() {
		mode := models.RunModeSync
		if opts.clean {
			mode = models.RunModeClean
		}
		var closeJournal func()
		observer, finish, closeJournal, err = openJournal(ctx, cfg.DatabaseURL, org, mode, opts.dryRun, observer)
		if err != nil {
			return err
		}
		defer closeJournal()
	}

	svc := services.NewOrganizationService(org, gateway, observer)

	var report *services.Report
	if opts.clean {
		fmt.Fprintf(out, "\nRemoving students and group teams from the organization '%s'...\n", org)
		report, err = svc.CleanAll(ctx)
	} else {
		fmt.Fprintf(out, "\nProceeding to update the organization '%s' using the roster file '%s'...\n", org, rosterFile)
		report, err = svc.Reconcile(ctx, students)
	}
	if finish != nil {
		finish(report, err)
	}
	if err != nil {
		return err
	}

	printSummary(out, report, opts)
	if report.HasSkipped() {
		return fmt.Errorf("%w: %d", errSkippedRemovals, report.Skipped)
	}
	return nil
}

// openJournal starts a run in the journal and returns an observer recording
// into it, a function closing the run and one releasing the connection.
func openJournal(ctx context.Context, databaseURL, org, mode string, dryRun bool, next services.Observer) (services.Observer, func(*services.Report, error), func(), error) {
	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	journal := services.NewJournalService(db)
	started, err := journal.StartRun(ctx, org, mode, dryRun)
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	slog.Debug("journal run started", "run_id", started.ID)

	finish := func(report *services.Report, runErr error) {
		// An interrupted run is still closed.
		ctx := context.WithoutCancel(ctx)
		if err := journal.FinishRun(ctx, started.ID, services.RunStatus(report, runErr), runErr); err != nil {
			slog.Warn("failed to finish journal run", "run_id", started.ID, "error", err)
		}
	}

	return services.NewJournalObserver(ctx, next, journal, started.ID), finish, db.Close, nil
}

func printSummary(out io.Writer, report *services.Report, opts *options) {
	fmt.Fprintf(out, "\nDone: %d team(s) created, %d team(s) deleted, %d student(s) invited, %d removed, %d skipped.\n",
		report.TeamsCreated, report.TeamsDeleted, report.Invited, report.Removed, report.Skipped)

	if !opts.clean && !opts.dryRun && report.Invited > 0 {
		fmt.Fprintln(out, `
REMEMBER. Students have been invited to join their groups, but they are not members yet!
Each student must accept the invitation sent to their email before they appear in the groups.`)
	}
}
