// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/attachments"
	"github.com/similigh/fb2gh/internal/core/config"
	"github.com/similigh/fb2gh/internal/core/state"
	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/logger"
	"github.com/similigh/fb2gh/internal/migrate"
	"github.com/similigh/fb2gh/internal/tui"
)

// tuiLogFile receives log output while the interactive view owns the terminal.
const tuiLogFile = "fb2gh.log"

type migrateFlags struct {
	query           string
	dryRun          bool
	continueOnError bool
	resume          bool
	format          string
	outFile         string
	workflow        string
}

var migrateOpts migrateFlags

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate matching FogBugz cases to GitHub issues",
	Long: `Migrate FogBugz cases into the configured GitHub repository.

Cases are fetched with the FogBugz search query (--query or fogbugz.query)
and migrated in order. A failed case stops the run unless
--continue-on-error is set. Interrupting the run (Ctrl+C) finishes the
current case and then stops.

Use --dry-run to render everything against an in-memory repository
without writing to GitHub, and --resume with migration.ledger to skip
cases migrated by an earlier run.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVar(&migrateOpts.query, "query", "", "FogBugz search query (overrides fogbugz.query)")
	migrateCmd.Flags().BoolVar(&migrateOpts.dryRun, "dry-run", false, "Run against an in-memory repository (no GitHub writes)")
	migrateCmd.Flags().BoolVar(&migrateOpts.continueOnError, "continue-on-error", false, "Record failed cases and keep going")
	migrateCmd.Flags().BoolVar(&migrateOpts.resume, "resume", false, "Skip cases already recorded in the ledger")
	migrateCmd.Flags().StringVar(&migrateOpts.format, "format", "", "Report format: json or csv")
	migrateCmd.Flags().StringVar(&migrateOpts.outFile, "out-file", "", "Report file path (stdout if not specified)")
	migrateCmd.Flags().StringVar(&migrateOpts.workflow, "workflow", "", "Workflow preset to run (overrides migration.workflow)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interactive := !verbose && !isCI() && isatty.IsTerminal(os.Stdout.Fd())
	if interactive {
		if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding, tuiLogFile); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	l := log()

	var report *migrate.Report
	var runErr error
	var mig *migration
	var err error

	if interactive {
		events := make(chan migrate.Event, 64)
		fmt.Fprintln(out, "Fetching FogBugz cases...")
		mig, err = prepareMigration(ctx, cfg, migrateOpts, l, func(ev migrate.Event) { events <- ev })
		if err != nil {
			return err
		}
		report, runErr = runInteractive(ctx, mig, events)
	} else {
		mig, err = prepareMigration(ctx, cfg, migrateOpts, l, logEvent(l))
		if err != nil {
			return err
		}
		report, runErr = mig.run(ctx)
	}

	printSummary(out, mig, report)

	if migrateOpts.outFile != "" || cmd.Flags().Changed("format") {
		if err := writeReport(out, report, migrateOpts.format, migrateOpts.outFile); err != nil {
			return err
		}
	}
	return runErr
}

// runInteractive runs the migration behind the progress view. Quitting the
// view cancels the run, which stops after the current case.
func runInteractive(ctx context.Context, mig *migration, events chan migrate.Event) (*migrate.Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var report *migrate.Report
	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		report, runErr = mig.run(runCtx)
	}()

	model := tui.NewModel(fmt.Sprintf("FogBugz → %s", mig.target), len(mig.cases), events, cancel)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		cancel()
		go func() {
			for range events {
			}
		}()
		<-done
		return report, fmt.Errorf("error running TUI: %w", err)
	}
	<-done
	return report, runErr
}

// migration is a prepared run: the cases and the engine that migrates them.
type migration struct {
	engine  *migrate.Engine
	cases   []fogbugz.Case
	target  string
	dryRepo *target.MemoryRepo
}

func (m *migration) run(ctx context.Context) (*migrate.Report, error) {
	return m.engine.Run(ctx, fogbugz.Each(m.cases))
}

// prepareMigration fetches the cases and wires the engine: target
// repository, attachment converter, ledger hooks and policies.
func prepareMigration(ctx context.Context, c *config.Config, f migrateFlags, l *zap.Logger, onEvent func(migrate.Event)) (*migration, error) {
	fb, err := newFogBugzClient(ctx, c, l)
	if err != nil {
		return nil, err
	}

	query := f.query
	if query == "" {
		query = c.FogBugz.Query
	}
	cases, err := fb.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search FogBugz: %w", err)
	}

	opts, err := buildOptions(c, f.workflow)
	if err != nil {
		return nil, err
	}
	if f.continueOnError {
		opts.OnError = migrate.ContinueOnError
	}
	opts.OnEvent = onEvent
	opts.Logger = l

	m := &migration{cases: cases}

	var repo target.Repo
	if f.dryRun {
		m.dryRepo = target.NewMemoryRepo()
		m.target = "dry run"
		repo = m.dryRepo
		opts.PostDelay = 0
		opts.Converter = attachments.PassThrough{}
	} else {
		if err := c.RequireTarget(); err != nil {
			return nil, err
		}
		gh, err := newGitHubClient(ctx, c, l)
		if err != nil {
			return nil, err
		}
		ghRepo := gh.Repo(c.GitHub.Owner, c.GitHub.Repo).WithNoMilestoneTitle(c.GitHub.NoMilestoneTitle)
		m.target = ghRepo.String()
		repo = ghRepo

		conv, err := newConverter(ctx, c, l)
		if err != nil {
			return nil, err
		}
		opts.Converter = conv
	}

	if err := wireLedger(ctx, c, f, &opts); err != nil {
		return nil, err
	}

	engine, err := migrate.New(fb, repo, opts)
	if err != nil {
		return nil, err
	}
	m.engine = engine

	l.Info("Prepared migration",
		zap.String("target", m.target),
		zap.Int("cases", len(cases)),
		zap.Strings("steps", engine.Steps()))
	return m, nil
}

// wireLedger records migrated cases in the ledger and, with --resume,
// skips the ones already recorded. Dry runs read the ledger but never
// write it.
func wireLedger(ctx context.Context, c *config.Config, f migrateFlags, opts *migrate.Options) error {
	if c.Migration.Ledger == "" {
		if f.resume {
			return errors.New("--resume requires migration.ledger to be set")
		}
		return nil
	}

	ledger, err := state.Open(c.Migration.Ledger, c.GitHub.Token, c.GitHub.Owner, c.GitHub.Repo)
	if err != nil {
		return err
	}

	if f.resume {
		notMigrated, err := state.NotMigrated(ctx, ledger)
		if err != nil {
			return err
		}
		opts.MigrateIf = migrate.AllOf(opts.MigrateIf, notMigrated)
	}
	if !f.dryRun {
		opts.AfterMigrate = state.Recorder(context.WithoutCancel(ctx), ledger, c.GitHub.Owner+"/"+c.GitHub.Repo)
	}
	return nil
}

// logEvent returns an event sink writing progress to l.
func logEvent(l *zap.Logger) func(migrate.Event) {
	return func(ev migrate.Event) {
		switch ev.Kind {
		case migrate.EventRunStarted:
			l.Info("Migration started", zap.String("run", ev.RunID))
		case migrate.EventCaseMigrated:
			l.Info("Migrated case",
				zap.Int("case", ev.Record.CaseID),
				zap.Int("issue", ev.Record.IssueNumber),
				zap.String("url", ev.Record.IssueURL))
		case migrate.EventCaseSkipped:
			l.Debug("Skipped case", zap.Int("case", ev.Record.CaseID), zap.String("reason", ev.Record.SkipReason))
		case migrate.EventCaseFailed:
			l.Error("Case failed", zap.Int("case", ev.Record.CaseID), zap.Error(ev.Err))
		case migrate.EventRunInterrupted:
			l.Warn("Migration interrupted, stopping after the current case")
		case migrate.EventRunFinished:
			fields := []zap.Field{
				zap.String("run", ev.RunID),
				zap.Stringer("state", ev.Report.State),
				zap.Int("migrated", ev.Report.Migrated),
				zap.Int("skipped", ev.Report.Skipped),
				zap.Int("failed", ev.Report.Failed),
			}
			if ev.Err != nil {
				fields = append(fields, zap.Error(ev.Err))
			}
			l.Info("Migration finished", fields...)
		}
	}
}

func printSummary(w io.Writer, m *migration, r *migrate.Report) {
	if r == nil {
		return
	}
	status := "✓"
	if r.Failed > 0 || r.State == migrate.StateAborted {
		status = "✗"
	}
	fmt.Fprintf(w, "\n%s Migration %s in %s: %d migrated, %d skipped, %d failed (%d labels, %d milestones created)\n",
		status, r.State, formatDuration(r.Duration()), r.Migrated, r.Skipped, r.Failed, r.LabelsCreated, r.MilestonesCreated)
	if r.Interrupted {
		fmt.Fprintln(w, "  Interrupted: remaining cases were not migrated")
	}

	if m.dryRepo != nil {
		fmt.Fprintf(w, "  Dry run: %d issues, %d labels, %d milestones would exist in the target\n",
			len(m.dryRepo.Issues()), len(m.dryRepo.Labels()), len(m.dryRepo.Milestones()))
	}
}

func isCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}
