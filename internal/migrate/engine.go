// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

// Package migrate drives the migration of FogBugz cases into GitHub issues.
//
// An Engine walks the cases in order and runs each one through the step
// pipeline: inclusion check, label and milestone resolution, issue and
// comment creation, close, assignment and the post-migration hook. A failure
// is isolated to its case and handed to the configured error handler, which
// decides whether the run continues. Cancellation is honoured between cases
// only, so a case is never left half-migrated by an interrupt.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/attachments"
	"github.com/similigh/fb2gh/internal/core/cache"
	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/render"
	"github.com/similigh/fb2gh/internal/steps"
)

// DefaultPostDelay is the pause after each issue or comment write.
const DefaultPostDelay = 100 * time.Millisecond

// Options is the migration policy set. Nil functions select the defaults
// listed on each field.
type Options struct {
	// MigrateIf selects the cases to migrate. Default: MigrateAll.
	MigrateIf func(*fogbugz.Case) bool

	// Labeler computes the labels of a case. Default: CategoryLabel.
	Labeler func(*fogbugz.Case) []target.Label

	// CloseIf decides whether the issue is closed. Default: CloseIfClosed.
	CloseIf func(*fogbugz.Case) bool

	// UsernameMap maps FogBugz names to GitHub usernames. Unmapped
	// assignees leave the issue unassigned.
	UsernameMap map[string]string

	// PostDelay is the pause after each write call. Zero disables it.
	PostDelay time.Duration

	// Sleep performs each pause. Default: pipeline.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	// AfterMigrate runs after each migrated case. Default: no-op.
	AfterMigrate func(*fogbugz.Case, *target.Issue) error

	// OnError handles a failed case. Returning nil continues the run;
	// returning an error aborts it. Default: AbortOnError.
	OnError func(*CaseError) error

	// OnEvent receives progress events. Default: discard.
	OnEvent func(Event)

	// DateLayout and Location control timestamp rendering.
	// Defaults: render.DefaultLayout in UTC.
	DateLayout string
	Location   *time.Location

	// ImageExtensions are rendered inline. Default: png, gif, jpg.
	ImageExtensions []string

	// Converter resolves attachment URLs. Default: attachments.PassThrough.
	Converter attachments.Converter

	// Workflow names a step preset; Steps overrides it. Default: "full".
	Workflow string
	Steps    []string

	Logger *zap.Logger
}

// DefaultOptions returns the documented default policies.
func DefaultOptions() Options {
	return Options{
		MigrateIf:       MigrateAll,
		Labeler:         CategoryLabel,
		CloseIf:         CloseIfClosed,
		UsernameMap:     map[string]string{},
		PostDelay:       DefaultPostDelay,
		AfterMigrate:    func(*fogbugz.Case, *target.Issue) error { return nil },
		OnError:         AbortOnError,
		OnEvent:         func(Event) {},
		DateLayout:      render.DefaultLayout,
		Location:        time.UTC,
		ImageExtensions: render.DefaultImageExtensions,
		Converter:       attachments.PassThrough{},
		Workflow:        pipeline.DefaultWorkflow,
		Sleep:           pipeline.Sleep,
	}
}

// Engine migrates cases from one FogBugz instance into one repository.
type Engine struct {
	src      attachments.Source
	repo     target.Repo
	opts     Options
	renderer *render.Renderer
	steps    []string
	registry *pipeline.Registry
	log      *zap.Logger
}

// New validates opts and creates an engine.
func New(src attachments.Source, repo target.Repo, opts Options) (*Engine, error) {
	if src == nil {
		return nil, errors.New("attachment source is required")
	}
	if repo == nil {
		return nil, errors.New("target repository is required")
	}
	if opts.PostDelay < 0 {
		return nil, fmt.Errorf("post delay must not be negative: %s", opts.PostDelay)
	}

	defaults := DefaultOptions()
	if opts.MigrateIf == nil {
		opts.MigrateIf = defaults.MigrateIf
	}
	if opts.Labeler == nil {
		opts.Labeler = defaults.Labeler
	}
	if opts.CloseIf == nil {
		opts.CloseIf = defaults.CloseIf
	}
	if opts.UsernameMap == nil {
		opts.UsernameMap = defaults.UsernameMap
	}
	if opts.AfterMigrate == nil {
		opts.AfterMigrate = defaults.AfterMigrate
	}
	if opts.OnError == nil {
		opts.OnError = defaults.OnError
	}
	if opts.OnEvent == nil {
		opts.OnEvent = defaults.OnEvent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	names, err := pipeline.ResolveSteps(opts.Steps, opts.Workflow)
	if err != nil {
		return nil, err
	}
	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)
	for _, name := range names {
		if _, ok := registry.Get(name); !ok {
			return nil, fmt.Errorf("unknown step: %s", name)
		}
	}

	renderer := render.New(src, opts.Converter, render.Options{
		Layout:          opts.DateLayout,
		Location:        opts.Location,
		ImageExtensions: opts.ImageExtensions,
	})

	return &Engine{
		src:      src,
		repo:     repo,
		opts:     opts,
		renderer: renderer,
		steps:    names,
		registry: registry,
		log:      opts.Logger,
	}, nil
}

// Steps returns the step names each case runs through.
func (e *Engine) Steps() []string {
	return append([]string(nil), e.steps...)
}

// Run migrates cases in order. Label and milestone caches live for this run
// only, so concurrent runs never share them.
//
// The returned report is never nil. A non-nil error means the run aborted;
// it is the error returned by the error handler.
func (e *Engine) Run(ctx context.Context, cases iter.Seq[*fogbugz.Case]) (*Report, error) {
	resolver := cache.NewResolver(e.repo)
	deps := &pipeline.Dependencies{
		Repo:     e.repo,
		Resolver: resolver,
		Renderer: e.renderer,
		Policies: pipeline.Policies{
			MigrateIf:    e.opts.MigrateIf,
			Labels:       e.opts.Labeler,
			CloseIf:      e.opts.CloseIf,
			UsernameMap:  e.opts.UsernameMap,
			AfterMigrate: e.opts.AfterMigrate,
		},
		PostDelay: e.opts.PostDelay,
		Sleep:     e.opts.Sleep,
		Logger:    e.log,
	}
	p, err := e.registry.BuildFromNames(e.steps, deps)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		State:     StateRunning,
	}
	e.emit(Event{Kind: EventRunStarted, RunID: report.RunID})

	var runErr error
	for c := range cases {
		// A case is never interrupted part-way; cancellation is checked after.
		caseCtx := context.WithoutCancel(ctx)
		pctx := pipeline.NewContext(caseCtx, c)

		stepErr := p.Run(pctx)
		rec := newRecord(c, pctx.Result)

		switch {
		case stepErr != nil:
			cerr := newCaseError(c, stepErr)
			rec.Status = StatusFailed
			rec.Error = cerr.Error()
			report.add(rec)
			e.emit(Event{Kind: EventCaseFailed, RunID: report.RunID, Case: c, Record: rec, Err: cerr})

			if herr := e.opts.OnError(cerr); herr != nil {
				runErr = herr
			}
		case pctx.Result.Skipped:
			rec.Status = StatusSkipped
			report.add(rec)
			e.emit(Event{Kind: EventCaseSkipped, RunID: report.RunID, Case: c, Record: rec})
		default:
			rec.Status = StatusMigrated
			report.add(rec)
			e.emit(Event{Kind: EventCaseMigrated, RunID: report.RunID, Case: c, Record: rec})
		}

		if runErr != nil {
			break
		}
		if ctx.Err() != nil {
			report.Interrupted = true
			e.emit(Event{Kind: EventRunInterrupted, RunID: report.RunID, Err: ctx.Err()})
			break
		}
	}

	stats := resolver.Stats()
	report.LabelsCreated = stats.LabelsCreated
	report.MilestonesCreated = stats.MilestonesCreated
	report.FinishedAt = time.Now()
	if runErr != nil {
		report.State = StateAborted
	} else {
		report.State = StateCompleted
	}
	e.emit(Event{Kind: EventRunFinished, RunID: report.RunID, Report: report, Err: runErr})

	return report, runErr
}

func (e *Engine) emit(ev Event) {
	e.opts.OnEvent(ev)
}

func newRecord(c *fogbugz.Case, res *pipeline.Result) Record {
	return Record{
		CaseID:      c.ID,
		Title:       c.Title,
		IssueNumber: res.IssueNumber,
		IssueURL:    res.IssueURL,
		Labels:      res.Labels,
		Milestone:   res.Milestone,
		Comments:    res.CommentsPosted,
		Closed:      res.Closed,
		Assignee:    res.Assignee,
		SkipReason:  res.SkipReason,
	}
}
