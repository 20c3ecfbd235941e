// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package steps

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/render"
)

// IssueCreator opens the GitHub issue, using the case's first event as
// its description.
type IssueCreator struct {
	deps     *pipeline.Dependencies
	repo     target.Repo
	renderer *render.Renderer
	log      *zap.Logger
}

// NewIssueCreator creates a new issue creator step.
func NewIssueCreator(deps *pipeline.Dependencies) *IssueCreator {
	return &IssueCreator{
		deps:     deps,
		repo:     deps.Repo,
		renderer: deps.Renderer,
		log:      deps.Log().Named("issue_creator"),
	}
}

// Name returns the step name.
func (s *IssueCreator) Name() string {
	return "issue_creator"
}

// Run renders the opening event and creates the issue.
func (s *IssueCreator) Run(ctx *pipeline.Context) error {
	if len(ctx.Case.Events) == 0 {
		return fmt.Errorf("case %d: %w", ctx.Case.ID, fogbugz.ErrNoEvents)
	}

	body, err := s.renderer.Render(ctx.Ctx, &ctx.Case.Events[0])
	if err != nil {
		return err
	}

	issue, err := s.repo.CreateIssue(ctx.Ctx, ctx.Case.Title, body)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	ctx.Issue = issue
	ctx.Result.IssueNumber = issue.Number
	ctx.Result.IssueURL = issue.URL

	s.log.Debug("Created issue", zap.Int("case", ctx.Case.ID), zap.Int("issue", issue.Number))
	return s.deps.Pause(ctx.Ctx)
}
