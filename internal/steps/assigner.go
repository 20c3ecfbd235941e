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
)

// Assigner assigns open issues to the mapped GitHub user. Closed issues
// are left unassigned.
type Assigner struct {
	repo      target.Repo
	usernames map[string]string
	log       *zap.Logger
}

// NewAssigner creates a new assigner step.
func NewAssigner(deps *pipeline.Dependencies) *Assigner {
	return &Assigner{
		repo:      deps.Repo,
		usernames: deps.Policies.UsernameMap,
		log:       deps.Log().Named("assigner"),
	}
}

// Name returns the step name.
func (s *Assigner) Name() string {
	return "assigner"
}

// Run assigns the issue if it is still open and the assignee is mapped.
func (s *Assigner) Run(ctx *pipeline.Context) error {
	if ctx.Issue == nil {
		return fmt.Errorf("no issue to assign")
	}

	open, err := s.repo.IsOpen(ctx.Ctx, ctx.Issue)
	if err != nil {
		return fmt.Errorf("failed to read issue state: %w", err)
	}
	if !open {
		return nil
	}

	username := s.usernames[ctx.Case.Assignee]
	if username == "" {
		if ctx.Case.Assignee != "" {
			s.log.Debug("No GitHub user mapped", zap.String("assignee", ctx.Case.Assignee))
		}
		return nil
	}

	if err := s.repo.Assign(ctx.Ctx, ctx.Issue, username); err != nil {
		return fmt.Errorf("failed to assign %s: %w", username, err)
	}
	ctx.Result.Assignee = username
	return nil
}
