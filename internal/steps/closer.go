// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package steps

import (
	"fmt"

	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

// Closer closes the issue when the close policy says so.
type Closer struct {
	repo    target.Repo
	closeIf func(*fogbugz.Case) bool
}

// NewCloser creates a new closer step.
func NewCloser(deps *pipeline.Dependencies) *Closer {
	return &Closer{
		repo:    deps.Repo,
		closeIf: deps.Policies.CloseIf,
	}
}

// Name returns the step name.
func (s *Closer) Name() string {
	return "closer"
}

// Run closes the issue if required.
func (s *Closer) Run(ctx *pipeline.Context) error {
	if s.closeIf == nil || !s.closeIf(ctx.Case) {
		return nil
	}
	if ctx.Issue == nil {
		return fmt.Errorf("no issue to close")
	}
	if err := s.repo.Close(ctx.Ctx, ctx.Issue); err != nil {
		return fmt.Errorf("failed to close issue: %w", err)
	}
	ctx.Result.Closed = true
	return nil
}
