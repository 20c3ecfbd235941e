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

// PostMigrate runs the caller's after-migration hook.
type PostMigrate struct {
	hook func(*fogbugz.Case, *target.Issue) error
}

// NewPostMigrate creates a new post-migrate step.
func NewPostMigrate(deps *pipeline.Dependencies) *PostMigrate {
	return &PostMigrate{hook: deps.Policies.AfterMigrate}
}

// Name returns the step name.
func (s *PostMigrate) Name() string {
	return "post_migrate"
}

// Run invokes the hook with the case and its issue.
func (s *PostMigrate) Run(ctx *pipeline.Context) error {
	if s.hook == nil {
		return nil
	}
	if ctx.Issue == nil {
		return fmt.Errorf("no issue for post-migration hook")
	}
	return s.hook(ctx.Case, ctx.Issue)
}
