// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package steps

import (
	"fmt"

	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/core/target"
)

// MetadataApplier attaches the resolved labels and milestone to the issue.
type MetadataApplier struct {
	repo target.Repo
}

// NewMetadataApplier creates a new metadata applier step.
func NewMetadataApplier(deps *pipeline.Dependencies) *MetadataApplier {
	return &MetadataApplier{repo: deps.Repo}
}

// Name returns the step name.
func (s *MetadataApplier) Name() string {
	return "metadata_applier"
}

// Run applies labels and milestone.
func (s *MetadataApplier) Run(ctx *pipeline.Context) error {
	if ctx.Issue == nil {
		return fmt.Errorf("no issue to update")
	}

	if len(ctx.Labels) > 0 {
		if err := s.repo.AddLabels(ctx.Ctx, ctx.Issue, ctx.Labels); err != nil {
			return fmt.Errorf("failed to add labels: %w", err)
		}
	}
	if ctx.Milestone != nil {
		if err := s.repo.SetMilestone(ctx.Ctx, ctx.Issue, ctx.Milestone); err != nil {
			return fmt.Errorf("failed to set milestone: %w", err)
		}
	}
	return nil
}
