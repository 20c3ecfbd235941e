// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package steps

import (
	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/core/cache"
	"github.com/similigh/fb2gh/internal/core/pipeline"
)

// MilestoneResolver finds or creates the milestone matching the case's
// FogBugz milestone title.
type MilestoneResolver struct {
	resolver *cache.Resolver
	log      *zap.Logger
}

// NewMilestoneResolver creates a new milestone resolver step.
func NewMilestoneResolver(deps *pipeline.Dependencies) *MilestoneResolver {
	return &MilestoneResolver{
		resolver: deps.Resolver,
		log:      deps.Log().Named("milestone_resolver"),
	}
}

// Name returns the step name.
func (s *MilestoneResolver) Name() string {
	return "milestone_resolver"
}

// Run resolves the milestone, including the empty "no milestone" title.
func (s *MilestoneResolver) Run(ctx *pipeline.Context) error {
	before := s.resolver.Stats().MilestonesCreated

	m, err := s.resolver.ResolveMilestone(ctx.Ctx, ctx.Case.Milestone)
	if err != nil {
		return err
	}
	if s.resolver.Stats().MilestonesCreated > before {
		s.log.Info("Created milestone", zap.String("milestone", m.Title), zap.Int("number", m.Number))
		ctx.Result.MilestoneCreated = true
	}

	ctx.Milestone = m
	ctx.Result.Milestone = m.Title
	return nil
}
