// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package steps contains the modular "Lego block" pipeline steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

// Gatekeeper applies the inclusion policy. Excluded cases stop the pipeline
// before any write is made.
type Gatekeeper struct {
	migrateIf func(*fogbugz.Case) bool
	log       *zap.Logger
}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{
		migrateIf: deps.Policies.MigrateIf,
		log:       deps.Log().Named("gatekeeper"),
	}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run skips the case when the inclusion predicate rejects it.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	if s.migrateIf == nil || s.migrateIf(ctx.Case) {
		return nil
	}

	s.log.Debug("Case excluded by inclusion policy", zap.Int("case", ctx.Case.ID))
	ctx.Result.Skipped = true
	ctx.Result.SkipReason = "excluded by inclusion policy"
	return pipeline.ErrSkipPipeline
}
