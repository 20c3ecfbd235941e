// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package steps

import (
	"strings"

	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/core/cache"
	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

// LabelResolver computes the case's labels and makes sure each exists on
// GitHub.
type LabelResolver struct {
	resolver *cache.Resolver
	labeler  func(*fogbugz.Case) []target.Label
	log      *zap.Logger
}

// NewLabelResolver creates a new label resolver step.
func NewLabelResolver(deps *pipeline.Dependencies) *LabelResolver {
	return &LabelResolver{
		resolver: deps.Resolver,
		labeler:  deps.Policies.Labels,
		log:      deps.Log().Named("label_resolver"),
	}
}

// Name returns the step name.
func (s *LabelResolver) Name() string {
	return "label_resolver"
}

// Run creates any label not yet known to the cache. Names differing only in
// letter case are attached once.
func (s *LabelResolver) Run(ctx *pipeline.Context) error {
	if s.labeler == nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, label := range s.labeler(ctx.Case) {
		key := strings.ToLower(label.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		created, err := s.resolver.EnsureLabel(ctx.Ctx, label)
		if err != nil {
			return err
		}
		if created {
			s.log.Info("Created label", zap.String("label", label.Name))
			ctx.Result.LabelsCreated++
		}
		ctx.Labels = append(ctx.Labels, label)
		ctx.Result.Labels = append(ctx.Result.Labels, label.Name)
	}
	return nil
}
