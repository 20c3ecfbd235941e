// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package steps

import (
	"fmt"

	"github.com/similigh/fb2gh/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})

	r.Register("label_resolver", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		if deps.Resolver == nil {
			return nil, errMissing("resolver")
		}
		return NewLabelResolver(deps), nil
	})

	r.Register("milestone_resolver", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		if deps.Resolver == nil {
			return nil, errMissing("resolver")
		}
		return NewMilestoneResolver(deps), nil
	})

	r.Register("issue_creator", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		if deps.Renderer == nil {
			return nil, errMissing("renderer")
		}
		return NewIssueCreator(deps), nil
	})

	r.Register("metadata_applier", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewMetadataApplier(deps), nil
	})

	r.Register("comment_poster", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		if deps.Renderer == nil {
			return nil, errMissing("renderer")
		}
		return NewCommentPoster(deps), nil
	})

	r.Register("closer", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewCloser(deps), nil
	})

	r.Register("assigner", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewAssigner(deps), nil
	})

	r.Register("post_migrate", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewPostMigrate(deps), nil
	})
}

func errMissing(what string) error {
	return fmt.Errorf("missing dependency: %s", what)
}
