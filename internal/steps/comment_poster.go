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
	"github.com/similigh/fb2gh/internal/render"
)

// CommentPoster replays the rest of the case history as issue comments,
// in original order.
type CommentPoster struct {
	deps     *pipeline.Dependencies
	repo     target.Repo
	renderer *render.Renderer
	log      *zap.Logger
}

// NewCommentPoster creates a new comment poster step.
func NewCommentPoster(deps *pipeline.Dependencies) *CommentPoster {
	return &CommentPoster{
		deps:     deps,
		repo:     deps.Repo,
		renderer: deps.Renderer,
		log:      deps.Log().Named("comment_poster"),
	}
}

// Name returns the step name.
func (s *CommentPoster) Name() string {
	return "comment_poster"
}

// Run posts one comment per event after the first.
func (s *CommentPoster) Run(ctx *pipeline.Context) error {
	if ctx.Issue == nil {
		return fmt.Errorf("no issue to comment on")
	}
	if len(ctx.Case.Events) < 2 {
		return nil
	}

	for i := 1; i < len(ctx.Case.Events); i++ {
		ev := &ctx.Case.Events[i]
		text, err := s.renderer.Render(ctx.Ctx, ev)
		if err != nil {
			return err
		}
		if err := s.repo.AddComment(ctx.Ctx, ctx.Issue, text); err != nil {
			return fmt.Errorf("failed to post event %d: %w", ev.ID, err)
		}
		ctx.Result.CommentsPosted++
		if err := s.deps.Pause(ctx.Ctx); err != nil {
			return err
		}
	}

	s.log.Debug("Posted comments",
		zap.Int("case", ctx.Case.ID),
		zap.Int("issue", ctx.Issue.Number),
		zap.Int("comments", ctx.Result.CommentsPosted))
	return nil
}
