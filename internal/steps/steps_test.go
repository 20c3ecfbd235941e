// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package steps

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/similigh/fb2gh/internal/attachments"
	"github.com/similigh/fb2gh/internal/core/cache"
	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/render"
)

type nopSource struct{}

func (nopSource) AttachmentURL(a fogbugz.Attachment) string { return a.URL }

func newDeps(repo *target.MemoryRepo) *pipeline.Dependencies {
	return &pipeline.Dependencies{
		Repo:     repo,
		Resolver: cache.NewResolver(repo),
		Renderer: render.New(nopSource{}, attachments.PassThrough{}, render.Options{}),
		Policies: pipeline.Policies{
			MigrateIf: func(*fogbugz.Case) bool { return true },
			Labels: func(c *fogbugz.Case) []target.Label {
				return []target.Label{target.NewLabel(c.Category)}
			},
			CloseIf:     (*fogbugz.Case).Closed,
			UsernameMap: map[string]string{"Alice": "alice-gh"},
		},
	}
}

func buildPipeline(t *testing.T, workflow string, deps *pipeline.Dependencies) *pipeline.Pipeline {
	t.Helper()
	r := pipeline.NewRegistry()
	RegisterAll(r)
	names, err := pipeline.ResolveSteps(nil, workflow)
	if err != nil {
		t.Fatal(err)
	}
	p, err := r.BuildFromNames(names, deps)
	if err != nil {
		t.Fatalf("BuildFromNames failed: %v", err)
	}
	return p
}

func sampleCase(open bool) *fogbugz.Case {
	return &fogbugz.Case{
		ID:        42,
		Open:      open,
		Title:     "Crash on save",
		Assignee:  "Alice",
		Category:  "Bug",
		Milestone: "1.0",
		Events: []fogbugz.Event{
			{ID: 1, Description: "Opened by Alice", DateTime: "2007-06-27T16:37:13Z", Text: "Something is wrong."},
			{ID: 2, Description: "Edited by Bob", DateTime: "2007-06-28T10:00:00Z", Text: "More detail."},
			{ID: 3, Description: "Resolved by Alice", DateTime: "2007-06-29T10:00:00Z"},
		},
	}
}

func TestFullWorkflowCallOrder(t *testing.T) {
	tests := []struct {
		name      string
		open      bool
		wantCalls []string
		assignee  string
	}{
		{
			name: "open case is assigned",
			open: true,
			wantCalls: []string{
				"ListLabels", "ListMilestones", "CreateLabel", "CreateMilestone",
				"CreateIssue", "AddLabels", "SetMilestone", "AddComment", "AddComment",
				"IsOpen", "Assign",
			},
			assignee: "alice-gh",
		},
		{
			name: "closed case is closed and not assigned",
			open: false,
			wantCalls: []string{
				"ListLabels", "ListMilestones", "CreateLabel", "CreateMilestone",
				"CreateIssue", "AddLabels", "SetMilestone", "AddComment", "AddComment",
				"Close", "IsOpen",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := target.NewMemoryRepo()
			deps := newDeps(repo)
			p := buildPipeline(t, "full", deps)

			pctx := pipeline.NewContext(context.Background(), sampleCase(tt.open))
			if err := p.Run(pctx); err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			if got := strings.Join(repo.Calls(), ","); got != strings.Join(tt.wantCalls, ",") {
				t.Errorf("calls =\n%s\nwant\n%s", got, strings.Join(tt.wantCalls, ","))
			}

			issues := repo.Issues()
			if len(issues) != 1 {
				t.Fatalf("expected 1 issue, got %d", len(issues))
			}
			iss := issues[0]
			if iss.Open != tt.open {
				t.Errorf("issue open = %v, want %v", iss.Open, tt.open)
			}
			if iss.Assignee != tt.assignee {
				t.Errorf("assignee = %q, want %q", iss.Assignee, tt.assignee)
			}
			if len(iss.Comments) != 2 || !strings.HasPrefix(iss.Comments[0], "<strong>Edited by Bob</strong>") {
				t.Errorf("unexpected comments: %q", iss.Comments)
			}
			if iss.Milestone == nil || iss.Milestone.Title != "1.0" {
				t.Errorf("unexpected milestone: %+v", iss.Milestone)
			}
			if pctx.Result.IssueNumber != 1 || pctx.Result.CommentsPosted != 2 || pctx.Result.Closed == tt.open {
				t.Errorf("unexpected result: %+v", pctx.Result)
			}
		})
	}
}

func TestIssuesOnlyWorkflow(t *testing.T) {
	repo := target.NewMemoryRepo()
	p := buildPipeline(t, "issues-only", newDeps(repo))

	if err := p.Run(pipeline.NewContext(context.Background(), sampleCase(false))); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := "CreateIssue,AddComment,AddComment"
	if got := strings.Join(repo.Calls(), ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
}

func TestLabelResolverCaseVariants(t *testing.T) {
	repo := target.NewMemoryRepo()
	deps := newDeps(repo)
	deps.Policies.Labels = func(*fogbugz.Case) []target.Label {
		return []target.Label{target.NewLabel("Bug"), target.NewLabel("bug"), target.NewLabel("UI")}
	}
	p := buildPipeline(t, "full", deps)

	pctx := pipeline.NewContext(context.Background(), sampleCase(true))
	if err := p.Run(pctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if n := repo.CountCalls("CreateLabel"); n != 2 {
		t.Errorf("CreateLabel calls = %d, want 2", n)
	}
	got := repo.Issues()[0].Labels
	if strings.Join(got, ",") != "Bug,UI" {
		t.Errorf("issue labels = %v, want [Bug UI]", got)
	}
	if strings.Join(pctx.Result.Labels, ",") != "Bug,UI" {
		t.Errorf("result labels = %v", pctx.Result.Labels)
	}
}

func TestGatekeeperSkip(t *testing.T) {
	repo := target.NewMemoryRepo()
	deps := newDeps(repo)
	deps.Policies.MigrateIf = func(*fogbugz.Case) bool { return false }
	p := buildPipeline(t, "full", deps)

	pctx := pipeline.NewContext(context.Background(), sampleCase(true))
	if err := p.Run(pctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !pctx.Result.Skipped {
		t.Error("expected case to be skipped")
	}
	if calls := repo.Calls(); len(calls) != 0 {
		t.Errorf("skipped case made calls: %v", calls)
	}
}

func TestIssueCreatorNoEvents(t *testing.T) {
	repo := target.NewMemoryRepo()
	step := NewIssueCreator(newDeps(repo))

	c := &fogbugz.Case{ID: 9, Title: "empty"}
	err := step.Run(pipeline.NewContext(context.Background(), c))
	if !errors.Is(err, fogbugz.ErrNoEvents) {
		t.Fatalf("expected ErrNoEvents, got %v", err)
	}
	if repo.CountCalls("CreateIssue") != 0 {
		t.Error("no issue should be created")
	}
}

func TestAssignerUnmapped(t *testing.T) {
	repo := target.NewMemoryRepo()
	deps := newDeps(repo)
	issue, _ := repo.CreateIssue(context.Background(), "t", "b")

	c := sampleCase(true)
	c.Assignee = "Mallory"
	pctx := pipeline.NewContext(context.Background(), c)
	pctx.Issue = issue

	if err := NewAssigner(deps).Run(pctx); err != nil {
		t.Fatal(err)
	}
	if repo.CountCalls("Assign") != 0 {
		t.Error("unmapped assignee must leave the issue unassigned")
	}
}

func TestCommentPosterStopsOnFailure(t *testing.T) {
	repo := target.NewMemoryRepo()
	deps := newDeps(repo)
	issue, _ := repo.CreateIssue(context.Background(), "t", "b")

	boom := errors.New("abuse limit")
	repo.FailOn = func(op string, args ...any) error {
		if op == "AddComment" && strings.Contains(args[1].(string), "Resolved") {
			return boom
		}
		return nil
	}

	pctx := pipeline.NewContext(context.Background(), sampleCase(true))
	pctx.Issue = issue
	err := NewCommentPoster(deps).Run(pctx)
	if !errors.Is(err, boom) {
		t.Fatalf("expected comment failure, got %v", err)
	}
	if pctx.Result.CommentsPosted != 1 {
		t.Errorf("CommentsPosted = %d, want 1", pctx.Result.CommentsPosted)
	}
}

func TestRegisterAllMissingDependency(t *testing.T) {
	r := pipeline.NewRegistry()
	RegisterAll(r)
	if _, err := r.BuildFromNames([]string{"issue_creator"}, &pipeline.Dependencies{}); err == nil {
		t.Error("expected error when renderer is missing")
	}
}
