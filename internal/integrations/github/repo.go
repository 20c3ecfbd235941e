// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/utils/retry"
)

// DefaultNoMilestoneTitle replaces the empty milestone title, which GitHub
// rejects.
const DefaultNoMilestoneTitle = "Undecided"

// Repo is one repository seen as a migration target.
type Repo struct {
	c                *Client
	owner            string
	name             string
	noMilestoneTitle string
}

// Repo returns the migration target for owner/name.
func (c *Client) Repo(owner, name string) *Repo {
	return &Repo{
		c:                c,
		owner:            owner,
		name:             name,
		noMilestoneTitle: DefaultNoMilestoneTitle,
	}
}

// WithNoMilestoneTitle sets the GitHub title used for the empty milestone.
func (r *Repo) WithNoMilestoneTitle(title string) *Repo {
	if title != "" {
		r.noMilestoneTitle = title
	}
	return r
}

// String returns "owner/name".
func (r *Repo) String() string {
	return r.owner + "/" + r.name
}

func (r *Repo) call(ctx context.Context, op string, fn func() error) error {
	return retry.Run(ctx, r.c.retry, op, fn)
}

// CreateIssue opens a new issue.
func (r *Repo) CreateIssue(ctx context.Context, title, body string) (*target.Issue, error) {
	req := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	issue, err := retry.Do(ctx, r.c.retry, "create issue", func() (*github.Issue, error) {
		iss, _, err := r.c.client.Issues.Create(ctx, r.owner, r.name, req)
		return iss, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	r.c.log.Debug("Created issue", zap.String("repo", r.String()), zap.Int("number", issue.GetNumber()))
	return &target.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		URL:    issue.GetHTMLURL(),
	}, nil
}

// AddComment posts a comment on an issue.
func (r *Repo) AddComment(ctx context.Context, issue *target.Issue, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}

	comment := &github.IssueComment{
		Body: github.String(body),
	}
	err := r.call(ctx, "create comment", func() error {
		_, _, err := r.c.client.Issues.CreateComment(ctx, r.owner, r.name, issue.Number, comment)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// CreateLabel creates a repository label. A label that already exists is
// not an error.
func (r *Repo) CreateLabel(ctx context.Context, label target.Label) error {
	gl := &github.Label{
		Name:  github.String(label.Name),
		Color: github.String(strings.TrimPrefix(label.Color, "#")),
	}
	err := r.call(ctx, "create label", func() error {
		_, _, err := r.c.client.Issues.CreateLabel(ctx, r.owner, r.name, gl)
		return err
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to create label: %w", err)
	}
	return nil
}

// ListLabels returns every label of the repository.
func (r *Repo) ListLabels(ctx context.Context) ([]target.Label, error) {
	var out []target.Label
	opts := &github.ListOptions{PerPage: 100}
	for {
		var resp *github.Response
		labels, err := retry.Do(ctx, r.c.retry, "list labels", func() ([]*github.Label, error) {
			ls, rs, err := r.c.client.Issues.ListLabels(ctx, r.owner, r.name, opts)
			resp = rs
			return ls, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		for _, l := range labels {
			out = append(out, target.Label{Name: l.GetName(), Color: l.GetColor()})
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreateMilestone creates a milestone. The empty title is created as the
// configured no-milestone title but reported back with an empty title.
func (r *Repo) CreateMilestone(ctx context.Context, title string) (*target.Milestone, error) {
	ghTitle := r.githubTitle(title)
	req := &github.Milestone{Title: github.String(ghTitle)}

	m, err := retry.Do(ctx, r.c.retry, "create milestone", func() (*github.Milestone, error) {
		m, _, err := r.c.client.Issues.CreateMilestone(ctx, r.owner, r.name, req)
		return m, err
	})
	if err != nil {
		if !isAlreadyExists(err) {
			return nil, fmt.Errorf("failed to create milestone: %w", err)
		}
		existing, ferr := r.findMilestone(ctx, ghTitle)
		if ferr != nil {
			return nil, fmt.Errorf("failed to create milestone: %w", err)
		}
		return &target.Milestone{Number: existing.Number, Title: title}, nil
	}

	return &target.Milestone{Number: m.GetNumber(), Title: title}, nil
}

// ListMilestones returns open and closed milestones. The no-milestone
// milestone is listed twice: under its GitHub title and under "".
func (r *Repo) ListMilestones(ctx context.Context) ([]*target.Milestone, error) {
	var out []*target.Milestone
	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		var resp *github.Response
		milestones, err := retry.Do(ctx, r.c.retry, "list milestones", func() ([]*github.Milestone, error) {
			ms, rs, err := r.c.client.Issues.ListMilestones(ctx, r.owner, r.name, opts)
			resp = rs
			return ms, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list milestones: %w", err)
		}
		for _, m := range milestones {
			out = append(out, &target.Milestone{Number: m.GetNumber(), Title: m.GetTitle()})
			if m.GetTitle() == r.noMilestoneTitle {
				out = append(out, &target.Milestone{Number: m.GetNumber(), Title: ""})
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (r *Repo) findMilestone(ctx context.Context, ghTitle string) (*target.Milestone, error) {
	all, err := r.ListMilestones(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		if m.Title == ghTitle {
			return m, nil
		}
	}
	return nil, fmt.Errorf("milestone %q not found", ghTitle)
}

func (r *Repo) githubTitle(title string) string {
	if title == "" {
		return r.noMilestoneTitle
	}
	return title
}

// AddLabels adds labels to an issue.
func (r *Repo) AddLabels(ctx context.Context, issue *target.Issue, labels []target.Label) error {
	if len(labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}

	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	err := r.call(ctx, "add labels", func() error {
		_, _, err := r.c.client.Issues.AddLabelsToIssue(ctx, r.owner, r.name, issue.Number, names)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}
	return nil
}

// SetMilestone sets or, for a nil m, removes the issue milestone.
func (r *Repo) SetMilestone(ctx context.Context, issue *target.Issue, m *target.Milestone) error {
	err := r.call(ctx, "set milestone", func() error {
		if m == nil {
			_, _, err := r.c.client.Issues.RemoveMilestone(ctx, r.owner, r.name, issue.Number)
			return err
		}
		req := &github.IssueRequest{Milestone: github.Int(m.Number)}
		_, _, err := r.c.client.Issues.Edit(ctx, r.owner, r.name, issue.Number, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set milestone: %w", err)
	}
	return nil
}

// Close closes an issue.
func (r *Repo) Close(ctx context.Context, issue *target.Issue) error {
	req := &github.IssueRequest{State: github.String("closed")}
	err := r.call(ctx, "close issue", func() error {
		_, _, err := r.c.client.Issues.Edit(ctx, r.owner, r.name, issue.Number, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to close issue: %w", err)
	}
	return nil
}

// Assign adds username as an assignee.
func (r *Repo) Assign(ctx context.Context, issue *target.Issue, username string) error {
	err := r.call(ctx, "assign issue", func() error {
		_, _, err := r.c.client.Issues.AddAssignees(ctx, r.owner, r.name, issue.Number, []string{username})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to assign issue: %w", err)
	}
	return nil
}

// IsOpen reports whether the issue is open.
func (r *Repo) IsOpen(ctx context.Context, issue *target.Issue) (bool, error) {
	gi, err := retry.Do(ctx, r.c.retry, "get issue", func() (*github.Issue, error) {
		gi, _, err := r.c.client.Issues.Get(ctx, r.owner, r.name, issue.Number)
		return gi, err
	})
	if err != nil {
		return false, fmt.Errorf("failed to fetch issue: %w", err)
	}
	return gi.GetState() == "open", nil
}

var _ target.Repo = (*Repo)(nil)
