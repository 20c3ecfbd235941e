// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

// Package cache indexes the labels and milestones of the target repository so
// that each distinct one is created at most once per migration run.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/similigh/fb2gh/internal/core/target"
)

// Stats counts the entities a Resolver created on the target.
type Stats struct {
	LabelsCreated     int
	MilestonesCreated int
}

// Resolver is the per-run label and milestone cache. It is populated from the
// target repository on first use and grows as entities are created.
//
// A Resolver is not safe for concurrent use; each run owns its own.
type Resolver struct {
	repo target.Repo

	loaded     bool
	labels     map[string]target.Label      // keyed by lower-cased name
	milestones map[string]*target.Milestone // keyed by exact title
	stats      Stats
}

// NewResolver creates an empty resolver for repo.
func NewResolver(repo target.Repo) *Resolver {
	return &Resolver{
		repo:       repo,
		labels:     make(map[string]target.Label),
		milestones: make(map[string]*target.Milestone),
	}
}

// load fetches the existing labels and milestones once.
func (r *Resolver) load(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	labels, err := r.repo.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list labels: %w", err)
	}
	milestones, err := r.repo.ListMilestones(ctx)
	if err != nil {
		return fmt.Errorf("failed to list milestones: %w", err)
	}

	for _, l := range labels {
		r.labels[strings.ToLower(l.Name)] = l
	}
	for _, m := range milestones {
		if _, dup := r.milestones[m.Title]; !dup {
			r.milestones[m.Title] = m
		}
	}
	r.loaded = true
	return nil
}

// EnsureLabel creates label on the target unless a label with the same name,
// compared case-insensitively, is already known. Color is not compared.
func (r *Resolver) EnsureLabel(ctx context.Context, label target.Label) (bool, error) {
	if err := r.load(ctx); err != nil {
		return false, err
	}

	key := strings.ToLower(label.Name)
	if _, ok := r.labels[key]; ok {
		return false, nil
	}

	if label.Color == "" {
		label.Color = target.DefaultLabelColor
	}
	if err := r.repo.CreateLabel(ctx, label); err != nil {
		return false, fmt.Errorf("failed to create label %q: %w", label.Name, err)
	}
	r.labels[key] = label
	r.stats.LabelsCreated++
	return true, nil
}

// ResolveMilestone returns the milestone titled exactly title, creating it if
// needed. The empty title is a valid key and is created like any other.
func (r *Resolver) ResolveMilestone(ctx context.Context, title string) (*target.Milestone, error) {
	if err := r.load(ctx); err != nil {
		return nil, err
	}

	if m, ok := r.milestones[title]; ok {
		return m, nil
	}

	m, err := r.repo.CreateMilestone(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone %q: %w", title, err)
	}
	r.milestones[title] = m
	r.stats.MilestonesCreated++
	return m, nil
}

// Label returns the cached label for name, if known.
func (r *Resolver) Label(name string) (target.Label, bool) {
	l, ok := r.labels[strings.ToLower(name)]
	return l, ok
}

// Stats returns creation counters for the run so far.
func (r *Resolver) Stats() Stats {
	return r.stats
}
