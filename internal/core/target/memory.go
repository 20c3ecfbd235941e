// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package target

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryIssue is the stored state of an issue held by MemoryRepo.
type MemoryIssue struct {
	Issue
	Comments  []string
	Labels    []string
	Milestone *Milestone
	Assignee  string
	Open      bool
}

// MemoryRepo is an in-memory Repo. It backs dry runs and tests, and records
// every call in order.
type MemoryRepo struct {
	mu         sync.Mutex
	issues     []*MemoryIssue
	labels     []Label
	milestones []*Milestone
	calls      []string

	// FailOn, when set, is consulted before every call. A non-nil return
	// aborts the call with that error.
	FailOn func(op string, args ...any) error
}

// NewMemoryRepo returns an empty repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// SeedLabels adds pre-existing labels.
func (r *MemoryRepo) SeedLabels(labels ...Label) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, labels...)
}

// SeedMilestones adds pre-existing milestones by title.
func (r *MemoryRepo) SeedMilestones(titles ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range titles {
		r.milestones = append(r.milestones, &Milestone{Number: len(r.milestones) + 1, Title: t})
	}
}

func (r *MemoryRepo) record(op string, args ...any) error {
	r.calls = append(r.calls, op)
	if r.FailOn != nil {
		return r.FailOn(op, args...)
	}
	return nil
}

func (r *MemoryRepo) lookup(issue *Issue) (*MemoryIssue, error) {
	if issue == nil || issue.Number < 1 || issue.Number > len(r.issues) {
		return nil, fmt.Errorf("issue not found")
	}
	return r.issues[issue.Number-1], nil
}

func (r *MemoryRepo) CreateIssue(ctx context.Context, title, body string) (*Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateIssue", title, body); err != nil {
		return nil, err
	}
	n := len(r.issues) + 1
	mi := &MemoryIssue{
		Issue: Issue{Number: n, Title: title, Body: body, URL: fmt.Sprintf("memory://issues/%d", n)},
		Open:  true,
	}
	r.issues = append(r.issues, mi)
	issue := mi.Issue
	return &issue, nil
}

func (r *MemoryRepo) AddComment(ctx context.Context, issue *Issue, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("AddComment", issue, body); err != nil {
		return err
	}
	mi, err := r.lookup(issue)
	if err != nil {
		return err
	}
	mi.Comments = append(mi.Comments, body)
	return nil
}

func (r *MemoryRepo) CreateLabel(ctx context.Context, label Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateLabel", label); err != nil {
		return err
	}
	for _, l := range r.labels {
		if strings.EqualFold(l.Name, label.Name) {
			return fmt.Errorf("label %q already exists", label.Name)
		}
	}
	r.labels = append(r.labels, label)
	return nil
}

func (r *MemoryRepo) ListLabels(ctx context.Context) ([]Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ListLabels"); err != nil {
		return nil, err
	}
	return append([]Label(nil), r.labels...), nil
}

func (r *MemoryRepo) CreateMilestone(ctx context.Context, title string) (*Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("CreateMilestone", title); err != nil {
		return nil, err
	}
	m := &Milestone{Number: len(r.milestones) + 1, Title: title}
	r.milestones = append(r.milestones, m)
	out := *m
	return &out, nil
}

func (r *MemoryRepo) ListMilestones(ctx context.Context) ([]*Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ListMilestones"); err != nil {
		return nil, err
	}
	out := make([]*Milestone, len(r.milestones))
	for i, m := range r.milestones {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (r *MemoryRepo) AddLabels(ctx context.Context, issue *Issue, labels []Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("AddLabels", issue, labels); err != nil {
		return err
	}
	mi, err := r.lookup(issue)
	if err != nil {
		return err
	}
	for _, l := range labels {
		mi.Labels = append(mi.Labels, l.Name)
	}
	return nil
}

func (r *MemoryRepo) SetMilestone(ctx context.Context, issue *Issue, m *Milestone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("SetMilestone", issue, m); err != nil {
		return err
	}
	mi, err := r.lookup(issue)
	if err != nil {
		return err
	}
	mi.Milestone = m
	return nil
}

func (r *MemoryRepo) Close(ctx context.Context, issue *Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Close", issue); err != nil {
		return err
	}
	mi, err := r.lookup(issue)
	if err != nil {
		return err
	}
	mi.Open = false
	return nil
}

func (r *MemoryRepo) Assign(ctx context.Context, issue *Issue, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("Assign", issue, username); err != nil {
		return err
	}
	mi, err := r.lookup(issue)
	if err != nil {
		return err
	}
	mi.Assignee = username
	return nil
}

func (r *MemoryRepo) IsOpen(ctx context.Context, issue *Issue) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("IsOpen", issue); err != nil {
		return false, err
	}
	mi, err := r.lookup(issue)
	if err != nil {
		return false, err
	}
	return mi.Open, nil
}

// Issues returns a snapshot of all stored issues in creation order.
func (r *MemoryRepo) Issues() []MemoryIssue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MemoryIssue, len(r.issues))
	for i, mi := range r.issues {
		out[i] = *mi
		out[i].Comments = append([]string(nil), mi.Comments...)
		out[i].Labels = append([]string(nil), mi.Labels...)
	}
	return out
}

// Labels returns the labels currently defined.
func (r *MemoryRepo) Labels() []Label {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Label(nil), r.labels...)
}

// Milestones returns the milestones currently defined.
func (r *MemoryRepo) Milestones() []Milestone {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Milestone, len(r.milestones))
	for i, m := range r.milestones {
		out[i] = *m
	}
	return out
}

// Calls returns the names of all operations invoked so far.
func (r *MemoryRepo) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// CountCalls returns how many times op was invoked.
func (r *MemoryRepo) CountCalls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == op {
			n++
		}
	}
	return n
}

var _ Repo = (*MemoryRepo)(nil)
