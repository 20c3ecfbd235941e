// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

// Package target defines the contract the migration engine needs from the
// issue tracker it migrates into.
package target

import "context"

// DefaultLabelColor is the hex color used when none is requested.
const DefaultLabelColor = "ffffff"

// Label is a named, colored tag. Color is not part of its identity.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"` // 6 hex digits, no leading '#'
}

// NewLabel returns a label with the default color.
func NewLabel(name string) Label {
	return Label{Name: name, Color: DefaultLabelColor}
}

// Milestone is a target milestone. Number is assigned by the tracker.
type Milestone struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Issue is an issue created on the target tracker.
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	URL    string `json:"url,omitempty"`
}

// Repo is the set of operations the engine performs on the target tracker.
// Implementations report any tracker failure as a plain error.
type Repo interface {
	CreateIssue(ctx context.Context, title, body string) (*Issue, error)
	AddComment(ctx context.Context, issue *Issue, body string) error
	CreateLabel(ctx context.Context, label Label) error
	ListLabels(ctx context.Context) ([]Label, error)
	CreateMilestone(ctx context.Context, title string) (*Milestone, error)
	ListMilestones(ctx context.Context) ([]*Milestone, error)
	AddLabels(ctx context.Context, issue *Issue, labels []Label) error
	// SetMilestone attaches m to the issue; a nil m clears it.
	SetMilestone(ctx context.Context, issue *Issue, m *Milestone) error
	Close(ctx context.Context, issue *Issue) error
	Assign(ctx context.Context, issue *Issue, username string) error
	IsOpen(ctx context.Context, issue *Issue) (bool, error)
}
