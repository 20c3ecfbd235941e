// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package state keeps the migration ledger: which FogBugz case became which
// GitHub issue. The ledger lets an interrupted migration resume without
// creating duplicate issues.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

const (
	// DefaultStateBranch is the branch used by the GitHub ledger.
	DefaultStateBranch = "fb2gh-state"

	// MigratedDir is the directory holding one entry file per case.
	MigratedDir = "migrated"

	// GitHubLedgerPrefix selects the GitHub ledger in a ledger location.
	GitHubLedgerPrefix = "github:"
)

// Entry records one migrated case.
type Entry struct {
	CaseID      int       `json:"case_id"`
	Repo        string    `json:"repo,omitempty"`
	IssueNumber int       `json:"issue_number"`
	IssueURL    string    `json:"issue_url,omitempty"`
	MigratedAt  time.Time `json:"migrated_at"`
}

// Ledger defines the interface for ledger storage.
type Ledger interface {
	// Get returns the entry for a case, or nil, nil if it was never migrated.
	Get(ctx context.Context, caseID int) (*Entry, error)

	// Record stores an entry, replacing any previous one for the same case.
	Record(ctx context.Context, entry *Entry) error

	// List returns all entries ordered by case id.
	List(ctx context.Context) ([]*Entry, error)
}

// entryPath returns the path of an entry file in the GitHub ledger.
func entryPath(caseID int) string {
	return fmt.Sprintf("%s/%d.json", MigratedDir, caseID)
}

// MarshalEntry serializes an entry to JSON.
func MarshalEntry(entry *Entry) ([]byte, error) {
	return json.MarshalIndent(entry, "", "  ")
}

// UnmarshalEntry deserializes an entry from JSON.
func UnmarshalEntry(data []byte) (*Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CaseID < entries[j].CaseID
	})
}

// Recorder returns a post-migration hook that writes each migrated case to l.
func Recorder(ctx context.Context, l Ledger, repo string) func(*fogbugz.Case, *target.Issue) error {
	return func(c *fogbugz.Case, issue *target.Issue) error {
		return l.Record(ctx, &Entry{
			CaseID:      c.ID,
			Repo:        repo,
			IssueNumber: issue.Number,
			IssueURL:    issue.URL,
			MigratedAt:  time.Now().UTC(),
		})
	}
}

// NotMigrated returns an inclusion predicate that rejects cases already in
// the ledger. The ledger is read once, up front.
func NotMigrated(ctx context.Context, l Ledger) (func(*fogbugz.Case) bool, error) {
	entries, err := l.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	done := make(map[int]bool, len(entries))
	for _, e := range entries {
		done[e.CaseID] = true
	}
	return func(c *fogbugz.Case) bool {
		return !done[c.ID]
	}, nil
}

// Open resolves a ledger location. "github:<branch>" stores entries in the
// target repository on that branch (DefaultStateBranch when empty); anything
// else is a local JSON file path.
func Open(location, token, owner, repo string) (Ledger, error) {
	if branch, ok := strings.CutPrefix(location, GitHubLedgerPrefix); ok {
		if owner == "" || repo == "" {
			return nil, fmt.Errorf("github ledger requires a target repository")
		}
		m := NewGitHubLedger(token, owner, repo)
		if branch != "" {
			m = m.WithBranch(branch)
		}
		return m, nil
	}
	return OpenFile(location)
}
