// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// FileLedger keeps the ledger in a single JSON file. The whole file is
// rewritten on every Record.
type FileLedger struct {
	path    string
	mu      sync.Mutex
	entries map[int]*Entry
}

// OpenFile loads the ledger at path. A missing file is an empty ledger.
func OpenFile(path string) (*FileLedger, error) {
	if path == "" {
		return nil, errors.New("ledger path is required")
	}
	l := &FileLedger{
		path:    path,
		entries: make(map[int]*Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if len(data) == 0 {
		return l, nil
	}

	var raw map[string]*Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", path, err)
	}
	for k, e := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid case id %q in ledger", k)
		}
		e.CaseID = id
		l.entries[id] = e
	}
	return l, nil
}

// Path returns the ledger file path.
func (l *FileLedger) Path() string {
	return l.path
}

// Get returns the entry for a case.
func (l *FileLedger) Get(_ context.Context, caseID int) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[caseID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// Record stores an entry and flushes the file.
func (l *FileLedger) Record(_ context.Context, entry *Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *entry
	l.entries[entry.CaseID] = &cp
	return l.flush()
}

// List returns all entries ordered by case id.
func (l *FileLedger) List(_ context.Context) ([]*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		cp := *e
		out = append(out, &cp)
	}
	sortEntries(out)
	return out, nil
}

// flush writes to a temp file and renames it over the ledger.
func (l *FileLedger) flush() error {
	raw := make(map[string]*Entry, len(l.entries))
	for id, e := range l.entries {
		raw[strconv.Itoa(id)] = e
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

var _ Ledger = (*FileLedger)(nil)
