// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package migrate

import (
	"errors"
	"fmt"
	"time"

	"github.com/similigh/fb2gh/internal/core/pipeline"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

// RunState is the state of a migration run.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateCompleted
	StateAborted
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CaseStatus is the outcome of one case.
type CaseStatus string

const (
	StatusSkipped  CaseStatus = "skipped"
	StatusMigrated CaseStatus = "migrated"
	StatusFailed   CaseStatus = "failed"
)

// CaseError is the structured failure handed to the error handler.
type CaseError struct {
	CaseID int
	Title  string
	Step   string
	Err    error
}

func (e *CaseError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("case %d (%s): step %s: %v", e.CaseID, e.Title, e.Step, e.Err)
	}
	return fmt.Sprintf("case %d (%s): %v", e.CaseID, e.Title, e.Err)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}

func newCaseError(c *fogbugz.Case, err error) *CaseError {
	cerr := &CaseError{CaseID: c.ID, Title: c.Title, Err: err}
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		cerr.Step = stepErr.Step
		cerr.Err = stepErr.Err
	}
	return cerr
}

// Record is the outcome of one case.
type Record struct {
	CaseID      int        `json:"case_id"`
	Title       string     `json:"title"`
	Status      CaseStatus `json:"status"`
	IssueNumber int        `json:"issue_number,omitempty"`
	IssueURL    string     `json:"issue_url,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	Milestone   string     `json:"milestone,omitempty"`
	Comments    int        `json:"comments"`
	Closed      bool       `json:"closed"`
	Assignee    string     `json:"assignee,omitempty"`
	SkipReason  string     `json:"skip_reason,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Report summarises a run.
type Report struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	State             RunState  `json:"state"`
	Interrupted       bool      `json:"interrupted"`
	Migrated          int       `json:"migrated"`
	Skipped           int       `json:"skipped"`
	Failed            int       `json:"failed"`
	LabelsCreated     int       `json:"labels_created"`
	MilestonesCreated int       `json:"milestones_created"`
	Records           []Record  `json:"records"`
}

func (r *Report) add(rec Record) {
	switch rec.Status {
	case StatusMigrated:
		r.Migrated++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
	r.Records = append(r.Records, rec)
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// EventKind identifies a progress event.
type EventKind int

const (
	EventRunStarted EventKind = iota
	EventCaseMigrated
	EventCaseSkipped
	EventCaseFailed
	EventRunInterrupted
	EventRunFinished
)

func (k EventKind) String() string {
	switch k {
	case EventRunStarted:
		return "run_started"
	case EventCaseMigrated:
		return "case_migrated"
	case EventCaseSkipped:
		return "case_skipped"
	case EventCaseFailed:
		return "case_failed"
	case EventRunInterrupted:
		return "run_interrupted"
	case EventRunFinished:
		return "run_finished"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to Options.OnEvent. Case and Record are set for case
// events; Report only for EventRunFinished.
type Event struct {
	Kind   EventKind
	RunID  string
	Case   *fogbugz.Case
	Record Record
	Report *Report
	Err    error
}
