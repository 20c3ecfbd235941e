// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package pipeline provides the per-case pipeline engine for fb2gh.
// It defines the Step interface and Context structure used by all pipeline steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., case excluded).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic.
	// It should return ErrSkipPipeline to stop the pipeline gracefully,
	// or any other error to indicate failure.
	Run(ctx *Context) error
}

// StepError records which step failed for a case.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step '%s' failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	CaseID           int
	Skipped          bool
	SkipReason       string
	IssueNumber      int
	IssueURL         string
	Labels           []string
	Milestone        string
	CommentsPosted   int
	Closed           bool
	Assignee         string
	LabelsCreated    int
	MilestoneCreated bool
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for the case's API calls.
	Ctx context.Context

	// Case is the FogBugz case being migrated. Steps must not modify it.
	Case *fogbugz.Case

	// Issue is set once the GitHub issue has been created.
	Issue *target.Issue

	// Labels are the labels resolved for the case.
	Labels []target.Label

	// Milestone is the milestone resolved for the case.
	Milestone *target.Milestone

	// Result accumulates the processing results.
	Result *Result
}

// NewContext creates a new pipeline context for a case.
func NewContext(ctx context.Context, c *fogbugz.Case) *Context {
	return &Context{
		Ctx:    ctx,
		Case:   c,
		Result: &Result{CaseID: c.ID},
	}
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order.
// Stops on the first error (unless it's ErrSkipPipeline, which is graceful).
// Failures are returned as *StepError.
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				// Graceful early exit
				return nil
			}
			return &StepError{Step: step.Name(), Err: err}
		}
	}
	return nil
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
