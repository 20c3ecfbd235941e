// Package pipeline provides step registration and preset workflow building.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/core/cache"
	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/render"
)

// Registry holds registered step factories.
// Step factories create Step instances, allowing for dependency injection.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StepFactory
}

// StepFactory is a function that creates a Step.
// It receives dependencies (like clients, config) as parameters.
type StepFactory func(deps *Dependencies) (Step, error)

// Policies are the caller-supplied decisions applied to every case.
type Policies struct {
	// MigrateIf selects the cases to migrate.
	MigrateIf func(c *fogbugz.Case) bool

	// Labels computes the labels to attach to a case's issue.
	Labels func(c *fogbugz.Case) []target.Label

	// CloseIf decides whether the created issue is closed.
	CloseIf func(c *fogbugz.Case) bool

	// UsernameMap maps FogBugz assignee names to GitHub usernames.
	UsernameMap map[string]string

	// AfterMigrate runs once a case has been migrated.
	AfterMigrate func(c *fogbugz.Case, issue *target.Issue) error
}

// Dependencies holds the dependencies that can be injected into steps.
type Dependencies struct {
	Repo     target.Repo
	Resolver *cache.Resolver
	Renderer *render.Renderer
	Policies Policies

	// PostDelay is the pause after each issue or comment write.
	PostDelay time.Duration

	// Sleep performs the pause. Nil uses Sleep.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *zap.Logger
}

// Pause waits for PostDelay. A zero delay never calls Sleep.
func (d *Dependencies) Pause(ctx context.Context) error {
	if d.PostDelay <= 0 {
		return nil
	}
	if d.Sleep != nil {
		return d.Sleep(ctx, d.PostDelay)
	}
	return Sleep(ctx, d.PostDelay)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Log returns the injected logger or a no-op one.
func (d *Dependencies) Log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// NewRegistry creates a new step registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]StepFactory),
	}
}

// Register adds a step factory to the registry.
func (r *Registry) Register(name string, factory StepFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a step factory by name.
func (r *Registry) Get(name string) (StepFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// BuildFromNames creates a pipeline from a list of step names.
func (r *Registry) BuildFromNames(names []string, deps *Dependencies) (*Pipeline, error) {
	var steps []Step
	for _, name := range names {
		factory, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown step: %s", name)
		}
		step, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create step '%s': %w", name, err)
		}
		steps = append(steps, step)
	}
	return New(steps...), nil
}

// Presets defines the built-in workflow presets.
var Presets = map[string][]string{
	// full: every case gets labels, milestone, comments, state and assignee
	"full": {
		"gatekeeper",
		"label_resolver",
		"milestone_resolver",
		"issue_creator",
		"metadata_applier",
		"comment_poster",
		"closer",
		"assigner",
		"post_migrate",
	},

	// issues-only: just the issue and its comment thread
	"issues-only": {
		"gatekeeper",
		"issue_creator",
		"comment_poster",
		"post_migrate",
	},
}

// DefaultWorkflow is the preset used when none is configured.
const DefaultWorkflow = "full"

// GetPreset returns the step names for a preset workflow.
func GetPreset(name string) ([]string, bool) {
	steps, ok := Presets[name]
	return steps, ok
}

// ResolveSteps determines the steps to use based on config.
// Priority: explicit steps > workflow preset > default
func ResolveSteps(explicitSteps []string, workflow string) ([]string, error) {
	if len(explicitSteps) > 0 {
		return explicitSteps, nil
	}
	if workflow != "" {
		preset, ok := GetPreset(workflow)
		if !ok {
			return nil, fmt.Errorf("unknown workflow: %s", workflow)
		}
		return preset, nil
	}
	return Presets[DefaultWorkflow], nil
}
