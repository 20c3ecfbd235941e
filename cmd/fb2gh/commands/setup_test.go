package commands

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/attachments"
	"github.com/similigh/fb2gh/internal/core/config"
	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/migrate"
)

func TestBuildOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := config.Default()
		opts, err := buildOptions(c, "")
		if err != nil {
			t.Fatalf("buildOptions() error = %v", err)
		}
		if opts.PostDelay != 100*time.Millisecond {
			t.Errorf("PostDelay = %v", opts.PostDelay)
		}
		if opts.Workflow != "full" || opts.Steps != nil {
			t.Errorf("Workflow = %q, Steps = %v", opts.Workflow, opts.Steps)
		}
		if opts.Location != time.UTC {
			t.Errorf("Location = %v", opts.Location)
		}
		if opts.OnError(&migrate.CaseError{CaseID: 1}) == nil {
			t.Error("default error handler should abort")
		}

		labels := opts.Labeler(&fogbugz.Case{Category: "Bug"})
		if len(labels) != 1 || labels[0].Name != "Bug" {
			t.Errorf("labels = %+v", labels)
		}
		if !opts.CloseIf(&fogbugz.Case{Open: false}) || opts.CloseIf(&fogbugz.Case{Open: true}) {
			t.Error("close policy should follow the case state")
		}
	})

	t.Run("workflow override clears steps", func(t *testing.T) {
		c := config.Default()
		c.Migration.Steps = []string{"gatekeeper", "issue_creator"}
		opts, err := buildOptions(c, "issues-only")
		if err != nil {
			t.Fatalf("buildOptions() error = %v", err)
		}
		if opts.Workflow != "issues-only" || opts.Steps != nil {
			t.Errorf("Workflow = %q, Steps = %v", opts.Workflow, opts.Steps)
		}
	})

	t.Run("custom steps kept", func(t *testing.T) {
		c := config.Default()
		c.Migration.Steps = []string{"issue_creator"}
		opts, err := buildOptions(c, "")
		if err != nil {
			t.Fatalf("buildOptions() error = %v", err)
		}
		if len(opts.Steps) != 1 {
			t.Errorf("Steps = %v", opts.Steps)
		}
	})

	t.Run("filters and username map", func(t *testing.T) {
		c := config.Default()
		c.Migration.Include.OpenOnly = true
		c.Migration.Include.ExcludeIDs = []int{3}
		c.Migration.UsernameMap = map[string]string{"Alice": "alice-gh"}
		c.Migration.ContinueOnError = true
		opts, err := buildOptions(c, "")
		if err != nil {
			t.Fatalf("buildOptions() error = %v", err)
		}
		if opts.MigrateIf(&fogbugz.Case{ID: 1, Open: false}) {
			t.Error("closed case should be filtered")
		}
		if opts.MigrateIf(&fogbugz.Case{ID: 3, Open: true}) {
			t.Error("excluded case should be filtered")
		}
		if !opts.MigrateIf(&fogbugz.Case{ID: 4, Open: true}) {
			t.Error("open case should be included")
		}
		if opts.UsernameMap["Alice"] != "alice-gh" {
			t.Errorf("UsernameMap = %v", opts.UsernameMap)
		}
		if opts.OnError(&migrate.CaseError{CaseID: 1}) != nil {
			t.Error("continue_on_error should keep going")
		}
	})

	errorCases := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"bad label field", func(c *config.Config) { c.Migration.LabelFields = []string{"color"} }},
		{"bad close policy", func(c *config.Config) { c.Migration.CloseIf = "sometimes" }},
		{"bad post delay", func(c *config.Config) { c.Migration.PostDelay = "soon" }},
		{"bad timezone", func(c *config.Config) { c.Migration.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			c := config.Default()
			tt.modify(c)
			if _, err := buildOptions(c, ""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewConverter(t *testing.T) {
	ctx := context.Background()
	l := zap.NewNop()

	t.Run("passthrough", func(t *testing.T) {
		c := config.Default()
		conv, err := newConverter(ctx, c, l)
		if err != nil {
			t.Fatalf("newConverter() error = %v", err)
		}
		if _, ok := conv.(attachments.PassThrough); !ok {
			t.Errorf("converter = %T, want PassThrough", conv)
		}
	})

	t.Run("github", func(t *testing.T) {
		c := config.Default()
		c.Attachments.Mode = "github"
		c.GitHub.Token = "tok"
		c.GitHub.Owner = "o"
		c.GitHub.Repo = "r"
		conv, err := newConverter(ctx, c, l)
		if err != nil {
			t.Fatalf("newConverter() error = %v", err)
		}
		if _, ok := conv.(*attachments.Rehoster); !ok {
			t.Errorf("converter = %T, want *Rehoster", conv)
		}
	})

	t.Run("github without target", func(t *testing.T) {
		c := config.Default()
		c.Attachments.Mode = "github"
		c.GitHub.Owner = ""
		c.GitHub.Repo = ""
		if _, err := newConverter(ctx, c, l); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		c := config.Default()
		c.Attachments.Mode = "ftp"
		if _, err := newConverter(ctx, c, l); err == nil {
			t.Error("expected error")
		}
	})
}

func TestNewFogBugzClient(t *testing.T) {
	ctx := context.Background()
	l := zap.NewNop()

	t.Run("missing url", func(t *testing.T) {
		c := config.Default()
		c.FogBugz.URL = ""
		if _, err := newFogBugzClient(ctx, c, l); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("token", func(t *testing.T) {
		c := config.Default()
		c.FogBugz.URL = "https://example.fogbugz.com/"
		c.FogBugz.Token = "abc"
		fb, err := newFogBugzClient(ctx, c, l)
		if err != nil {
			t.Fatalf("newFogBugzClient() error = %v", err)
		}
		if fb.Token() != "abc" || fb.BaseURL() != "https://example.fogbugz.com" {
			t.Errorf("client = %s %s", fb.BaseURL(), fb.Token())
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		c := config.Default()
		c.FogBugz.URL = "https://example.fogbugz.com"
		c.FogBugz.Token = ""
		if _, err := newFogBugzClient(ctx, c, l); err == nil {
			t.Error("expected error")
		}
	})
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(1234567 * time.Microsecond); got != "1.235s" {
		t.Errorf("formatDuration() = %q", got)
	}
}
