// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/attachments"
	"github.com/similigh/fb2gh/internal/core/config"
	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/integrations/github"
	"github.com/similigh/fb2gh/internal/migrate"
	"github.com/similigh/fb2gh/internal/utils/retry"
)

// newFogBugzClient returns a client authenticated with the configured
// token, or logs on with email and password when no token is set.
func newFogBugzClient(ctx context.Context, c *config.Config, l *zap.Logger) (*fogbugz.Client, error) {
	if c.FogBugz.URL == "" {
		return nil, errors.New("fogbugz.url is required")
	}

	opts := []fogbugz.Option{fogbugz.WithLogger(l)}
	if c.FogBugz.InsecureSkipVerify {
		opts = append(opts, fogbugz.WithInsecureSkipVerify())
	}

	if c.FogBugz.Token != "" {
		return fogbugz.NewClient(c.FogBugz.URL, c.FogBugz.Token, opts...), nil
	}
	if c.FogBugz.Email == "" || c.FogBugz.Password == "" {
		return nil, errors.New("fogbugz token (FOGBUGZ_TOKEN) or email and password are required")
	}
	return fogbugz.Logon(ctx, c.FogBugz.URL, c.FogBugz.Email, c.FogBugz.Password, opts...)
}

// newGitHubClient returns a GitHub client for the configured target.
func newGitHubClient(ctx context.Context, c *config.Config, l *zap.Logger) (*github.Client, error) {
	if c.GitHub.Token == "" {
		return nil, errors.New("github token (GITHUB_TOKEN) is required")
	}
	return github.NewClient(ctx, c.GitHub.Token,
		github.WithBaseURL(c.GitHub.BaseURL),
		github.WithLogger(l),
	)
}

// newConverter builds the attachment converter for attachments.mode.
func newConverter(ctx context.Context, c *config.Config, l *zap.Logger) (attachments.Converter, error) {
	a := c.Attachments

	var store attachments.Store
	switch a.Mode {
	case "", "passthrough":
		return attachments.PassThrough{}, nil
	case "github":
		if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
			return nil, errors.New("github attachment store requires github.owner and github.repo")
		}
		store = attachments.NewGitHubStore(c.GitHub.Token, c.GitHub.Owner, c.GitHub.Repo).
			WithBranch(a.GitHub.Branch).
			WithDir(a.GitHub.Path).
			WithBaseURL(c.GitHub.BaseURL)
	case "s3":
		s3Store, err := attachments.NewS3StoreFromEnv(ctx, a.S3.Bucket, a.S3.Region, a.S3.Prefix, a.S3.PublicURL)
		if err != nil {
			return nil, err
		}
		store = s3Store
	default:
		return nil, fmt.Errorf("unknown attachments mode: %s", a.Mode)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = a.MaxRetries
	return attachments.NewRehoster(store, attachments.RehostOptions{
		MaxSize:        int64(a.MaxSizeMB) << 20,
		SupportedTypes: a.SupportedTypes,
		Retry:          retryCfg,
		Logger:         l,
	}), nil
}

// buildOptions translates the configuration into engine options. Hooks,
// error handling and the converter are wired by the caller.
func buildOptions(c *config.Config, workflowOverride string) (migrate.Options, error) {
	m := c.Migration
	opts := migrate.DefaultOptions()

	labeler, err := migrate.FieldLabeler(m.LabelFields, m.LabelColor)
	if err != nil {
		return opts, err
	}
	opts.Labeler = labeler

	closeIf, err := migrate.CloseMode(m.CloseIf)
	if err != nil {
		return opts, err
	}
	opts.CloseIf = closeIf

	opts.MigrateIf = migrate.Filter{
		OpenOnly:   m.Include.OpenOnly,
		Categories: m.Include.Categories,
		ExcludeIDs: m.Include.ExcludeIDs,
	}.Predicate()

	if m.UsernameMap != nil {
		opts.UsernameMap = m.UsernameMap
	}

	delay, err := c.PostDelay()
	if err != nil {
		return opts, err
	}
	opts.PostDelay = delay

	loc, err := c.Location()
	if err != nil {
		return opts, err
	}
	opts.Location = loc
	if m.DateFormat != "" {
		opts.DateLayout = m.DateFormat
	}
	if len(m.ImageExtensions) > 0 {
		opts.ImageExtensions = m.ImageExtensions
	}

	opts.Workflow = m.Workflow
	opts.Steps = m.Steps
	if workflowOverride != "" {
		opts.Workflow = workflowOverride
		opts.Steps = nil
	}

	if m.ContinueOnError {
		opts.OnError = migrate.ContinueOnError
	}
	return opts, nil
}

// formatDuration rounds a duration for display.
func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
