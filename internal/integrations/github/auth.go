// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/similigh/fb2gh/internal/utils/retry"
)

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL points the client at another API root, such as
// "https://ghe.example.com/api/v3/" for GitHub Enterprise.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return nil
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		c.client.BaseURL = u
		return nil
	}
}

// WithRetry overrides the retry policy for API calls.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) error {
		c.retry = cfg
		c.retry.Retryable = isRetryableError
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// NewClient creates a new GitHub client using the provided token.
// If token is empty, it returns an unauthenticated client.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	var tc *http.Client

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}

	cfg := retry.DefaultConfig()
	cfg.Retryable = isRetryableError

	c := &Client{
		client: github.NewClient(tc),
		retry:  cfg,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
