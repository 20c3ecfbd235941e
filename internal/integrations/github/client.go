// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package github implements the migration target on top of the GitHub
// REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/utils/retry"
)

// Client wraps the GitHub API client.
type Client struct {
	client *github.Client
	retry  retry.Config
	log    *zap.Logger
}

// GetFileContent fetches a file from a repository at ref (default branch
// when ref is empty).
func (c *Client) GetFileContent(ctx context.Context, org, repo, path, ref string) ([]byte, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	file, err := retry.Do(ctx, c.retry, "get contents "+path, func() (*github.RepositoryContent, error) {
		fc, _, _, err := c.client.Repositories.GetContents(ctx, org, repo, path, opts)
		return fc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s/%s: %w", org, repo, path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// isRetryableError reports whether err is a transient GitHub API error:
// primary or secondary rate limiting, or a 5xx response.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
	}
	return false
}

// isAlreadyExists reports a 422 validation error with code already_exists.
func isAlreadyExists(err error) bool {
	var respErr *github.ErrorResponse
	if !errors.As(err, &respErr) || respErr.Response == nil {
		return false
	}
	if respErr.Response.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	for _, e := range respErr.Errors {
		if e.Code == "already_exists" {
			return true
		}
	}
	return false
}
