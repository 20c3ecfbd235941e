// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package attachments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// DefaultAttachmentBranch is the branch attachments are committed to.
const DefaultAttachmentBranch = "fb2gh-attachments"

// GitHubStore commits files to a dedicated branch of a repository through
// the contents API and links to their raw download URLs.
type GitHubStore struct {
	token      string
	owner      string
	repo       string
	branch     string
	dir        string
	baseURL    string
	httpClient *http.Client

	branchOnce sync.Once
	branchErr  error
}

// NewGitHubStore creates a store writing to owner/repo.
func NewGitHubStore(token, owner, repo string) *GitHubStore {
	return &GitHubStore{
		token:      token,
		owner:      owner,
		repo:       repo,
		branch:     DefaultAttachmentBranch,
		dir:        "attachments",
		baseURL:    "https://api.github.com",
		httpClient: &http.Client{},
	}
}

// WithBranch sets a custom branch name.
func (s *GitHubStore) WithBranch(branch string) *GitHubStore {
	if branch != "" {
		s.branch = branch
	}
	return s
}

// WithDir sets the directory files are committed under.
func (s *GitHubStore) WithDir(dir string) *GitHubStore {
	s.dir = strings.Trim(dir, "/")
	return s
}

// WithBaseURL points the store at a GitHub Enterprise or test API root.
func (s *GitHubStore) WithBaseURL(baseURL string) *GitHubStore {
	if baseURL != "" {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
	return s
}

// Put commits data at key and returns its download URL.
func (s *GitHubStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	s.branchOnce.Do(func() { s.branchErr = s.ensureBranch(ctx) })
	if s.branchErr != nil {
		return "", s.branchErr
	}

	filePath := key
	if s.dir != "" {
		filePath = s.dir + "/" + key
	}

	payload := map[string]interface{}{
		"message": fmt.Sprintf("Add attachment %s", key),
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  s.branch,
	}
	if sha := s.getFileSHA(ctx, filePath); sha != "" {
		payload["sha"] = sha
	}

	var result struct {
		Content struct {
			DownloadURL string `json:"download_url"`
		} `json:"content"`
	}
	status, err := s.doJSON(ctx, http.MethodPut, s.repoURL("/contents/"+escapePath(filePath)), payload, &result)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return "", fmt.Errorf("GitHub API error: %d", status)
	}
	if result.Content.DownloadURL == "" {
		return "", fmt.Errorf("GitHub API returned no download URL for %s", filePath)
	}
	return result.Content.DownloadURL, nil
}

// ensureBranch creates the attachment branch from the default branch head
// if it does not exist yet.
func (s *GitHubStore) ensureBranch(ctx context.Context) error {
	status, err := s.doJSON(ctx, http.MethodGet, s.repoURL("/branches/"+escapePath(s.branch)), nil, nil)
	if err != nil && status != http.StatusNotFound {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	var repo struct {
		DefaultBranch string `json:"default_branch"`
	}
	if _, err := s.doJSON(ctx, http.MethodGet, s.repoURL(""), nil, &repo); err != nil {
		return fmt.Errorf("failed to read repository: %w", err)
	}

	var ref struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	if _, err := s.doJSON(ctx, http.MethodGet, s.repoURL("/git/ref/heads/"+escapePath(repo.DefaultBranch)), nil, &ref); err != nil {
		return fmt.Errorf("failed to read %s head: %w", repo.DefaultBranch, err)
	}

	payload := map[string]string{
		"ref": "refs/heads/" + s.branch,
		"sha": ref.Object.SHA,
	}
	if _, err := s.doJSON(ctx, http.MethodPost, s.repoURL("/git/refs"), payload, nil); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", s.branch, err)
	}
	return nil
}

// getFileSHA retrieves the SHA of an existing file, or "" if absent.
func (s *GitHubStore) getFileSHA(ctx context.Context, filePath string) string {
	var result struct {
		SHA string `json:"sha"`
	}
	endpoint := s.repoURL("/contents/"+escapePath(filePath)) + "?ref=" + url.QueryEscape(s.branch)
	if _, err := s.doJSON(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return ""
	}
	return result.SHA
}

func (s *GitHubStore) repoURL(suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", s.baseURL, s.owner, s.repo, suffix)
}

// doJSON sends an optional JSON payload and decodes a 2xx reply into out.
// Non-2xx replies return the status code alongside an error.
func (s *GitHubStore) doJSON(ctx context.Context, method, endpoint string, payload, out interface{}) (int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, err
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("GitHub API error: %d - %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

// setHeaders sets the required headers for GitHub API requests.
func (s *GitHubStore) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Content-Type", "application/json")
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
