// Package state provides a GitHub API-based implementation of Ledger.
package state

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// GitHubLedger implements Ledger using the GitHub API.
// It reads/writes one file per case on a dedicated branch without local
// checkout, so several machines can share one ledger.
type GitHubLedger struct {
	token      string
	org        string
	repo       string
	branch     string
	baseURL    string
	httpClient *http.Client

	branchOnce sync.Once
	branchErr  error
}

// NewGitHubLedger creates a new GitHub-based ledger.
func NewGitHubLedger(token, org, repo string) *GitHubLedger {
	return &GitHubLedger{
		token:      token,
		org:        org,
		repo:       repo,
		branch:     DefaultStateBranch,
		baseURL:    "https://api.github.com",
		httpClient: &http.Client{},
	}
}

// WithBranch sets a custom state branch name.
func (m *GitHubLedger) WithBranch(branch string) *GitHubLedger {
	m.branch = branch
	return m
}

// WithBaseURL points the ledger at a GitHub Enterprise or test API root.
func (m *GitHubLedger) WithBaseURL(baseURL string) *GitHubLedger {
	if baseURL != "" {
		m.baseURL = strings.TrimRight(baseURL, "/")
	}
	return m
}

// Get retrieves the entry for a case.
func (m *GitHubLedger) Get(ctx context.Context, caseID int) (*Entry, error) {
	data, _, err := m.getFileContent(ctx, entryPath(caseID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return UnmarshalEntry(data)
}

// Record stores an entry.
func (m *GitHubLedger) Record(ctx context.Context, entry *Entry) error {
	m.branchOnce.Do(func() { m.branchErr = m.ensureBranch(ctx) })
	if m.branchErr != nil {
		return m.branchErr
	}

	data, err := MarshalEntry(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return m.putFileContent(ctx, entryPath(entry.CaseID), data,
		fmt.Sprintf("Record case %d as issue #%d", entry.CaseID, entry.IssueNumber))
}

// List lists all entries. A missing branch or directory is an empty ledger.
func (m *GitHubLedger) List(ctx context.Context) ([]*Entry, error) {
	files, err := m.listFiles(ctx, MigratedDir)
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []*Entry
	for _, file := range files {
		name := strings.TrimSuffix(file[strings.LastIndex(file, "/")+1:], ".json")
		if _, err := strconv.Atoi(name); err != nil || !strings.HasSuffix(file, ".json") {
			continue
		}
		data, _, err := m.getFileContent(ctx, file)
		if err != nil {
			return nil, err
		}
		entry, err := UnmarshalEntry(data)
		if err != nil {
			return nil, fmt.Errorf("invalid ledger entry %s: %w", file, err)
		}
		entries = append(entries, entry)
	}

	sortEntries(entries)
	return entries, nil
}

// getFileContent retrieves file content and SHA from the state branch.
func (m *GitHubLedger) getFileContent(ctx context.Context, path string) ([]byte, string, error) {
	var result struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
		SHA      string `json:"sha"`
	}
	if err := m.do(ctx, http.MethodGet, m.contentsURL(path, true), nil, &result); err != nil {
		return nil, "", err
	}

	if result.Encoding != "base64" {
		return nil, "", fmt.Errorf("unexpected encoding: %s", result.Encoding)
	}

	content := strings.ReplaceAll(result.Content, "\n", "")
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, "", err
	}
	return data, result.SHA, nil
}

// putFileContent creates or updates a file in the state branch.
func (m *GitHubLedger) putFileContent(ctx context.Context, path string, content []byte, message string) error {
	// Check if file exists to get SHA
	_, sha, err := m.getFileContent(ctx, path)
	if err != nil && !isNotFoundError(err) {
		return err
	}

	payload := map[string]interface{}{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  m.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	return m.do(ctx, http.MethodPut, m.contentsURL(path, false), payload, nil)
}

// listFiles lists the files directly under a path.
func (m *GitHubLedger) listFiles(ctx context.Context, path string) ([]string, error) {
	var items []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	}
	if err := m.do(ctx, http.MethodGet, m.contentsURL(path, true), nil, &items); err != nil {
		return nil, err
	}

	var files []string
	for _, item := range items {
		if item.Type == "file" {
			files = append(files, item.Path)
		}
	}
	return files, nil
}

// ensureBranch creates the state branch from the default branch head.
func (m *GitHubLedger) ensureBranch(ctx context.Context) error {
	err := m.do(ctx, http.MethodGet, m.repoURL("/branches/"+url.PathEscape(m.branch)), nil, nil)
	if err == nil {
		return nil
	}
	if !isNotFoundError(err) {
		return err
	}

	var repo struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := m.do(ctx, http.MethodGet, m.repoURL(""), nil, &repo); err != nil {
		return fmt.Errorf("failed to read repository: %w", err)
	}
	var ref struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	if err := m.do(ctx, http.MethodGet, m.repoURL("/git/ref/heads/"+url.PathEscape(repo.DefaultBranch)), nil, &ref); err != nil {
		return fmt.Errorf("failed to read %s head: %w", repo.DefaultBranch, err)
	}

	payload := map[string]string{
		"ref": "refs/heads/" + m.branch,
		"sha": ref.Object.SHA,
	}
	if err := m.do(ctx, http.MethodPost, m.repoURL("/git/refs"), payload, nil); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", m.branch, err)
	}
	return nil
}

func (m *GitHubLedger) repoURL(suffix string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", m.baseURL, m.org, m.repo, suffix)
}

func (m *GitHubLedger) contentsURL(path string, withRef bool) string {
	u := m.repoURL("/contents/" + path)
	if withRef {
		u += "?ref=" + url.QueryEscape(m.branch)
	}
	return u
}

// do sends an optional JSON payload and decodes a 2xx reply into out.
func (m *GitHubLedger) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	m.setHeaders(req)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &notFoundError{path: endpoint}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API error: %d - %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// setHeaders sets the required headers for GitHub API requests.
func (m *GitHubLedger) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("Content-Type", "application/json")
}

// notFoundError indicates a file was not found.
type notFoundError struct {
	path string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.path)
}

func isNotFoundError(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

var _ Ledger = (*GitHubLedger)(nil)
