// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package fogbugz

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// searchColumns are the case fields requested from cmd=search.
var searchColumns = []string{
	"ixBugParent", "fOpen", "sTitle", "sPersonAssignedTo", "sStatus", "ixBugOriginal",
	"sPriority", "ixFixFor", "sFixFor", "sCategory", "events", "sCase",
}

// APIError is an error payload reported by the FogBugz server.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fogbugz error %d: %s", e.Code, e.Message)
}

// response mirrors the <response> root element of every API reply.
type response struct {
	XMLName xml.Name `xml:"response"`
	Error   *struct {
		Code    int    `xml:"code,attr"`
		Message string `xml:",chardata"`
	} `xml:"error"`
	Token      string      `xml:"token"`
	Cases      []Case      `xml:"cases>case"`
	Milestones []Milestone `xml:"fixfors>fixfor"`
}

// Client talks to a single FogBugz instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithInsecureSkipVerify accepts invalid TLS certificates. Only meant for
// self-hosted instances with self-signed certificates.
func WithInsecureSkipVerify() Option {
	return func(c *Client) {
		c.httpClient = &http.Client{
			Timeout: c.httpClient.Timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		}
	}
}

// NewClient creates a client for baseURL authenticated with an API token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    normalize(baseURL),
		token:      token,
		httpClient: &http.Client{Timeout: 100 * time.Second},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logon exchanges an email and password for an API token and returns an
// authenticated client.
func Logon(ctx context.Context, baseURL, email, password string, opts ...Option) (*Client, error) {
	c := NewClient(baseURL, "", opts...)
	params := url.Values{}
	params.Set("email", email)
	params.Set("password", password)

	resp, err := c.do(ctx, "logon", params)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("authentication failed")
	}
	c.token = strings.TrimSpace(resp.Token)
	c.log.Info("Obtained FogBugz API token", zap.String("url", c.baseURL))
	return c, nil
}

// BaseURL returns the normalized instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the API token in use.
func (c *Client) Token() string {
	return c.token
}

// Search runs a FogBugz search query and returns the matching cases with
// their full event history. Cases violating Case.Validate are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]Case, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("cols", strings.Join(searchColumns, ","))

	resp, err := c.do(ctx, "search", params)
	if err != nil {
		return nil, err
	}

	cases := make([]Case, 0, len(resp.Cases))
	for _, fc := range resp.Cases {
		if err := fc.Validate(); err != nil {
			c.log.Warn("Dropping invalid case", zap.Int("case", fc.ID), zap.Error(err))
			continue
		}
		for i := range fc.Events {
			ev := &fc.Events[i]
			for j := range ev.Attachments {
				ev.Attachments[j].CaseID = fc.ID
				ev.Attachments[j].EventID = ev.ID
			}
		}
		cases = append(cases, fc)
	}

	c.log.Info("Search completed", zap.String("query", query), zap.Int("cases", len(cases)))
	return cases, nil
}

// ListMilestones returns every milestone defined on the instance.
func (c *Client) ListMilestones(ctx context.Context) ([]Milestone, error) {
	resp, err := c.do(ctx, "listFixFors", nil)
	if err != nil {
		return nil, err
	}
	return resp.Milestones, nil
}

// AttachmentURL returns the absolute, token-authenticated download URL.
func (c *Client) AttachmentURL(a Attachment) string {
	return c.baseURL + "/" + html.UnescapeString(a.URL) + "&token=" + c.token
}

// do performs an API command and decodes the XML reply.
func (c *Client) do(ctx context.Context, cmd string, params url.Values) (*response, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("cmd", cmd)
	if cmd != "logon" {
		q.Set("token", c.token)
	}

	endpoint := c.baseURL + "/api.asp?" + q.Encode()
	c.log.Debug("FogBugz request", zap.String("cmd", cmd))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fogbugz %s request failed: %w", cmd, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("fogbugz %s returned status %d: %s", cmd, resp.StatusCode, string(body))
	}

	var out response
	if err := xml.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse fogbugz %s response: %w", cmd, err)
	}
	if out.Error != nil {
		return nil, &APIError{Code: out.Error.Code, Message: strings.TrimSpace(out.Error.Message)}
	}
	return &out, nil
}

// normalize strips trailing slashes and a trailing "default.asp".
func normalize(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	baseURL = strings.TrimSuffix(baseURL, "default.asp")
	return strings.TrimRight(baseURL, "/")
}
