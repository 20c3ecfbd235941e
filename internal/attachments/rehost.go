// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package attachments

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/fogbugz"
	"github.com/similigh/fb2gh/internal/utils/retry"
)

// DefaultSupportedTypes are the extensions GitHub accepts as issue
// attachments. Anything else is zipped before upload.
var DefaultSupportedTypes = []string{"png", "gif", "jpg", "docx", "pptx", "xlsx", "txt", "pdf", "zip", "gz"}

// DefaultMaxSize is the largest attachment that will be re-hosted.
const DefaultMaxSize = 25 << 20

// Store persists a file and returns a public URL for it.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// RehostOptions configures a Rehoster. Zero values select the defaults.
type RehostOptions struct {
	MaxSize        int64
	SupportedTypes []string
	Retry          retry.Config
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// Rehoster downloads FogBugz attachments and uploads them to a Store. On
// any failure it falls back to the FogBugz URL.
type Rehoster struct {
	store      Store
	maxSize    int64
	supported  map[string]bool
	retry      retry.Config
	httpClient *http.Client
	log        *zap.Logger
}

// NewRehoster creates a re-hosting converter backed by store.
func NewRehoster(store Store, opts RehostOptions) *Rehoster {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if len(opts.SupportedTypes) == 0 {
		opts.SupportedTypes = DefaultSupportedTypes
	}
	if opts.Retry.MaxRetries == 0 && opts.Retry.BaseDelay == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 100 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	supported := make(map[string]bool, len(opts.SupportedTypes))
	for _, ext := range opts.SupportedTypes {
		supported[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	return &Rehoster{
		store:      store,
		maxSize:    opts.MaxSize,
		supported:  supported,
		retry:      opts.Retry,
		httpClient: opts.HTTPClient,
		log:        opts.Logger,
	}
}

// Convert re-hosts the attachment and returns its new URL.
func (r *Rehoster) Convert(ctx context.Context, src Source, a fogbugz.Attachment) string {
	sourceURL := src.AttachmentURL(a)

	url, err := r.rehost(ctx, sourceURL, a)
	if err != nil {
		r.log.Warn("Falling back to FogBugz attachment URL",
			zap.Int("case", a.CaseID),
			zap.String("file", a.Filename),
			zap.Error(err))
		return sourceURL
	}

	r.log.Info("Re-hosted attachment",
		zap.Int("case", a.CaseID),
		zap.String("file", a.Filename),
		zap.String("url", url))
	return url
}

func (r *Rehoster) rehost(ctx context.Context, sourceURL string, a fogbugz.Attachment) (string, error) {
	data, err := r.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	name := safeName(a.Filename)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	contentType := http.DetectContentType(data)

	if !r.supported[ext] {
		data, err = zipFile(name, data)
		if err != nil {
			return "", fmt.Errorf("failed to zip %s: %w", name, err)
		}
		name += ".zip"
		contentType = "application/zip"
	}

	key := fmt.Sprintf("%d/%d/%s", a.CaseID, a.EventID, name)
	return retry.Do(ctx, r.retry, "upload "+key, func() (string, error) {
		return r.store.Put(ctx, key, data, contentType)
	})
}

// download fetches url, refusing bodies larger than the configured limit.
func (r *Rehoster) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > r.maxSize {
		return nil, fmt.Errorf("attachment is %d bytes, limit is %d", resp.ContentLength, r.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("attachment exceeds limit of %d bytes", r.maxSize)
	}
	return data, nil
}

// safeName reduces a filename to a single path segment.
func safeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return "attachment"
	}
	return name
}

var _ Converter = (*Rehoster)(nil)
