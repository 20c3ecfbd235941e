// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

// Package render formats FogBugz events as GitHub issue bodies and comments.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/similigh/fb2gh/internal/attachments"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

const (
	// SourceLayout is the timestamp format FogBugz reports, always UTC.
	SourceLayout = "2006-01-02T15:04:05Z"

	// DefaultLayout renders timestamps like "6/27/2007 4:37 PM UTC".
	DefaultLayout = "1/2/2006 3:04 PM MST"
)

// DefaultImageExtensions are the extensions rendered as inline images.
var DefaultImageExtensions = []string{"png", "gif", "jpg"}

// ErrTimestamp reports an event timestamp that cannot be parsed.
var ErrTimestamp = errors.New("invalid event timestamp")

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	Layout          string
	Location        *time.Location
	ImageExtensions []string
}

// Renderer turns events into issue text. One instance is owned per engine.
type Renderer struct {
	src       attachments.Source
	converter attachments.Converter
	layout    string
	loc       *time.Location
	images    map[string]bool
}

// New creates a renderer that resolves attachments through converter.
func New(src attachments.Source, converter attachments.Converter, opts Options) *Renderer {
	if converter == nil {
		converter = attachments.PassThrough{}
	}
	if opts.Layout == "" {
		opts.Layout = DefaultLayout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if len(opts.ImageExtensions) == 0 {
		opts.ImageExtensions = DefaultImageExtensions
	}

	images := make(map[string]bool, len(opts.ImageExtensions))
	for _, ext := range opts.ImageExtensions {
		images[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	return &Renderer{
		src:       src,
		converter: converter,
		layout:    opts.Layout,
		loc:       opts.Location,
		images:    images,
	}
}

// Render produces the text block for one event: a bold description and
// timestamp, then the change summary, body and attachment links when present.
func (r *Renderer) Render(ctx context.Context, ev *fogbugz.Event) (string, error) {
	ts, err := r.Timestamp(ev.DateTime)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("<strong>")
	sb.WriteString(ev.Description)
	sb.WriteString("</strong> ")
	sb.WriteString(ts)

	if changes := chomp(ev.Changes); changes != "" {
		sb.WriteString("<br>")
		sb.WriteString(changes)
	}

	if body := ev.Body(); body != "" {
		sb.WriteString("<hr>")
		sb.WriteString(body)
	}

	if len(ev.Attachments) > 0 {
		sb.WriteString("<hr>")
		for _, a := range ev.Attachments {
			url := r.converter.Convert(ctx, r.src, a)
			fmt.Fprintf(&sb, `<a href="%s">`, url)
			if r.IsImage(url) {
				fmt.Fprintf(&sb, `<img src="%s" alt="%s">`, url, a.Filename)
			} else {
				sb.WriteString(a.Filename)
			}
			sb.WriteString("</a><br>")
		}
	}

	return sb.String(), nil
}

// Timestamp re-renders a FogBugz timestamp in the configured layout and zone.
func (r *Renderer) Timestamp(raw string) (string, error) {
	t, err := time.ParseInLocation(SourceLayout, raw, time.UTC)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrTimestamp, raw, err)
	}
	return t.In(r.loc).Format(r.layout), nil
}

// IsImage reports whether url's extension is a configured image extension.
func (r *Renderer) IsImage(url string) bool {
	return r.images[strings.ToLower(extension(url))]
}

// extension returns the text after the last dot of the last path segment.
func extension(s string) string {
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// chomp removes a single trailing line terminator.
func chomp(s string) string {
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "\n"), strings.HasSuffix(s, "\r"):
		return s[:len(s)-1]
	}
	return s
}
