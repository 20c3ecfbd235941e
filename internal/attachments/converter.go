// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

// Package attachments turns FogBugz attachment references into URLs that can
// be embedded in GitHub issue text.
package attachments

import (
	"context"

	"github.com/similigh/fb2gh/internal/fogbugz"
)

// Source resolves an attachment to its absolute download URL on the
// FogBugz instance that owns it. *fogbugz.Client implements it.
type Source interface {
	AttachmentURL(a fogbugz.Attachment) string
}

// Converter maps an attachment to a URL usable on the target. It never fails:
// implementations fall back to some URL rather than returning an error.
type Converter interface {
	Convert(ctx context.Context, src Source, a fogbugz.Attachment) string
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, src Source, a fogbugz.Attachment) string

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, src Source, a fogbugz.Attachment) string {
	return f(ctx, src, a)
}

// PassThrough links straight to the FogBugz download URL.
type PassThrough struct{}

// Convert returns the source URL unchanged.
func (PassThrough) Convert(_ context.Context, src Source, a fogbugz.Attachment) string {
	return src.AttachmentURL(a)
}
