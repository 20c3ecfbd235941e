// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-19
// Last Modified: 2026-10-19

package migrate

import (
	"fmt"
	"strings"

	"github.com/similigh/fb2gh/internal/core/target"
	"github.com/similigh/fb2gh/internal/fogbugz"
)

// MigrateAll is the default inclusion predicate.
func MigrateAll(*fogbugz.Case) bool { return true }

// CloseIfClosed is the default close predicate.
func CloseIfClosed(c *fogbugz.Case) bool { return c.Closed() }

// CategoryLabel is the default labeler: one label named after the case
// category. Cases without a category get no label.
func CategoryLabel(c *fogbugz.Case) []target.Label {
	if c.Category == "" {
		return nil
	}
	return []target.Label{target.NewLabel(c.Category)}
}

// FieldLabeler returns a labeler that emits one label per non-empty case
// field among "category", "priority" and "status", colored color.
func FieldLabeler(fields []string, color string) (func(*fogbugz.Case) []target.Label, error) {
	if color == "" {
		color = target.DefaultLabelColor
	}
	color = strings.TrimPrefix(color, "#")

	getters := make([]func(*fogbugz.Case) string, 0, len(fields))
	for _, f := range fields {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "category":
			getters = append(getters, func(c *fogbugz.Case) string { return c.Category })
		case "priority":
			getters = append(getters, func(c *fogbugz.Case) string { return c.Priority })
		case "status":
			getters = append(getters, func(c *fogbugz.Case) string { return c.Status })
		default:
			return nil, fmt.Errorf("unknown label field: %q", f)
		}
	}

	return func(c *fogbugz.Case) []target.Label {
		var labels []target.Label
		for _, get := range getters {
			if v := strings.TrimSpace(get(c)); v != "" {
				labels = append(labels, target.Label{Name: v, Color: color})
			}
		}
		return labels
	}, nil
}

// CloseMode parses a close policy: "closed" (default), "always" or "never".
func CloseMode(mode string) (func(*fogbugz.Case) bool, error) {
	switch strings.ToLower(mode) {
	case "", "closed":
		return CloseIfClosed, nil
	case "always":
		return func(*fogbugz.Case) bool { return true }, nil
	case "never":
		return func(*fogbugz.Case) bool { return false }, nil
	default:
		return nil, fmt.Errorf("unknown close policy: %q", mode)
	}
}

// Filter selects cases by state, category and id. All set conditions must
// hold.
type Filter struct {
	OpenOnly   bool
	Categories []string
	ExcludeIDs []int
}

// Predicate compiles the filter into an inclusion predicate.
func (f Filter) Predicate() func(*fogbugz.Case) bool {
	categories := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		categories[strings.ToLower(c)] = true
	}
	excluded := make(map[int]bool, len(f.ExcludeIDs))
	for _, id := range f.ExcludeIDs {
		excluded[id] = true
	}

	return func(c *fogbugz.Case) bool {
		if f.OpenOnly && c.Closed() {
			return false
		}
		if len(categories) > 0 && !categories[strings.ToLower(c.Category)] {
			return false
		}
		return !excluded[c.ID]
	}
}

// AllOf combines inclusion predicates with AND. Nil predicates are ignored.
func AllOf(preds ...func(*fogbugz.Case) bool) func(*fogbugz.Case) bool {
	return func(c *fogbugz.Case) bool {
		for _, p := range preds {
			if p != nil && !p(c) {
				return false
			}
		}
		return true
	}
}

// ContinueOnError is an error handler that records the failure and lets
// the run proceed with the next case.
func ContinueOnError(*CaseError) error { return nil }

// AbortOnError is the default error handler: the run stops at the first
// failed case.
func AbortOnError(err *CaseError) error { return err }
