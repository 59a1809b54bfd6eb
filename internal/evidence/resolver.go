// Package evidence turns the different generations of evidence references into uniform
// {url, caption} items that renderers can embed directly.
package evidence

import (
	"strings"

	"reportctx/internal/domain"
	"reportctx/internal/legacy"
)

// DefaultCaption is used whenever an item carries no usable caption.
const DefaultCaption = "Evidence"

// Item is one evidence reference in any of its persisted shapes: Stored, LegacyPath or AdHoc.
type Item interface {
	raw() (path, caption string)
}

// Stored is an uploaded evidence row.
type Stored domain.Evidence

// LegacyPath is a bare path or URL from before evidence rows existed.
type LegacyPath string

// AdHoc is a free-form object, usually {"url": ..., "caption": ...}.
type AdHoc map[string]any

func (s Stored) raw() (string, string) { return s.Filepath, domain.Deref(s.Caption) }

func (p LegacyPath) raw() (string, string) { return string(p), "" }

func (m AdHoc) raw() (string, string) {
	path, _ := m["url"].(string)
	caption, _ := m["caption"].(string)
	return path, caption
}

// Resolved is the render-ready form of an evidence item.
type Resolved struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// FromRows wraps evidence rows as items, preserving order.
func FromRows(rows []domain.Evidence) []Item {
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, Stored(r))
	}
	return items
}

// FromLegacy decodes an inline evidence column: strings become LegacyPath, objects become
// AdHoc. Other element shapes and undecodable input are skipped.
func FromLegacy(raw any) []Item {
	list, ok := legacy.NormalizeStructured(raw)
	if !ok {
		// a single bare path predates the JSON encoding
		if s, isStr := raw.(*string); isStr && s != nil && strings.TrimSpace(*s) != "" {
			return []Item{LegacyPath(strings.TrimSpace(*s))}
		}
		if s, isStr := raw.(string); isStr && strings.TrimSpace(s) != "" {
			return []Item{LegacyPath(strings.TrimSpace(s))}
		}
		return nil
	}
	items := make([]Item, 0, len(list))
	for _, el := range list {
		switch v := el.(type) {
		case string:
			items = append(items, LegacyPath(v))
		case map[string]any:
			items = append(items, AdHoc(v))
		}
	}
	return items
}

// Resolve maps every item to a Resolved entry, in order. Relative paths are joined onto
// baseOrigin; absolute http(s) URLs and unrecognized values pass through unchanged.
func Resolve(items []Item, baseOrigin string) []Resolved {
	out := make([]Resolved, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		path, caption := it.raw()
		if caption == "" {
			caption = DefaultCaption
		}
		out = append(out, Resolved{URL: ResolveURL(path, baseOrigin), Caption: caption})
	}
	return out
}

// ResolveURL joins a root-relative path onto baseOrigin with exactly one slash.
func ResolveURL(path, baseOrigin string) string {
	switch {
	case hasHTTPScheme(path):
		return path
	case strings.HasPrefix(path, "/"):
		return strings.TrimRight(baseOrigin, "/") + "/" + strings.TrimLeft(path, "/")
	default:
		return path
	}
}

func hasHTTPScheme(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
