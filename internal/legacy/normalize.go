// Package legacy decodes list-valued columns that were persisted in several formats over
// the product's lifetime: JSON arrays, JSON-encoded strings and comma/newline delimited
// text. Nothing in here returns an error; the worst case is an empty result.
package legacy

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var errTrailingData = errors.New("trailing data after JSON value")

// NormalizeList decodes a scope-like field into an ordered list of strings.
func NormalizeList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		return coerceStrings(v)
	case *string:
		if v == nil {
			return []string{}
		}
		return normalizeText(*v, true)
	case string:
		return normalizeText(v, true)
	case []byte:
		return normalizeText(string(v), true)
	case json.RawMessage:
		return normalizeText(string(v), true)
	default:
		return []string{}
	}
}

func normalizeText(s string, unwrap bool) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	if decoded, err := decodeJSON(s); err == nil {
		switch d := decoded.(type) {
		case []any:
			return coerceStrings(d)
		case string:
			// double-encoded: the column held a JSON string wrapping the real value
			if unwrap {
				return normalizeText(d, false)
			}
		}
	}
	return splitDelimited(s)
}

func splitDelimited(s string) []string {
	parts := strings.Split(strings.ReplaceAll(s, "\n", ","), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func coerceStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
		case string:
			out = append(out, v)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out = append(out, string(b))
		}
	}
	return out
}

// NormalizeStructured decodes a JSON-array column whose elements may be objects or bare
// strings. ok is false when raw is present but is not a JSON list; absent or blank input
// yields nil, true.
func NormalizeStructured(raw any) (items []any, ok bool) {
	var text string
	switch v := raw.(type) {
	case nil:
		return nil, true
	case []any:
		return v, true
	case []map[string]any:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return items, true
	case *string:
		if v == nil {
			return nil, true
		}
		text = *v
	case string:
		text = v
	case []byte:
		text = string(v)
	case json.RawMessage:
		text = string(v)
	default:
		return nil, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, true
	}
	decoded, err := decodeJSON(text)
	if err != nil {
		return nil, false
	}
	list, isList := decoded.([]any)
	if !isList {
		return nil, false
	}
	return list, true
}

// NormalizeReferences decodes a references column: a JSON array yields its elements, a
// JSON string or undecodable text yields a single element.
func NormalizeReferences(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string, []any:
		return NormalizeList(v)
	case *string:
		if v == nil {
			return []string{}
		}
		return NormalizeReferences(*v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []string{}
		}
		if decoded, err := decodeJSON(s); err == nil {
			switch d := decoded.(type) {
			case []any:
				return coerceStrings(d)
			case string:
				if d == "" {
					return []string{}
				}
				return []string{d}
			}
		}
		return []string{s}
	default:
		return []string{}
	}
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number so that
// re-encoded ids keep every digit.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}
