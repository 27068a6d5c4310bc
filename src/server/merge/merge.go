// Package merge combines heterogeneous backend responses into one
// LSP-compliant result. Every policy operates on opaque decoded payloads so
// nothing a backend returns is ever reshaped beyond list structure; ordering
// is fixed per method and deduplication keys are composite string keys over
// the fields the policy names.
package merge

import (
	"context"
	"encoding/json"
	"fmt"
)

// IsNull reports whether a raw backend payload carries no result.
func IsNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// Items normalizes one backend payload into a flat item list: a bare array is
// used as-is, a list-wrapper object contributes its items field, a single
// object becomes a one-element list, and null contributes nothing.
func Items(raw json.RawMessage) []interface{} {
	if IsNull(raw) {
		return nil
	}

	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	if items, ok := obj["items"].([]interface{}); ok {
		return items
	}
	return []interface{}{obj}
}

// Concat flattens payloads in the given order with no deduplication. Used for
// document symbols, highlights, folding ranges, selection ranges and code
// actions, where contributions from the two backends are assumed disjoint.
func Concat(raws ...json.RawMessage) []interface{} {
	merged := make([]interface{}, 0)
	for _, raw := range raws {
		merged = append(merged, Items(raw)...)
	}
	return merged
}

// Completions concatenates completion payloads in backend order, unwrapping
// CompletionList wrappers, and deduplicates by (label, kind, detail). A
// missing detail and an empty detail compare equal. First occurrence wins.
func Completions(raws ...json.RawMessage) []interface{} {
	return dedup(Concat(raws...), func(item map[string]interface{}) string {
		return fmt.Sprintf("%s|%v|%s",
			stringField(item, "label"),
			item["kind"],
			stringField(item, "detail"))
	})
}

// Locations concatenates location payloads in backend order and deduplicates
// by (uri, range.start.line, range.start.character). Handles both bare
// Location arrays and single-Location responses.
func Locations(raws ...json.RawMessage) []interface{} {
	return dedup(Concat(raws...), func(item map[string]interface{}) string {
		line, char := rangeStart(item, "range")
		// LocationLink responses carry targetUri/targetRange instead.
		uri := stringField(item, "uri")
		if uri == "" {
			uri = stringField(item, "targetUri")
			line, char = rangeStart(item, "targetRange")
		}
		return fmt.Sprintf("%s|%v|%v", uri, line, char)
	})
}

// WorkspaceSymbols concatenates workspace symbol payloads in backend order and
// deduplicates by (name, kind, location.uri, location start position).
func WorkspaceSymbols(raws ...json.RawMessage) []interface{} {
	return dedup(Concat(raws...), func(item map[string]interface{}) string {
		var uri string
		var line, char interface{}
		if loc, ok := item["location"].(map[string]interface{}); ok {
			uri = stringField(loc, "uri")
			line, char = rangeStart(loc, "range")
		}
		return fmt.Sprintf("%s|%v|%s|%v|%v",
			stringField(item, "name"),
			item["kind"],
			uri, line, char)
	})
}

// Candidate is one ordered backend call in a first-wins chain.
type Candidate struct {
	Backend string
	Call    func(ctx context.Context) (json.RawMessage, error)
}

// FirstNonNull tries candidates in order and returns the first non-null
// result. Each candidate's failure is isolated: an error skips to the next
// candidate and never escapes. Returns null when every candidate fails or
// contributes nothing.
func FirstNonNull(ctx context.Context, candidates []Candidate, onError func(backend string, err error)) json.RawMessage {
	for _, c := range candidates {
		raw, err := c.Call(ctx)
		if err != nil {
			if onError != nil {
				onError(c.Backend, err)
			}
			continue
		}
		if !IsNull(raw) {
			return raw
		}
	}
	return nil
}

// AddsResolution reports whether a resolve response carries information the
// unresolved item lacked: detail, documentation or additional text edits.
func AddsResolution(original, resolved json.RawMessage) bool {
	if IsNull(resolved) {
		return false
	}

	var orig, res map[string]interface{}
	if err := json.Unmarshal(resolved, &res); err != nil {
		return false
	}
	_ = json.Unmarshal(original, &orig)

	for _, field := range []string{"detail", "documentation", "additionalTextEdits"} {
		if res[field] != nil && (orig == nil || orig[field] == nil) {
			return true
		}
	}
	return false
}

// dedup keeps the first occurrence of each key, preserving input order. Items
// that are not objects are kept unconditionally.
func dedup(items []interface{}, key func(map[string]interface{}) string) []interface{} {
	seen := make(map[string]bool, len(items))
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			out = append(out, item)
			continue
		}
		k := key(obj)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

func stringField(m map[string]interface{}, field string) string {
	s, _ := m[field].(string)
	return s
}

func rangeStart(m map[string]interface{}, field string) (interface{}, interface{}) {
	rng, ok := m[field].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	start, ok := rng["start"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	return start["line"], start["character"]
}
