package record

import (
	"strings"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/value"
)

// NormalizeReference flattens a raw reference record.
//
// Top-level attributes are copied under lower-case keys, skipping the
// embedded field list, the deletion marker and null values. Entries of the
// embedded list ({key, value}) are then written over the top level; an entry
// value of null is kept as a present null. Malformed structure is ignored.
// The input is not modified.
func NormalizeReference(raw map[string]any) *Record {
	r := New()
	if raw == nil {
		return r
	}

	var embedded []any
	for _, k := range sortedKeys(raw) {
		v := raw[k]
		switch strings.ToLower(k) {
		case constants.EmbeddedListKey:
			if list, ok := v.([]any); ok {
				embedded = list
			}
			continue
		case constants.DeletedKey:
			continue
		}
		if v == nil {
			continue
		}
		r.Set(k, value.FromAny(v))
	}

	for _, item := range embedded {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		key, ok := entry["key"].(string)
		if !ok || key == "" {
			continue
		}
		r.Set(key, value.FromAny(entry["value"]))
	}
	return r
}

// NormalizeCandidate flattens a raw candidate record.
//
// Top-level attributes other than "suggestions" (any case) are copied under lower-case
// keys, nulls included. When "suggestions" is a mapping its entries are then
// written over the top level. The input is not modified.
func NormalizeCandidate(raw map[string]any) *Record {
	r := New()
	if raw == nil {
		return r
	}

	var suggestions map[string]any
	for _, k := range sortedKeys(raw) {
		if strings.ToLower(k) == constants.SuggestionsKey {
			suggestions, _ = raw[k].(map[string]any)
			continue
		}
		r.Set(k, value.FromAny(raw[k]))
	}

	for _, k := range sortedKeys(suggestions) {
		r.Set(k, value.FromAny(suggestions[k]))
	}
	return r
}
