// Package record flattens nested reference and candidate records into
// case-insensitive field maps.
package record

import (
	"sort"
	"strings"

	"github.com/agentstation/fieldeval/pkg/value"
)

// FieldName is a case-insensitive field identifier in canonical lower case.
type FieldName string

// Name canonicalises s into a FieldName.
func Name(s string) FieldName {
	return FieldName(strings.ToLower(s))
}

// String returns the canonical text.
func (f FieldName) String() string { return string(f) }

// HasPrefix reports whether the field starts with prefix, ignoring case.
func (f FieldName) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(f), strings.ToLower(prefix))
}

// FieldSet is a set of field names.
type FieldSet map[FieldName]struct{}

// NewFieldSet builds a set from raw names, canonicalising each.
func NewFieldSet(names ...string) FieldSet {
	s := make(FieldSet, len(names))
	for _, n := range names {
		s.Add(Name(n))
	}
	return s
}

// Add inserts f.
func (s FieldSet) Add(f FieldName) { s[Name(string(f))] = struct{}{} }

// Has reports membership, ignoring case.
func (s FieldSet) Has(f FieldName) bool {
	_, ok := s[Name(string(f))]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s FieldSet) Sorted() []FieldName {
	out := make([]FieldName, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Entry is the result of looking a field up in a Record.
type Entry struct {
	Value   value.Value
	Present bool
}

// Record is a normalized flat field map. A key that is present with a null
// value is still present.
type Record struct {
	fields map[FieldName]value.Value
}

// New returns an empty record.
func New() *Record {
	return &Record{fields: make(map[FieldName]value.Value)}
}

// FromMap builds a record from an already flat map, canonicalising keys.
// Later keys in sorted order win on case-insensitive collision.
func FromMap(m map[string]any) *Record {
	r := New()
	for _, k := range sortedKeys(m) {
		r.Set(k, value.FromAny(m[k]))
	}
	return r
}

// Set writes v under the canonical form of key, overwriting any earlier value.
func (r *Record) Set(key string, v value.Value) {
	r.fields[Name(key)] = v
}

// Lookup returns the entry for f.
func (r *Record) Lookup(f FieldName) Entry {
	if r == nil {
		return Entry{}
	}
	v, ok := r.fields[Name(string(f))]
	return Entry{Value: v, Present: ok}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// IsEmpty reports whether the record holds no fields.
func (r *Record) IsEmpty() bool { return r.Len() == 0 }

// Keys returns the field names in sorted order.
func (r *Record) Keys() []FieldName {
	if r == nil {
		return nil
	}
	out := make([]FieldName, 0, len(r.fields))
	for f := range r.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ToMap returns plain Go values keyed by field name.
func (r *Record) ToMap() map[string]any {
	out := make(map[string]any, r.Len())
	if r == nil {
		return out
	}
	for f, v := range r.fields {
		out[string(f)] = v.ToAny()
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
