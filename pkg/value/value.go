// Package value implements the tagged value variant compared by the
// reconciliation engine: null, bool, number, string, sequence and mapping.
//
// Values are immutable once built. Decoded JSON enters through FromAny or
// Decode, and the string side of the comparison cascade goes through Render
// and Parse.
package value

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

// Value kinds.
const (
	Null Kind = iota
	Bool
	Number
	String
	Sequence
	Mapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a JSON-compatible datum. The zero Value is null.
type Value struct {
	kind  Kind
	b     bool
	text  string // string contents or the literal number text
	items []Value
	pairs map[string]Value
}

// NullValue returns the null value.
func NullValue() Value { return Value{} }

// BoolOf wraps a boolean.
func BoolOf(b bool) Value { return Value{kind: Bool, b: b} }

// NumberOf wraps a JSON number, keeping its literal text.
func NumberOf(n json.Number) Value { return Value{kind: Number, text: n.String()} }

// StringOf wraps a string.
func StringOf(s string) Value { return Value{kind: String, text: s} }

// SequenceOf builds an ordered sequence.
func SequenceOf(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: Sequence, items: cp}
}

// MappingOf builds a mapping from m. The map is copied.
func MappingOf(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: Mapping, pairs: cp}
}

// FromAny converts a decoded JSON structure (as produced by encoding/json,
// with or without UseNumber) into a Value. Unknown scalar types become
// strings using their default formatting.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return NullValue()
	case Value:
		return t
	case bool:
		return BoolOf(t)
	case json.Number:
		return NumberOf(t)
	case float64:
		return Value{kind: Number, text: strconv.FormatFloat(t, 'f', -1, 64)}
	case float32:
		return Value{kind: Number, text: strconv.FormatFloat(float64(t), 'f', -1, 32)}
	case int:
		return Value{kind: Number, text: strconv.Itoa(t)}
	case int64:
		return Value{kind: Number, text: strconv.FormatInt(t, 10)}
	case string:
		return StringOf(t)
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return Value{kind: Sequence, items: items}
	case map[string]any:
		pairs := make(map[string]Value, len(t))
		for k, e := range t {
			pairs[k] = FromAny(e)
		}
		return Value{kind: Mapping, pairs: pairs}
	default:
		return StringOf(fmt.Sprint(t))
	}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == Null }

// AsBool returns the boolean and whether v is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// AsString returns the string and whether v is a string.
func (v Value) AsString() (string, bool) { return v.text, v.kind == String }

// AsNumber returns the number and whether v is a number.
func (v Value) AsNumber() (json.Number, bool) { return json.Number(v.text), v.kind == Number }

// Len returns the number of items or pairs; zero for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Sequence:
		return len(v.items)
	case Mapping:
		return len(v.pairs)
	}
	return 0
}

// Items returns the sequence elements. The slice must not be modified.
func (v Value) Items() []Value {
	if v.kind != Sequence {
		return nil
	}
	return v.items
}

// Get returns the mapping entry for key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Mapping {
		return Value{}, false
	}
	e, ok := v.pairs[key]
	return e, ok
}

// Keys returns the mapping keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != Mapping {
		return nil
	}
	keys := make([]string, 0, len(v.pairs))
	for k := range v.pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToAny converts v back into plain Go values suitable for any encoder.
// Numbers come back as json.Number.
func (v Value) ToAny() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		return json.Number(v.text)
	case String:
		return v.text
	case Sequence:
		out := make([]any, len(v.items))
		for i, e := range v.items {
			out[i] = e.ToAny()
		}
		return out
	case Mapping:
		out := make(map[string]any, len(v.pairs))
		for k, e := range v.pairs {
			out[k] = e.ToAny()
		}
		return out
	default:
		return nil
	}
}
