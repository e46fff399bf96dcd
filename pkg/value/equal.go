package value

import (
	"bytes"
	"math/big"
)

// Equal reports deep equality. Numbers compare by numeric value, mappings
// ignore key order, and a bool never equals a number.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case String:
		return a.text == b.text
	case Number:
		return numbersEqual(a.text, b.text)
	case Sequence:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case Mapping:
		if len(a.pairs) != len(b.pairs) {
			return false
		}
		for k, av := range a.pairs {
			bv, ok := b.pairs[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b string) bool {
	if a == b {
		return true
	}
	fa, okA := new(big.Float).SetPrec(256).SetString(a)
	fb, okB := new(big.Float).SetPrec(256).SetString(b)
	if !okA || !okB {
		return false
	}
	return fa.Cmp(fb) == 0
}

// SetKey returns a canonical text identifying v for set membership.
// Values that are Equal have the same key.
func (v Value) SetKey() string {
	var buf bytes.Buffer
	v.writeJSON(&buf, true)
	return buf.String()
}

// Equivalent reports structural JSON equivalence: two mappings are
// equivalent when deep-equal, and two sequences when they hold the same set
// of elements regardless of order or duplicate counts. Any other pairing is
// not equivalent.
func Equivalent(a, b Value) bool {
	switch {
	case a.kind == Mapping && b.kind == Mapping:
		return Equal(a, b)
	case a.kind == Sequence && b.kind == Sequence:
		return sameSet(a.items, b.items)
	default:
		return false
	}
}

func sameSet(a, b []Value) bool {
	sa := keySet(a)
	sb := keySet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if _, ok := sb[k]; !ok {
			return false
		}
	}
	return true
}

func keySet(items []Value) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, e := range items {
		set[e.SetKey()] = struct{}{}
	}
	return set
}
