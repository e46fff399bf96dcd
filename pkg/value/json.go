package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Decode parses any JSON document into a Value, keeping number literals.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, errors.New("unexpected data after top-level value")
	}
	return FromAny(raw), nil
}

// Parse tries to read text as a JSON mapping or sequence. Only text whose
// trimmed form starts with '[' or '{' is considered; scalars such as "1" or
// "true" never parse, so plain strings stay plain.
func Parse(text string) (Value, bool) {
	t := strings.TrimSpace(text)
	if t == "" || (t[0] != '[' && t[0] != '{') {
		return Value{}, false
	}
	v, err := Decode([]byte(t))
	if err != nil {
		return Value{}, false
	}
	return v, true
}

// Render returns the comparison text of v: null is empty, strings are
// verbatim, numbers keep their literal text, booleans are "true"/"false",
// and containers are compact JSON with sorted keys.
func (v Value) Render() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.b)
	case Number, String:
		return v.text
	default:
		var buf bytes.Buffer
		v.writeJSON(&buf, false)
		return buf.String()
	}
}

// String implements fmt.Stringer using Render.
func (v Value) String() string { return v.Render() }

// MarshalJSON encodes v as canonical JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeJSON(&buf, false)
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes any JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Decode(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// writeJSON emits compact JSON with sorted mapping keys. With normalize set,
// numbers are written in a canonical form so that 1, 1.0 and 1e0 agree.
func (v Value) writeJSON(buf *bytes.Buffer, normalize bool) {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		if normalize {
			buf.WriteString(canonicalNumber(v.text))
		} else {
			buf.WriteString(v.text)
		}
	case String:
		writeString(buf, v.text)
	case Sequence:
		buf.WriteByte('[')
		for i, e := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			e.writeJSON(buf, normalize)
		}
		buf.WriteByte(']')
	case Mapping:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			v.pairs[k].writeJSON(buf, normalize)
		}
		buf.WriteByte('}')
	}
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
}

func canonicalNumber(text string) string {
	f, ok := new(big.Float).SetPrec(256).SetString(text)
	if !ok {
		return text
	}
	return f.Text('g', -1)
}
