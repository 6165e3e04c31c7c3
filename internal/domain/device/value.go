package device

import (
	"cmp"
	"strconv"
	"strings"
)

// Value is a present field value of one of the three row kinds.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.n }

// Truth returns the boolean payload.
func (v Value) Truth() bool { return v.b }

// Any returns the payload as a plain Go value (string, bool or float64).
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.s == o.s && v.n == o.n && v.b == o.b
}

// Compare orders two values of the same kind: lexicographic strings,
// numeric numbers, false before true. Values of different kinds order by kind.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmp.Compare(v.kind, o.kind)
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.s, o.s)
	case KindNumber:
		return cmp.Compare(v.n, o.n)
	case KindBool:
		switch {
		case v.b == o.b:
			return 0
		case !v.b:
			return -1
		default:
			return 1
		}
	}
	return 0
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	default:
		return ""
	}
}
