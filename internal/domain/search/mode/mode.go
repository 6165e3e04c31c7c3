package mode

import "strings"

// Mode is the literal match applied after the fuzzy stage.
type Mode string

// Match mode constants.
const (
	// Contains is the default mode.
	Contains   Mode = "contains"
	StartsWith Mode = "startsWith"
	EndsWith   Mode = "endsWith"
	Equals     Mode = "equals"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Contains || m == StartsWith || m == EndsWith || m == Equals
}

// Match reports whether value satisfies the mode against query, ignoring case.
func (m Mode) Match(value, query string) bool {
	v := strings.ToLower(value)
	q := strings.ToLower(query)
	switch m {
	case StartsWith:
		return strings.HasPrefix(v, q)
	case EndsWith:
		return strings.HasSuffix(v, q)
	case Equals:
		return v == q
	default:
		return strings.Contains(v, q)
	}
}
