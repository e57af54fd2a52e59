package imotions

import (
	"strconv"
	"strings"
)

// Sentinel is the value the upstream sends for a reading that is not
// available.
const Sentinel = -1

// Number is a JSON number that remembers whether it was written as an
// integer literal, so pass-through values can be re-rendered in the same form.
// Integer literals keep their digits, including ones beyond the int64 range.
type Number struct {
	value float64

	// digits is the canonical decimal text of an integer literal; empty for
	// literals with a fraction or exponent.
	digits string
}

// IntNumber returns a Number as if decoded from an integer literal.
func IntNumber(v int64) Number {
	return Number{value: float64(v), digits: strconv.FormatInt(v, 10)}
}

// FloatNumber returns a Number as if decoded from a literal with a fraction
// or exponent.
func FloatNumber(v float64) Number {
	return Number{value: v}
}

// parseNumber decodes a raw JSON number literal. ok is false for anything
// that is not a number, including strings holding digits.
func parseNumber(raw string) (Number, bool) {
	if raw == "" || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return Number{}, false
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Number{}, false
	}

	if strings.ContainsAny(raw, ".eE") {
		return Number{value: f}, true
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntNumber(i), true
	}

	// Beyond int64. JSON forbids leading zeros, so the literal is canonical.
	return Number{value: f, digits: raw}, true
}

// Float64 returns the numeric value.
func (n Number) Float64() float64 {
	return n.value
}

// IsInteger reports whether n was written as an integer literal.
func (n Number) IsInteger() bool {
	return n.digits != ""
}

// Int64 returns the integer value and true when the literal was an integer
// that fits in an int64.
func (n Number) Int64() (int64, bool) {
	if n.digits == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(n.digits, 10, 64)
	return i, err == nil
}

// String renders n in the form it arrived in: integer literals by their
// digits, other literals in shortest round-trip form.
func (n Number) String() string {
	if n.digits != "" {
		return n.digits
	}
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

// IsSentinel reports whether n is the "not available" marker.
func (n Number) IsSentinel() bool {
	return n.value == Sentinel
}
