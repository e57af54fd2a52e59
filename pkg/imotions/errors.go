package imotions

import "fmt"

// ParseError is returned when a line is not a JSON object.
type ParseError struct {
	// Line is the offending line with surrounding whitespace trimmed.
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed sample line %q", e.Line)
	}
	return fmt.Sprintf("malformed sample line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ProtocolViolationError is returned for a well-formed object that lacks one
// of the fields every sample is expected to carry.
type ProtocolViolationError struct {
	Field string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("sample is missing required string field %s", e.Field)
}

// MissingFieldError is returned when an EyeData sample lacks a numeric field,
// or carries something other than a number in it.
type MissingFieldError struct {
	Field string

	// Value holds the raw JSON when the field was present but not numeric.
	Value string
}

func (e *MissingFieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("eye data sample is missing numeric field %s", e.Field)
	}
	return fmt.Sprintf("eye data field %s is not a number: %s", e.Field, e.Value)
}
