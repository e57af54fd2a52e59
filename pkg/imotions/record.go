// Package imotions decodes the newline-delimited JSON sample stream served by
// the iMotions API.
//
// Every line carries a DeviceName and a SampleName. EyeData samples also carry
// gaze coordinates, pupil diameters and a gaze timestamp, with -1 standing in
// for any reading that is not available.
package imotions

import (
	"bytes"
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

const (
	// FieldDeviceName names the device that produced a sample.
	FieldDeviceName = "DeviceName"

	// FieldSampleName names the kind of sample.
	FieldSampleName = "SampleName"

	// FieldGazeTime is the tracker's own timestamp for an EyeData sample.
	FieldGazeTime = "GazeTime"

	// EyeDataSample is the SampleName of gaze samples.
	EyeDataSample = "EyeData"
)

var errNotObject = errors.New("sample is not a JSON object")

// Record is one parsed sample line with its required fields validated. The
// remaining fields stay undecoded until asked for.
type Record struct {
	DeviceName string
	SampleName string

	fields map[string]json.RawMessage
}

// ParseLine parses one complete line. Surrounding whitespace, including the
// line terminator, is ignored.
//
// A line that is not a JSON object yields a *ParseError. An object without a
// string DeviceName or SampleName yields a *ProtocolViolationError.
func ParseLine(line string) (*Record, error) {
	trimmed := strings.TrimSpace(line)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, &ParseError{Line: trimmed, Err: err}
	}

	// "null" decodes without error into a nil map.
	if fields == nil {
		return nil, &ParseError{Line: trimmed, Err: errNotObject}
	}

	r := &Record{fields: fields}

	var err error
	if r.DeviceName, err = r.requiredString(FieldDeviceName); err != nil {
		return nil, err
	}
	if r.SampleName, err = r.requiredString(FieldSampleName); err != nil {
		return nil, err
	}

	return r, nil
}

// Has reports whether the sample carries a non-null value for field.
func (r *Record) Has(field string) bool {
	raw, ok := r.fields[field]
	return ok && !isNull(raw)
}

// Number decodes a numeric field. Missing, null and non-numeric values yield a
// *MissingFieldError.
func (r *Record) Number(field string) (Number, error) {
	raw, ok := r.fields[field]
	if !ok || isNull(raw) {
		return Number{}, &MissingFieldError{Field: field}
	}

	literal := string(bytes.TrimSpace(raw))
	n, ok := parseNumber(literal)
	if !ok {
		return Number{}, &MissingFieldError{Field: field, Value: literal}
	}

	return n, nil
}

func (r *Record) requiredString(field string) (string, error) {
	raw, ok := r.fields[field]
	if !ok || isNull(raw) {
		return "", &ProtocolViolationError{Field: field}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ProtocolViolationError{Field: field}
	}

	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
