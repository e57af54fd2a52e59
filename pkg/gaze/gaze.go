// Package gaze turns EyeData samples into screen-normalized output records.
//
// An output record is rendered as one line:
//
//	<ts>; <lx>, <ly>, <lvalid>, <lpupil>, <lpupilvalid>; <rx>, <ry>, <rvalid>, <rpupil>, <rpupilvalid>
//
// Coordinates are fractions of the screen width/height, or -1.0 when the
// tracker reported no reading. Validity flags are 1.0 or 0.0.
package gaze

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/papercomputeco/gazetap/pkg/imotions"
)

const (
	valid   = 1.0
	invalid = 0.0

	// unavailable is written in place of a coordinate the tracker did not report.
	unavailable = -1.0
)

// Screen is the pixel resolution gaze coordinates are normalized against.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate rejects screens that cannot be normalized against.
func (s Screen) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid screen resolution %dx%d", s.Width, s.Height)
	}
	return nil
}

func (s Screen) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Reading is the normalized output for one eye.
type Reading struct {
	X          float64
	Y          float64
	Valid      float64
	Pupil      imotions.Number
	PupilValid float64
}

// Output is one formatted gaze record.
type Output struct {
	// Timestamp is wall-clock milliseconds at formatting time.
	Timestamp int64
	Left      Reading
	Right     Reading
}

// Eye returns the reading for one side.
func (o Output) Eye(e imotions.Eye) Reading {
	if e == imotions.Right {
		return o.Right
	}
	return o.Left
}

var errNilEyeData = errors.New("nil eye data")

// Normalize computes the output record for d. Each coordinate is divided by
// the matching screen dimension unless it is the sentinel, and validity flags
// are derived from the raw values.
func Normalize(d *imotions.EyeData, screen Screen, now time.Time) (Output, error) {
	if d == nil {
		return Output{}, errNilEyeData
	}
	if err := screen.Validate(); err != nil {
		return Output{}, err
	}

	return Output{
		Timestamp: Millis(now),
		Left:      normalizeEye(d.Eye(imotions.Left), screen),
		Right:     normalizeEye(d.Eye(imotions.Right), screen),
	}, nil
}

func normalizeEye(r imotions.EyeReading, screen Screen) Reading {
	out := Reading{
		X:          normalizeAxis(r.GazeX, screen.Width),
		Y:          normalizeAxis(r.GazeY, screen.Height),
		Valid:      invalid,
		Pupil:      r.Pupil,
		PupilValid: invalid,
	}

	if !r.GazeX.IsSentinel() && !r.GazeY.IsSentinel() {
		out.Valid = valid
	}
	if !r.Pupil.IsSentinel() {
		out.PupilValid = valid
	}

	return out
}

func normalizeAxis(n imotions.Number, size int) float64 {
	if n.IsSentinel() {
		return unavailable
	}
	return n.Float64() / float64(size)
}

// Millis converts t to milliseconds since the epoch, rounded to the nearest
// millisecond.
func Millis(t time.Time) int64 {
	return int64(math.Round(float64(t.UnixNano()) / float64(time.Millisecond)))
}

// String renders the output line without a terminator.
func (o Output) String() string {
	var b strings.Builder
	b.Grow(128)

	b.WriteString(formatInt(o.Timestamp))
	for _, e := range imotions.Eyes {
		r := o.Eye(e)
		b.WriteString("; ")
		b.WriteString(FormatFloat(r.X))
		b.WriteString(", ")
		b.WriteString(FormatFloat(r.Y))
		b.WriteString(", ")
		b.WriteString(FormatFloat(r.Valid))
		b.WriteString(", ")
		b.WriteString(FormatNumber(r.Pupil))
		b.WriteString(", ")
		b.WriteString(FormatFloat(r.PupilValid))
	}

	return b.String()
}
