package storage

import (
	"github.com/google/uuid"

	"github.com/papercomputeco/gazetap/pkg/gaze"
	"github.com/papercomputeco/gazetap/pkg/imotions"
)

// Eye is the stored form of one eye's normalized reading.
type Eye struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Valid      float64 `json:"valid"`
	Pupil      float64 `json:"pupil"`
	PupilValid float64 `json:"pupil_valid"`
}

// Record is one emitted sample.
type Record struct {
	ID         uuid.UUID `json:"id"`
	SessionID  string    `json:"session_id"`
	DeviceName string    `json:"device_name"`
	SampleName string    `json:"sample_name"`

	// GazeTime is the device-reported time, kept for reference. Nil when the
	// sample carried none.
	GazeTime *float64 `json:"gaze_time,omitempty"`

	// Timestamp is the host wall clock in milliseconds when the sample was
	// emitted.
	Timestamp int64 `json:"timestamp"`

	Left  Eye `json:"left"`
	Right Eye `json:"right"`

	// Line is the exact text written to the output sink, without newline.
	Line string `json:"line"`
}

// NewRecord builds a record with a fresh ID from a normalized sample.
// gazeTime may be nil.
func NewRecord(sessionID, deviceName, sampleName string, gazeTime *imotions.Number, out gaze.Output) *Record {
	rec := &Record{
		ID:         uuid.New(),
		SessionID:  sessionID,
		DeviceName: deviceName,
		SampleName: sampleName,
		Timestamp:  out.Timestamp,
		Left:       newEye(out.Left),
		Right:      newEye(out.Right),
		Line:       out.String(),
	}
	if gazeTime != nil {
		t := gazeTime.Float64()
		rec.GazeTime = &t
	}
	return rec
}

func newEye(r gaze.Reading) Eye {
	return Eye{
		X:          r.X,
		Y:          r.Y,
		Valid:      r.Valid,
		Pupil:      r.Pupil.Float64(),
		PupilValid: r.PupilValid,
	}
}
