package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/gazetap/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSampleEmitted is emitted after a gaze sample is written to the
	// output sink.
	EventTypeSampleEmitted = "gazetap.sample.emitted"
)

// SampleEmittedEvent is a transport-neutral event payload for an emitted sample.
type SampleEmittedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Source        EventSource     `json:"source"`
	Sample        *storage.Record `json:"sample"`
}

// EventSource identifies where the sample originated.
type EventSource struct {
	SessionID  string `json:"session_id"`
	DeviceName string `json:"device_name"`
	Upstream   string `json:"upstream,omitempty"`
}

// NewSampleEmittedEvent wraps a stored sample in a v1 event.
func NewSampleEmittedEvent(rec *storage.Record, upstream string, now time.Time) *SampleEmittedEvent {
	return &SampleEmittedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeSampleEmitted,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		Source: EventSource{
			SessionID:  rec.SessionID,
			DeviceName: rec.DeviceName,
			Upstream:   upstream,
		},
		Sample: rec,
	}
}
