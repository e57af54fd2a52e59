package session

import (
	"context"
	"errors"
	"io"

	"github.com/papercomputeco/gazetap/pkg/imotions"
	"github.com/papercomputeco/gazetap/pkg/metrics"
)

// Outcome is what happened to one line, or to the session as a whole.
type Outcome int

const (
	// OutcomeEmitted means a gaze record was written to the sink.
	OutcomeEmitted Outcome = iota

	// OutcomeParseError means the line was not a JSON object.
	OutcomeParseError

	// OutcomeProtocolViolation means DeviceName or SampleName was missing.
	OutcomeProtocolViolation

	// OutcomeFilterMiss means the sample was not the targeted device/kind.
	OutcomeFilterMiss

	// OutcomeMissingField means an EyeData sample lacked a numeric field.
	OutcomeMissingField

	// OutcomeEndOfStream means the upstream closed the connection.
	OutcomeEndOfStream

	// OutcomeCanceled means the caller's context ended the session.
	OutcomeCanceled

	// OutcomeTransportError means the connection failed.
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmitted:
		return "emitted"
	case OutcomeParseError:
		return "parse_error"
	case OutcomeProtocolViolation:
		return "protocol_violation"
	case OutcomeFilterMiss:
		return "filter_miss"
	case OutcomeMissingField:
		return "missing_field"
	case OutcomeEndOfStream:
		return "end_of_stream"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Fatal reports whether the outcome ends the session.
func (o Outcome) Fatal() bool {
	switch o {
	case OutcomeEndOfStream, OutcomeCanceled, OutcomeTransportError:
		return true
	default:
		return false
	}
}

// discardReason maps recoverable outcomes onto metric labels.
func (o Outcome) discardReason() string {
	switch o {
	case OutcomeParseError:
		return metrics.ReasonParseError
	case OutcomeProtocolViolation:
		return metrics.ReasonProtocolViolation
	case OutcomeFilterMiss:
		return metrics.ReasonFilterMiss
	case OutcomeMissingField:
		return metrics.ReasonMissingField
	default:
		return ""
	}
}

// Classify maps an error from the pipeline or the receiver onto an Outcome.
// A nil error is OutcomeEmitted; any error it does not recognize is treated
// as a transport failure.
func Classify(err error) Outcome {
	var (
		parseErr  *imotions.ParseError
		violation *imotions.ProtocolViolationError
		missing   *imotions.MissingFieldError
	)

	switch {
	case err == nil:
		return OutcomeEmitted
	case errors.As(err, &parseErr):
		return OutcomeParseError
	case errors.As(err, &violation):
		return OutcomeProtocolViolation
	case errors.As(err, &missing):
		return OutcomeMissingField
	case errors.Is(err, io.EOF):
		return OutcomeEndOfStream
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeTransportError
	}
}
