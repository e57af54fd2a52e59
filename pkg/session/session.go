// Package session drives the gaze pipeline against a live byte stream.
//
// A Session owns the line framer for one upstream connection. Each received
// chunk is framed into lines; each line is parsed, filtered, normalized and
// written to the sink before the next chunk is read. Everything after Receive
// runs synchronously on the caller's goroutine.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/gazetap/pkg/framer"
	"github.com/papercomputeco/gazetap/pkg/gaze"
	"github.com/papercomputeco/gazetap/pkg/imotions"
	"github.com/papercomputeco/gazetap/pkg/logger"
	"github.com/papercomputeco/gazetap/pkg/metrics"
	"github.com/papercomputeco/gazetap/pkg/utils"
)

// maxLoggedLine bounds how much of a discarded line is logged.
const maxLoggedLine = 160

// Receiver delivers raw chunks from the upstream. Receive blocks until data
// arrives and returns io.EOF once the stream has ended.
type Receiver interface {
	Receive(ctx context.Context) ([]byte, error)
}

// Emitted is a gaze record that has been written to the sink.
type Emitted struct {
	SessionID  string
	DeviceName string
	SampleName string
	Output     gaze.Output

	// GazeTime is the device timestamp, nil when the sample had none.
	GazeTime *imotions.Number
}

// Recorder receives every emitted record after it has been written. Record
// must not block; it returns false when the record was dropped.
type Recorder interface {
	Record(e Emitted) bool
}

// Config is the configuration for a Session.
type Config struct {
	// ID identifies the session in logs and recordings. A random UUID is
	// used when empty.
	ID string

	// Screen is the resolution coordinates are normalized against.
	Screen gaze.Screen

	// Filter selects the samples that are emitted.
	Filter imotions.Filter

	// Clock supplies the output timestamp. Defaults to time.Now.
	Clock func() time.Time

	// Logger defaults to a no-op logger.
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *metrics.Metrics

	// Recorder is optional.
	Recorder Recorder
}

// flusher is implemented by buffered sinks such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Session processes one upstream stream.
type Session struct {
	id       string
	screen   gaze.Screen
	filter   imotions.Filter
	clock    func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
	recorder Recorder

	out     io.Writer
	framer  *framer.Framer
	started time.Time
	stats   counters
}

// New creates a Session writing records to out.
func New(cfg Config, out io.Writer) *Session {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return &Session{
		id:       cfg.ID,
		screen:   cfg.Screen,
		filter:   cfg.Filter,
		clock:    cfg.Clock,
		logger:   cfg.Logger.With("session_id", cfg.ID),
		metrics:  cfg.Metrics,
		recorder: cfg.Recorder,
		out:      out,
		framer:   framer.New(),
		started:  cfg.Clock(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run reads chunks from recv until the stream ends, ctx is canceled or the
// transport fails. End of stream and cancellation return nil; a transport or
// sink failure is returned.
func (s *Session) Run(ctx context.Context, recv Receiver) error {
	if err := s.screen.Validate(); err != nil {
		return err
	}

	s.logger.Info("session started",
		"screen", s.screen.String(),
		"device_filter", s.filter.DeviceName,
		"sample_filter", s.filter.SampleName,
	)
	defer s.finish()

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("session canceled")
			return nil
		}

		chunk, recvErr := recv.Receive(ctx)

		// A read can return data alongside the error that ends the stream.
		if len(chunk) > 0 {
			if err := s.ProcessChunk(chunk); err != nil {
				return err
			}
		}

		if recvErr == nil {
			continue
		}

		switch outcome := Classify(recvErr); outcome {
		case OutcomeEndOfStream:
			s.logger.Info("upstream closed the stream")
			return nil
		case OutcomeCanceled:
			s.logger.Info("session canceled")
			return nil
		default:
			s.logger.Error("upstream connection failed", "error", recvErr)
			return fmt.Errorf("receiving from upstream: %w", recvErr)
		}
	}
}

// ProcessChunk frames chunk and handles every complete line in it. Only a
// failure to write to the sink is returned; per-line problems are logged,
// counted and skipped.
func (s *Session) ProcessChunk(chunk []byte) error {
	s.stats.chunks.Add(1)
	s.stats.bytes.Add(uint64(len(chunk)))
	s.metrics.ObserveChunk(len(chunk))

	lines := s.framer.Feed(chunk)
	carry := len(s.framer.Carry())
	s.stats.carry.Store(int64(carry))
	s.stats.lines.Add(uint64(len(lines)))
	s.metrics.ObserveLines(len(lines), carry)

	for _, line := range lines {
		outcome, err := s.processLine(line)
		if err != nil && outcome == OutcomeEmitted {
			return err
		}
		s.observe(outcome, line, err)
	}

	return nil
}

// processLine runs one line through parse, filter and normalize. A non-nil
// error with OutcomeEmitted is a sink failure.
func (s *Session) processLine(line string) (Outcome, error) {
	record, err := imotions.ParseLine(line)
	if err != nil {
		return Classify(err), err
	}

	if !s.filter.Match(record) {
		return OutcomeFilterMiss, nil
	}

	data, err := record.EyeData()
	if err != nil {
		return Classify(err), err
	}

	out, err := gaze.Normalize(data, s.screen, s.clock())
	if err != nil {
		return OutcomeMissingField, err
	}

	if err := s.emit(out.String()); err != nil {
		return OutcomeEmitted, err
	}

	e := Emitted{
		SessionID:  s.id,
		DeviceName: record.DeviceName,
		SampleName: record.SampleName,
		Output:     out,
	}
	if t, ok := data.GazeTime(); ok {
		e.GazeTime = &t
	}
	s.record(e)

	return OutcomeEmitted, nil
}

// emit writes one complete line in a single Write and flushes buffered sinks
// so the record reaches the consumer immediately.
func (s *Session) emit(line string) error {
	if _, err := io.WriteString(s.out, line+"\n"); err != nil {
		return fmt.Errorf("writing gaze record: %w", err)
	}

	if f, ok := s.out.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flushing gaze record: %w", err)
		}
	}

	return nil
}

func (s *Session) record(e Emitted) {
	if s.recorder == nil {
		return
	}
	if !s.recorder.Record(e) {
		s.stats.recorderDrops.Add(1)
		s.metrics.ObserveRecorderDrop()
	}
}

func (s *Session) observe(outcome Outcome, line string, err error) {
	switch outcome {
	case OutcomeEmitted:
		s.stats.emitted.Add(1)
		s.metrics.ObserveEmitted()
		return
	case OutcomeParseError:
		s.stats.parseErrors.Add(1)
		s.logger.Debug("discarding malformed line", "error", err, "line", utils.Truncate(line, maxLoggedLine))
	case OutcomeProtocolViolation:
		s.stats.protocolViolations.Add(1)
		s.logger.Warn("discarding sample without required fields", "error", err, "line", utils.Truncate(line, maxLoggedLine))
	case OutcomeFilterMiss:
		s.stats.filterMisses.Add(1)
	case OutcomeMissingField:
		s.stats.missingFields.Add(1)
		s.logger.Warn("discarding incomplete eye data sample", "error", err, "bytes", len(line))
	}

	s.metrics.ObserveDiscard(outcome.discardReason())
}

func (s *Session) finish() {
	if dangling := s.framer.Reset(); dangling != "" {
		s.logger.Debug("discarding unterminated fragment at end of session", "bytes", len(dangling))
	}
	s.stats.carry.Store(0)
	s.metrics.ObserveLines(0, 0)

	st := s.Stats()
	s.logger.Info("session finished",
		"duration", s.clock().Sub(s.started).Round(time.Millisecond).String(),
		"chunks", st.Chunks,
		"lines", st.Lines,
		"emitted", st.Emitted,
		"filtered", st.FilterMisses,
		"parse_errors", st.ParseErrors,
		"protocol_violations", st.ProtocolViolations,
		"missing_fields", st.MissingFields,
	)
}

// counters are updated by the session goroutine and read concurrently by
// Stats.
type counters struct {
	chunks             atomic.Uint64
	bytes              atomic.Uint64
	lines              atomic.Uint64
	emitted            atomic.Uint64
	parseErrors        atomic.Uint64
	protocolViolations atomic.Uint64
	filterMisses       atomic.Uint64
	missingFields      atomic.Uint64
	recorderDrops      atomic.Uint64
	carry              atomic.Int64
}

// Stats is a snapshot of session counters.
type Stats struct {
	SessionID          string    `json:"session_id"`
	StartedAt          time.Time `json:"started_at"`
	Screen             string    `json:"screen"`
	Chunks             uint64    `json:"chunks"`
	Bytes              uint64    `json:"bytes"`
	Lines              uint64    `json:"lines"`
	Emitted            uint64    `json:"emitted"`
	ParseErrors        uint64    `json:"parse_errors"`
	ProtocolViolations uint64    `json:"protocol_violations"`
	FilterMisses       uint64    `json:"filter_misses"`
	MissingFields      uint64    `json:"missing_fields"`
	RecorderDrops      uint64    `json:"recorder_drops"`
	CarryBytes         int64     `json:"carry_bytes"`
}

// Stats returns a snapshot of the session counters. It is safe to call from
// any goroutine.
func (s *Session) Stats() Stats {
	return Stats{
		SessionID:          s.id,
		StartedAt:          s.started,
		Screen:             s.screen.String(),
		Chunks:             s.stats.chunks.Load(),
		Bytes:              s.stats.bytes.Load(),
		Lines:              s.stats.lines.Load(),
		Emitted:            s.stats.emitted.Load(),
		ParseErrors:        s.stats.parseErrors.Load(),
		ProtocolViolations: s.stats.protocolViolations.Load(),
		FilterMisses:       s.stats.filterMisses.Load(),
		MissingFields:      s.stats.missingFields.Load(),
		RecorderDrops:      s.stats.recorderDrops.Load(),
		CarryBytes:         s.stats.carry.Load(),
	}
}
