// Package worker provides an asynchronous worker pool for persisting emitted
// gaze samples to the configured storage.Driver and publishing them to the
// configured eventstream.Publisher.
//
// The pool decouples storage and publishing from the streaming hot path so
// that a slow database or broker never delays stdout.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/gazetap/pkg/eventstream"
	"github.com/papercomputeco/gazetap/pkg/logger"
	"github.com/papercomputeco/gazetap/pkg/session"
	"github.com/papercomputeco/gazetap/pkg/storage"
)

var (
	// A single worker keeps storage and the event stream in emission order.
	defaultNumWorkers   uint = 1
	defaultJobQueueSize uint = 1024
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Sample session.Emitted
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting samples.
	Driver storage.Driver

	// Publisher is the optional event stream publisher.
	Publisher eventstream.Publisher

	// Upstream is the telemetry server address recorded on published events.
	Upstream string

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 1024).
	QueueSize uint

	// Logger is the provided slog logger
	Logger *slog.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	if c.Clock == nil {
		c.Clock = time.Now
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		return true
	default:
		p.logger.Warn("job not queued, queue full, job dropped",
			"session", job.Sample.SessionID,
			"timestamp", job.Sample.Output.Timestamp,
		)
		return false
	}
}

// Record implements session.Recorder.
func (p *Pool) Record(e session.Emitted) bool {
	return p.Enqueue(Job{Sample: e})
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this after the session has returned.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("storage worker stopped", "worker_id", id)
}

// processJob stores the sample and publishes it when it was newly inserted.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()
	s := job.Sample

	rec := storage.NewRecord(s.SessionID, s.DeviceName, s.SampleName, s.GazeTime, s.Output)

	isNew, err := p.config.Driver.Put(ctx, rec)
	if err != nil {
		p.logger.Error("async sample storage failed",
			"session", s.SessionID,
			"error", err,
		)
		return
	}

	p.logger.Debug("sample stored",
		"id", rec.ID,
		"timestamp", rec.Timestamp,
		"is_new", isNew,
	)

	if !isNew || p.config.Publisher == nil {
		return
	}

	event := eventstream.NewSampleEmittedEvent(rec, p.config.Upstream, p.config.Clock())
	if err := p.config.Publisher.PublishSample(ctx, event); err != nil {
		p.logger.Warn("failed to publish sample event",
			"id", rec.ID,
			"error", err,
		)
	}
}
