package nop

import (
	"context"

	"github.com/papercomputeco/gazetap/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishSample validates input and otherwise does nothing.
func (p *Publisher) PublishSample(_ context.Context, event *eventstream.SampleEmittedEvent) error {
	if event == nil {
		return eventstream.ErrNilSampleEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
