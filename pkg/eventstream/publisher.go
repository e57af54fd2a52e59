package eventstream

import "context"

// Publisher publishes sample events to an event stream backend.
type Publisher interface {
	PublishSample(ctx context.Context, event *SampleEmittedEvent) error
	Close() error
}
