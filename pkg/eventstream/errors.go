package eventstream

import "errors"

// ErrNilSampleEvent indicates a nil sample event payload was provided to a publisher.
var ErrNilSampleEvent = errors.New("nil sample event")
