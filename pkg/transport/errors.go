package transport

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Kind classifies a transport failure.
type Kind int

const (
	KindOther Kind = iota
	KindRefused
	KindReset
	KindAborted
	KindClosed
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindRefused:
		return "connection refused"
	case KindReset:
		return "connection reset"
	case KindAborted:
		return "connection aborted"
	case KindClosed:
		return "connection closed"
	case KindTimeout:
		return "timeout"
	default:
		return "i/o failure"
	}
}

// Error is an OS-level failure on the upstream connection. It always ends the
// session.
type Error struct {
	// Op is "dial" or "read".
	Op   string
	Addr string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Addr, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, addr string, err error) *Error {
	return &Error{Op: op, Addr: addr, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return KindRefused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return KindReset
	case errors.Is(err, syscall.ECONNABORTED):
		return KindAborted
	case errors.Is(err, net.ErrClosed):
		return KindClosed
	case errors.As(err, &netErr) && netErr.Timeout():
		return KindTimeout
	default:
		return KindOther
	}
}
