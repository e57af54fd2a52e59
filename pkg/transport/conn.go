// Package transport connects to the telemetry server over TCP and delivers
// the raw byte stream chunk by chunk.
package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultHost is where the iMotions API listens unless configured.
	DefaultHost = "localhost"

	// DefaultPort is the iMotions API TCP forwarding port.
	DefaultPort = 8088

	// ChunkSize bounds a single read from the socket.
	ChunkSize = 64 * 1024

	defaultDialTimeout = 10 * time.Second
)

// Options configure Dial.
type Options struct {
	Host string
	Port int

	// DialTimeout bounds connection establishment only; reads never time out.
	DialTimeout time.Duration
}

// Addr returns host:port with defaults applied.
func (o Options) Addr() string {
	host := o.Host
	if host == "" {
		host = DefaultHost
	}
	port := o.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Conn is a client connection to the telemetry server.
type Conn struct {
	conn net.Conn
	addr string
	buf  []byte

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the server described by opts.
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	timeout := opts.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}

	addr := opts.Addr()
	d := net.Dialer{Timeout: timeout}

	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError("dial", addr, err)
	}

	return NewConn(c), nil
}

// NewConn wraps an established connection.
func NewConn(c net.Conn) *Conn {
	return &Conn{
		conn: c,
		addr: c.RemoteAddr().String(),
		buf:  make([]byte, ChunkSize),
	}
}

// RemoteAddr returns the server address for logging.
func (c *Conn) RemoteAddr() string {
	return c.addr
}

// Receive blocks until the server sends data and returns a copy of it. It
// returns io.EOF when the server closes the stream and ctx.Err() when ctx
// ends first; in that case the connection is closed. Other failures are
// returned as *Error.
func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.Close()
	})
	n, err := c.conn.Read(c.buf)
	stop()

	var chunk []byte
	if n > 0 {
		chunk = make([]byte, n)
		copy(chunk, c.buf[:n])
	}

	switch {
	case err == nil:
		return chunk, nil
	case ctx.Err() != nil:
		return chunk, ctx.Err()
	case errors.Is(err, io.EOF):
		return chunk, io.EOF
	default:
		return chunk, newError("read", c.addr, err)
	}
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
