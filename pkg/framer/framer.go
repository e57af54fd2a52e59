// Package framer reassembles newline-terminated lines from arbitrarily
// chunked reads of a byte stream.
//
// A Framer holds at most one unterminated fragment (the carry) between calls
// to Feed. The carry is prepended to the first line of the next chunk and is
// never returned as a line on its own.
//
//	chunk 1: `{"a":1}\n{"b"`      -> [`{"a":1}\n`]       carry `{"b"`
//	chunk 2: `:2}\n`              -> [`{"b":2}\n`]       carry ``
package framer

import "strings"

// Framer splits chunks into complete lines. It is not safe for concurrent use
// and chunks must be fed strictly in arrival order.
type Framer struct {
	carry string
}

// New returns a Framer with an empty carry.
func New() *Framer {
	return &Framer{}
}

// Feed splits chunk at every '\n', keeping the terminator on each returned
// line. The first line is prefixed with any carried fragment. A trailing
// segment without '\n' is held back as the new carry.
//
// An empty chunk returns no lines and leaves the carry untouched.
func (f *Framer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	segments := splitKeepNewline(string(chunk))

	if f.carry != "" {
		segments[0] = f.carry + segments[0]
		f.carry = ""
	}

	last := segments[len(segments)-1]
	if !strings.HasSuffix(last, "\n") {
		f.carry = last
		segments = segments[:len(segments)-1]
	}

	if len(segments) == 0 {
		return nil
	}
	return segments
}

// Carry returns the current unterminated fragment.
func (f *Framer) Carry() string {
	return f.carry
}

// Reset clears the carry and returns what it held. Sessions call it once the
// upstream has closed so a dangling fragment can be reported.
func (f *Framer) Reset() string {
	dangling := f.carry
	f.carry = ""
	return dangling
}

// splitKeepNewline is strings.SplitAfter without the empty trailing element
// that SplitAfter yields when s ends in a separator. s must be non-empty.
func splitKeepNewline(s string) []string {
	segments := strings.SplitAfter(s, "\n")
	if segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	return segments
}
