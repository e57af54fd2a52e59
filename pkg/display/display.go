// Package display resolves the screen resolution gaze coordinates are
// normalized against.
package display

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/gazetap/pkg/gaze"
)

// ErrNoDisplay is returned when no connected monitor could be found.
var ErrNoDisplay = errors.New("no connected display found")

// Resolver resolves the primary screen size.
type Resolver interface {
	Resolve(ctx context.Context) (gaze.Screen, error)
}

// Static is a fixed, configured screen size.
type Static gaze.Screen

// Resolve returns the configured size.
func (s Static) Resolve(_ context.Context) (gaze.Screen, error) {
	screen := gaze.Screen(s)
	if err := screen.Validate(); err != nil {
		return gaze.Screen{}, fmt.Errorf("configured display: %w", err)
	}
	return screen, nil
}

// New returns a Static resolver when both dimensions are configured and
// queries xrandr otherwise.
func New(width, height int) Resolver {
	if width > 0 && height > 0 {
		return Static{Width: width, Height: height}
	}
	return NewXrandr()
}
