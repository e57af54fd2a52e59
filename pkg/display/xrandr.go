package display

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/papercomputeco/gazetap/pkg/gaze"
)

// xrandr prints connected outputs as
// "DP-1 connected primary 2560x1440+0+0 (normal left inverted ...) 597mm x 336mm".
var connectedRe = regexp.MustCompile(`^\S+ connected (primary )?(\d+)x(\d+)\+\d+\+\d+`)

// Xrandr queries the X server for the current monitor layout.
type Xrandr struct {
	// Command defaults to "xrandr".
	Command string
	Args    []string
}

// NewXrandr creates a resolver running "xrandr --current".
func NewXrandr() *Xrandr {
	return &Xrandr{Command: "xrandr", Args: []string{"--current"}}
}

// Resolve runs xrandr and returns the primary monitor, or the first
// connected one when none is marked primary.
func (x *Xrandr) Resolve(ctx context.Context) (gaze.Screen, error) {
	cmd := exec.CommandContext(ctx, x.Command, x.Args...)
	out, err := cmd.Output()
	if err != nil {
		return gaze.Screen{}, fmt.Errorf("running %s: %w", x.Command, err)
	}
	return ParseXrandr(out)
}

// ParseXrandr extracts the primary screen size from xrandr output.
func ParseXrandr(out []byte) (gaze.Screen, error) {
	var (
		first gaze.Screen
		found bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := connectedRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		w, err := strconv.Atoi(m[2])
		if err != nil {
			return gaze.Screen{}, fmt.Errorf("parsing width %q: %w", m[2], err)
		}
		h, err := strconv.Atoi(m[3])
		if err != nil {
			return gaze.Screen{}, fmt.Errorf("parsing height %q: %w", m[3], err)
		}

		screen := gaze.Screen{Width: w, Height: h}
		if m[1] != "" {
			return screen, nil
		}
		if !found {
			first, found = screen, true
		}
	}
	if err := scanner.Err(); err != nil {
		return gaze.Screen{}, err
	}

	if !found {
		return gaze.Screen{}, ErrNoDisplay
	}
	return first, nil
}
