// Package imaging provides resolution parsing and letterbox composition.
package imaging

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidResolution indicates a malformed or non-positive resolution string.
var ErrInvalidResolution = errors.New("invalid resolution")

// Resolution is a pixel resolution. Both dimensions are strictly positive.
type Resolution struct {
	Width  int
	Height int
}

// String returns the WxH form of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseResolution parses a string like "1920x1080" into a Resolution.
func ParseResolution(value string) (Resolution, error) {
	widthStr, heightStr, found := strings.Cut(strings.ToLower(value), "x")
	if !found {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, value)
	}
	width, err := strconv.Atoi(widthStr)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, value)
	}
	height, err := strconv.Atoi(heightStr)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, value)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("%w: dimensions must be positive in %q", ErrInvalidResolution, value)
	}
	return Resolution{Width: width, Height: height}, nil
}
