// Package refine turns a raw page image into an enhanced one, either through
// a remote generative image-editing service or a local passthrough stub.
package refine

import (
	"context"
	"fmt"
	"os"

	"github.com/hotmob/notebooklm-slide-refiner/internal/fsutil"
)

// Refiner enhances a raw image and writes the result to enhancedPath.
// Implementations may fail transiently; retryability is classified with
// IsRetryable.
type Refiner interface {
	Refine(ctx context.Context, rawPath, enhancedPath, prompt string) error
}

// StubRefiner copies the raw image to the enhanced path byte-for-byte.
// It is the default backend when no remote credentials are configured and
// the one used offline and in tests.
type StubRefiner struct{}

// NewStubRefiner creates a passthrough refiner.
func NewStubRefiner() *StubRefiner {
	return &StubRefiner{}
}

// Refine copies rawPath to enhancedPath.
func (r *StubRefiner) Refine(ctx context.Context, rawPath, enhancedPath, prompt string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("read raw image: %w", err)
	}
	return fsutil.WriteAtomic(enhancedPath, data)
}
