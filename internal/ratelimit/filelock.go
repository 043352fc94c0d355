package ratelimit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// FileLimiter enforces a minimum interval of 1/rate between requests across
// independent process instances. State is a single file holding the
// timestamp of the last request, guarded by an advisory flock.
type FileLimiter struct {
	path string
	rate float64
}

// NewFileLimiter creates a cross-process limiter backed by the given state
// file. A rate of zero or less disables limiting.
func NewFileLimiter(path string, rate float64) *FileLimiter {
	return &FileLimiter{path: path, rate: rate}
}

// Acquire waits until at least 1/rate seconds have passed since the last
// request recorded in the state file, then records the current time. The
// flock is held across the wait so concurrent processes serialize.
func (l *FileLimiter) Acquire(ctx context.Context) error {
	if l.rate <= 0 {
		return nil
	}
	interval := time.Duration(float64(time.Second) / l.rate)

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create limiter state directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open limiter state: %w", err)
	}
	defer file.Close()

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("lock limiter state: %w", err)
	}
	defer unix.Flock(int(file.Fd()), unix.LOCK_UN)

	last, err := readTimestamp(file)
	if err != nil {
		return err
	}

	if !last.IsZero() {
		wait := interval - time.Since(last)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return writeTimestamp(file, time.Now())
}

func readTimestamp(file *os.File) (time.Time, error) {
	data := make([]byte, 64)
	n, err := file.ReadAt(data, 0)
	if err != nil && err != io.EOF {
		return time.Time{}, fmt.Errorf("read limiter state: %w", err)
	}
	content := strings.TrimSpace(string(data[:n]))
	if content == "" {
		return time.Time{}, nil
	}
	nanos, err := strconv.ParseInt(content, 10, 64)
	if err != nil {
		// A corrupt state file resets the limiter rather than wedging it.
		return time.Time{}, nil
	}
	return time.Unix(0, nanos), nil
}

func writeTimestamp(file *os.File, now time.Time) error {
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("truncate limiter state: %w", err)
	}
	if _, err := file.WriteAt([]byte(strconv.FormatInt(now.UnixNano(), 10)), 0); err != nil {
		return fmt.Errorf("write limiter state: %w", err)
	}
	return nil
}
