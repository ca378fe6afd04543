package pipeline

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

const runIDSuffixLen = 12

// NewRunID returns a sortable run id: a UTC timestamp and a random suffix.
func NewRunID() (string, error) {
	return NewRunIDWithRand(time.Now().UTC(), rand.Reader)
}

// NewRunIDWithRand builds a run id from the given clock value and entropy.
func NewRunIDWithRand(now time.Time, r io.Reader) (string, error) {
	if r == nil {
		return "", fmt.Errorf("random reader is nil")
	}
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")[:runIDSuffixLen]
	return FormatRunID(now, suffix), nil
}

// FormatRunID joins a timestamp and suffix.
func FormatRunID(now time.Time, suffix string) string {
	return now.UTC().Format("20060102T150405Z") + "-" + suffix
}
