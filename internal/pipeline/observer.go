package pipeline

import (
	"fmt"
	"io"
	"sync"
)

// Observer receives batch progress for UI or logging. Calls arrive from
// worker goroutines.
type Observer interface {
	// OnDocumentStart signals a survey was picked up.
	OnDocumentStart(path string)
	// OnDocumentEnd delivers the result of a survey.
	OnDocumentEnd(result DocumentResult)
}

type nopObserver struct{}

func (nopObserver) OnDocumentStart(string)       {}
func (nopObserver) OnDocumentEnd(DocumentResult) {}

// lockedWriter serializes writes to an underlying writer.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// Write writes to the underlying writer with a mutex guard.
func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// ProgressObserver prints one line per finished survey.
type ProgressObserver struct {
	w io.Writer
}

// NewProgressObserver returns an observer writing to w. Writes are
// serialized since workers report concurrently.
func NewProgressObserver(w io.Writer) *ProgressObserver {
	return &ProgressObserver{w: &lockedWriter{w: w}}
}

// OnDocumentStart is a no-op; only completions are printed.
func (p *ProgressObserver) OnDocumentStart(string) {}

// OnDocumentEnd prints the status line of a survey.
func (p *ProgressObserver) OnDocumentEnd(res DocumentResult) {
	if res.Status == StatusInvalid {
		fmt.Fprintf(p.w, "%-7s %s: %s\n", res.Status, res.Path, res.Error)
		return
	}
	fmt.Fprintf(p.w, "%-7s %s (%d error(s), %d warning(s), %d auto-fix(es), %d issue(s))\n",
		res.Status, res.Path, res.Summary.Errors, res.Summary.Warnings, res.Summary.AutoFixes, res.StructuralIssues)
}
