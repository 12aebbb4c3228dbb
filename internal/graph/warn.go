package graph

import (
	"sync"

	"github.com/opd-ai/go-plotutils/pkg/plot"
)

// Warner logs each distinct warning message once.
type Warner struct {
	mu   sync.Mutex
	log  plot.Logger
	seen map[string]bool
}

// NewWarner returns a Warner logging to log; nil discards warnings.
func NewWarner(log plot.Logger) *Warner {
	if log == nil {
		log = plot.NopLogger()
	}
	return &Warner{log: log, seen: make(map[string]bool)}
}

// Warn logs msg unless it was logged before, and reports whether it did.
func (w *Warner) Warn(msg string, args ...any) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[msg] {
		return false
	}
	w.seen[msg] = true
	w.log.Warn(msg, args...)
	return true
}
