package payment

import (
	"sync"
	"time"

	"github.com/billforge/billforge/internal/logger"
)

// errorLogCapacity bounds the in-memory error ring. Older entries are
// dropped once the cap is reached.
const errorLogCapacity = 50

// LogEntry is one recorded payment failure with its call-site context.
type LogEntry struct {
	Error    *Error         `json:"error"`
	Context  map[string]any `json:"context,omitempty"`
	LoggedAt time.Time      `json:"logged_at"`
}

// ErrorLog records recent payment failures for diagnostics. It never
// fails: logging a payment error must not itself break a payment flow.
type ErrorLog struct {
	mu       sync.Mutex
	entries  []*LogEntry
	capacity int
	logger   *logger.Logger
}

func NewErrorLog(log *logger.Logger) *ErrorLog {
	return &ErrorLog{
		entries:  make([]*LogEntry, 0, errorLogCapacity),
		capacity: errorLogCapacity,
		logger:   log,
	}
}

// Log records a payment error. Nil errors are ignored.
func (l *ErrorLog) Log(err *Error, context map[string]any) {
	if l == nil || err == nil {
		return
	}

	l.mu.Lock()
	l.entries = append(l.entries, &LogEntry{
		Error:    err,
		Context:  context,
		LoggedAt: time.Now().UTC(),
	})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	l.mu.Unlock()

	if l.logger != nil {
		l.logger.Errorw("payment error",
			"error", err.Fields(),
			"context", context,
		)
	}
}

// Entries returns a snapshot of the recorded errors, oldest first.
func (l *ErrorLog) Entries() []*LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make([]*LogEntry, len(l.entries))
	copy(snapshot, l.entries)
	return snapshot
}

// Len returns the number of recorded errors.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
