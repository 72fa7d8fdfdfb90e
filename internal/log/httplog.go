package log

import (
	"sync"
	"time"
)

// HTTP log buffer is separate from the main log output
var httpLogBuffer *LogBuffer
var httpLogBufferOnce sync.Once

// HTTPLogEntry represents an HTTP request/response log entry
type HTTPLogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	DurationMS int64     `json:"duration_ms"`
	Size       int       `json:"size"`
	RemoteAddr string    `json:"remote_addr"`
	UserAgent  string    `json:"user_agent"`
	Error      string    `json:"error,omitempty"`
}

// LogBuffer keeps the most recent entries in a fixed-size ring
type LogBuffer struct {
	mu      sync.RWMutex
	entries []HTTPLogEntry
	next    int
	full    bool
}

// NewLogBuffer creates a buffer holding up to size entries
func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{entries: make([]HTTPLogEntry, size)}
}

// AddEntry stores e, evicting the oldest entry when full
func (b *LogBuffer) AddEntry(e HTTPLogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = e
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
}

// Entries returns the buffered entries, oldest first
func (b *LogBuffer) Entries() []HTTPLogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.full {
		return append([]HTTPLogEntry(nil), b.entries[:b.next]...)
	}
	out := make([]HTTPLogEntry, 0, len(b.entries))
	out = append(out, b.entries[b.next:]...)
	return append(out, b.entries[:b.next]...)
}

// GetHTTPLogBuffer returns the HTTP log buffer instance, creating it if necessary
func GetHTTPLogBuffer() *LogBuffer {
	httpLogBufferOnce.Do(func() {
		httpLogBuffer = NewLogBuffer(1000) // Keep last 1000 HTTP log entries
	})
	return httpLogBuffer
}

// LogHTTPRequest records a finished request in the HTTP log buffer and writes
// it to the main log, at error level for 5xx responses
func LogHTTPRequest(entry HTTPLogEntry) {
	fields := []interface{}{
		"request_id", entry.RequestID,
		"method", entry.Method,
		"path", entry.Path,
		"status", entry.Status,
		"duration_ms", entry.DurationMS,
		"size", entry.Size,
		"remote_addr", entry.RemoteAddr,
	}

	switch {
	case entry.Status >= 500:
		Errorw("request failed", append(fields, "error", entry.Error)...)
	case entry.Error != "":
		Debugw("request rejected", append(fields, "error", entry.Error)...)
	default:
		Infow("request", fields...)
	}

	GetHTTPLogBuffer().AddEntry(entry)
}
