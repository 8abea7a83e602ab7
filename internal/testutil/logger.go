package testutil

import (
	"sync"

	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// LogEntry is one captured log call
type LogEntry struct {
	Level   core.LogLevel
	Message string
	Fields  map[string]any
}

// CapturingLogger records log calls for assertions
type CapturingLogger struct {
	mu      sync.Mutex
	level   core.LogLevel
	entries []LogEntry
}

// NewCapturingLogger creates an empty capturing logger
func NewCapturingLogger() *CapturingLogger {
	return &CapturingLogger{level: core.LogLevelDebug}
}

// SetLevel sets the minimum level; capture itself is unfiltered
func (l *CapturingLogger) SetLevel(level core.LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel returns the configured level
func (l *CapturingLogger) GetLevel() core.LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debug records a debug entry
func (l *CapturingLogger) Debug(message string, fields map[string]any) {
	l.record(core.LogLevelDebug, message, fields)
}

// Info records an info entry
func (l *CapturingLogger) Info(message string, fields map[string]any) {
	l.record(core.LogLevelInfo, message, fields)
}

// Warn records a warning entry
func (l *CapturingLogger) Warn(message string, fields map[string]any) {
	l.record(core.LogLevelWarn, message, fields)
}

// Error records an error entry
func (l *CapturingLogger) Error(message string, fields map[string]any) {
	l.record(core.LogLevelError, message, fields)
}

// Flush is a no-op
func (l *CapturingLogger) Flush() error { return nil }

// Entries returns a copy of everything captured so far
func (l *CapturingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Contains reports whether any captured message equals msg
func (l *CapturingLogger) Contains(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Message == msg {
			return true
		}
	}
	return false
}

func (l *CapturingLogger) record(level core.LogLevel, message string, fields map[string]any) {
	l.mu.Lock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: message, Fields: fields})
	l.mu.Unlock()
}
