package testutil

import (
	"sync"
	"time"
)

// CountingTelemetry tallies telemetry events for assertions
type CountingTelemetry struct {
	mu            sync.Mutex
	Started       map[string]int
	Completed     map[string]int
	Failed        map[string]map[string]int
	Retried       map[string]int
	ActiveRecords int
	Notifications map[string]int
}

// NewCountingTelemetry creates an empty counter set
func NewCountingTelemetry() *CountingTelemetry {
	return &CountingTelemetry{
		Started:       make(map[string]int),
		Completed:     make(map[string]int),
		Failed:        make(map[string]map[string]int),
		Retried:       make(map[string]int),
		Notifications: make(map[string]int),
	}
}

// RecordStarted counts a started record
func (t *CountingTelemetry) RecordStarted(kind string) {
	t.mu.Lock()
	t.Started[kind]++
	t.mu.Unlock()
}

// RecordCompleted counts a completion
func (t *CountingTelemetry) RecordCompleted(kind string, _ time.Duration) {
	t.mu.Lock()
	t.Completed[kind]++
	t.mu.Unlock()
}

// RecordFailed counts a failure by reason
func (t *CountingTelemetry) RecordFailed(kind string, reason string) {
	t.mu.Lock()
	if t.Failed[kind] == nil {
		t.Failed[kind] = make(map[string]int)
	}
	t.Failed[kind][reason]++
	t.mu.Unlock()
}

// RecordRetried counts a retry
func (t *CountingTelemetry) RecordRetried(kind string) {
	t.mu.Lock()
	t.Retried[kind]++
	t.mu.Unlock()
}

// SetActiveRecords stores the latest gauge value
func (t *CountingTelemetry) SetActiveRecords(count int) {
	t.mu.Lock()
	t.ActiveRecords = count
	t.mu.Unlock()
}

// NotificationPushed counts a notification by level
func (t *CountingTelemetry) NotificationPushed(level string) {
	t.mu.Lock()
	t.Notifications[level]++
	t.mu.Unlock()
}

// FailedCount returns the tally for one kind and reason
func (t *CountingTelemetry) FailedCount(kind, reason string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Failed[kind][reason]
}

// StartedCount returns the tally for one kind
func (t *CountingTelemetry) StartedCount(kind string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Started[kind]
}

// CompletedCount returns the tally for one kind
func (t *CountingTelemetry) CompletedCount(kind string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Completed[kind]
}
