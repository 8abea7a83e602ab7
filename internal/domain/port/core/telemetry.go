package core

import "time"

// Telemetry collects operational counters for the lifecycle pipeline. The
// domain reports events; what happens to them (Prometheus, logs, nothing) is
// an adapter concern.
type Telemetry interface {
	// RecordStarted counts a new lifecycle record of a kind
	RecordStarted(kind string)
	// RecordCompleted counts a completion and observes its wall time
	RecordCompleted(kind string, duration time.Duration)
	// RecordFailed counts a failure with its short classification
	RecordFailed(kind string, reason string)
	// RecordRetried counts an explicit retry
	RecordRetried(kind string)
	// SetActiveRecords gauges the current working set size
	SetActiveRecords(count int)
	// NotificationPushed counts an emitted player notification
	NotificationPushed(level string)
}
