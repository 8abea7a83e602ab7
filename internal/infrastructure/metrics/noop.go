package metrics

import "time"

// NoopTelemetry discards every measurement. Used when metrics are
// disabled in configuration.
type NoopTelemetry struct{}

func NewNoopTelemetry() *NoopTelemetry { return &NoopTelemetry{} }

func (NoopTelemetry) RecordStarted(kind string)                           {}
func (NoopTelemetry) RecordCompleted(kind string, duration time.Duration) {}
func (NoopTelemetry) RecordFailed(kind string, reason string)             {}
func (NoopTelemetry) RecordRetried(kind string)                           {}
func (NoopTelemetry) SetActiveRecords(count int)                          {}
func (NoopTelemetry) NotificationPushed(level string)                     {}
