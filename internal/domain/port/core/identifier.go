package core

// IDProvider abstracts identifier generation so that record and notification
// ids stay deterministic in tests
type IDProvider interface {
	// NewID returns a globally unique identifier
	NewID() string
}
