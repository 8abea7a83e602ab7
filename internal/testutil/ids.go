package testutil

import (
	"fmt"
	"sync/atomic"
)

// SeqIDs issues deterministic sequential identifiers
type SeqIDs struct {
	prefix  string
	counter atomic.Uint64
}

// NewSeqIDs creates a provider issuing "<prefix>-1", "<prefix>-2", ...
func NewSeqIDs(prefix string) *SeqIDs {
	return &SeqIDs{prefix: prefix}
}

// NewID returns the next identifier in the sequence
func (s *SeqIDs) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.counter.Add(1))
}
