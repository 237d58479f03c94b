package testutil

import "sync/atomic"

// Sequence is a logical clock that orders journal records and trace events.
//
// Sequence numbers are logical, never wall-clock time, so two runs of the
// same scenario produce identical traces. The first call to Next returns 1.
//
// Thread-safety: all methods are safe for concurrent use.
type Sequence struct {
	n atomic.Int64
}

// NewSequence creates a sequence starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next advances the sequence and returns the new value.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

// Current returns the last value handed out, or 0.
func (s *Sequence) Current() int64 {
	return s.n.Load()
}

// Reset rewinds the sequence so the next call to Next returns 1.
func (s *Sequence) Reset() {
	s.n.Store(0)
}
