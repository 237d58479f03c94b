package harness

import (
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/propharness/internal/journal"
)

// IDGenerator produces harness identifiers.
// Implemented by UUIDv7Generator (default) and testutil.FixedIDs (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sequencer hands out logical sequence numbers for events.
// testutil.Sequence satisfies it.
type Sequencer interface {
	Next() int64
}

type counter struct {
	n atomic.Int64
}

func (c *counter) Next() int64 {
	return c.n.Add(1)
}

// Option configures a Harness.
type Option func(*Harness)

// WithID fixes the harness identifier. It takes precedence over WithIDGenerator.
func WithID(id string) Option {
	return func(h *Harness) {
		h.id = id
	}
}

// WithIDGenerator sets the generator used when no fixed ID is given.
// Harnesses created by NewForService inherit it.
func WithIDGenerator(g IDGenerator) Option {
	return func(h *Harness) {
		h.ids = g
	}
}

// WithName sets the kind used in validation failure messages.
// Defaults to the component's type name.
func WithName(name string) Option {
	return func(h *Harness) {
		h.name = name
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithJournal records every event into j. The caller owns j and closes it.
func WithJournal(j *journal.Journal) Option {
	return func(h *Harness) {
		h.journal = j
	}
}

// WithListener registers a function called with every event, after the
// component has been notified. Listeners run in registration order.
func WithListener(l Listener) Option {
	return func(h *Harness) {
		if l != nil {
			h.listeners = append(h.listeners, l)
		}
	}
}

// WithSequence sets the logical clock stamped on events.
func WithSequence(s Sequencer) Option {
	return func(h *Harness) {
		if s != nil {
			h.seq = s
		}
	}
}

// WithExpressionValidation enables expression validation from the start.
func WithExpressionValidation() Option {
	return func(h *Harness) {
		h.expressionValidation = true
	}
}
