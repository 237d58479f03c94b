package harness

import (
	"context"
	"fmt"

	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/journal"
)

// EventKind identifies what an Event describes.
type EventKind string

const (
	// EventAttempt is emitted for every SetProperty call.
	EventAttempt EventKind = "attempt"
	// EventChange is emitted after the component was notified of a change.
	EventChange EventKind = "change"
	// EventRemove is emitted for every RemoveProperty call.
	EventRemove EventKind = "remove"
	// EventValidate is emitted after every Validate run.
	EventValidate EventKind = "validate"
)

// Event describes one observable harness action.
type Event struct {
	Kind      EventKind
	Seq       int64
	HarnessID string
	Property  string

	// Attempt
	Value  string
	Result component.ValidationResult

	// Change
	Old component.Value
	New component.Value

	// Remove
	Removed bool

	// Validate
	Violations []component.ValidationResult
}

// Listener observes harness events. It must not mutate the harness.
type Listener func(Event)

func (h *Harness) emit(ev Event) {
	ev.Seq = h.seq.Next()
	ev.HarnessID = h.id

	for _, l := range h.listeners {
		l(ev)
	}

	if h.journal == nil {
		return
	}
	if err := h.record(ev); err != nil {
		h.logger.Warn("journal write failed",
			"harness", h.id,
			"event", ev.Kind,
			"seq", ev.Seq,
			"error", err)
	}
}

// record writes ev to the journal. Core calls never block, so the
// background context is used.
func (h *Harness) record(ev Event) error {
	ctx := context.Background()

	switch ev.Kind {
	case EventAttempt:
		return h.journal.RecordAttempt(ctx, journal.Attempt{
			Seq:         ev.Seq,
			HarnessID:   ev.HarnessID,
			Property:    ev.Property,
			Value:       ev.Value,
			Valid:       ev.Result.Valid,
			Explanation: ev.Result.Explanation,
		})
	case EventChange:
		return h.journal.RecordChange(ctx, journal.Change{
			Seq:       ev.Seq,
			HarnessID: ev.HarnessID,
			Property:  ev.Property,
			OldValue:  valuePtr(ev.Old),
			NewValue:  valuePtr(ev.New),
		})
	case EventRemove:
		return h.journal.RecordRemoval(ctx, journal.Removal{
			Seq:       ev.Seq,
			HarnessID: ev.HarnessID,
			Property:  ev.Property,
			Removed:   ev.Removed,
		})
	case EventValidate:
		violations := make([]journal.Violation, len(ev.Violations))
		for i, v := range ev.Violations {
			violations[i] = journal.Violation{
				Subject:     v.Subject,
				Input:       v.Input,
				Explanation: v.Explanation,
			}
		}
		return h.journal.RecordValidation(ctx, journal.Validation{
			Seq:        ev.Seq,
			HarnessID:  ev.HarnessID,
			Violations: violations,
		})
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

func valuePtr(v component.Value) *string {
	s, ok := v.Get()
	if !ok {
		return nil
	}
	return &s
}
