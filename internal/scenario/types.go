package scenario

import (
	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/harness"
)

// Trace event types beyond the harness event kinds.
const (
	TraceUnavailable = "unavailable"
	TraceAnnotate    = "annotate"
	TraceEnable      = "enable"
	TraceDisable     = "disable"
)

// TraceEvent is one observable action of a scenario run.
// Pointer fields distinguish "not applicable" from zero values so the
// JSON snapshot only carries what the event describes.
type TraceEvent struct {
	Seq           int64                        `json:"seq"`
	Type          string                       `json:"type"`
	Property      string                       `json:"property,omitempty"`
	Value         *string                      `json:"value,omitempty"`
	Valid         *bool                        `json:"valid,omitempty"`
	Explanation   string                       `json:"explanation,omitempty"`
	Old           *component.Value             `json:"old,omitempty"`
	New           *component.Value             `json:"new,omitempty"`
	Removed       *bool                        `json:"removed,omitempty"`
	Violations    []component.ValidationResult `json:"violations,omitempty"`
	Service       string                       `json:"service,omitempty"`
	Relationships []string                     `json:"relationships,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	// True if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every observable action in sequence order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addHarnessEvent converts a harness event into a trace entry.
func (r *Result) addHarnessEvent(ev harness.Event) {
	te := TraceEvent{
		Seq:      ev.Seq,
		Type:     string(ev.Kind),
		Property: ev.Property,
	}

	switch ev.Kind {
	case harness.EventAttempt:
		value := ev.Value
		valid := ev.Result.Valid
		te.Value = &value
		te.Valid = &valid
		te.Explanation = ev.Result.Explanation
	case harness.EventChange:
		old, updated := ev.Old, ev.New
		te.Old = &old
		te.New = &updated
	case harness.EventRemove:
		removed := ev.Removed
		te.Removed = &removed
	case harness.EventValidate:
		valid := len(ev.Violations) == 0
		te.Valid = &valid
		te.Violations = ev.Violations
	}

	r.Trace = append(r.Trace, te)
}

// addStepEvent records an action the harness does not emit itself.
func (r *Result) addStepEvent(seq int64, typ string, fill func(*TraceEvent)) {
	te := TraceEvent{Seq: seq, Type: typ}
	if fill != nil {
		fill(&te)
	}
	r.Trace = append(r.Trace, te)
}
