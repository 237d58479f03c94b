package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Attempt is one SetProperty call.
type Attempt struct {
	Seq         int64
	HarnessID   string
	Property    string
	Value       string
	Valid       bool
	Explanation string
}

// Change is one change notification delivered to the component.
// OldValue and NewValue are nil when the property had no value.
type Change struct {
	Seq       int64
	HarnessID string
	Property  string
	OldValue  *string
	NewValue  *string
}

// Removal is one RemoveProperty call.
type Removal struct {
	Seq       int64
	HarnessID string
	Property  string
	Removed   bool
}

// Violation is one failing validation result as stored in a report.
type Violation struct {
	Subject     string `json:"subject"`
	Input       string `json:"input"`
	Explanation string `json:"explanation"`
}

// Validation is one Validate run.
type Validation struct {
	Seq        int64
	HarnessID  string
	Violations []Violation
}

// RecordAttempt appends a SetProperty attempt.
func (j *Journal) RecordAttempt(ctx context.Context, a Attempt) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO attempts (seq, harness_id, property, value, valid, explanation)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.Seq, a.HarnessID, a.Property, a.Value, boolToInt(a.Valid), a.Explanation)
	if err != nil {
		return fmt.Errorf("record attempt %s seq=%d: %w", a.Property, a.Seq, err)
	}
	return nil
}

// RecordChange appends a change notification.
func (j *Journal) RecordChange(ctx context.Context, c Change) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO changes (seq, harness_id, property, old_value, new_value)
		VALUES (?, ?, ?, ?, ?)
	`, c.Seq, c.HarnessID, c.Property, nullable(c.OldValue), nullable(c.NewValue))
	if err != nil {
		return fmt.Errorf("record change %s seq=%d: %w", c.Property, c.Seq, err)
	}
	return nil
}

// RecordRemoval appends a RemoveProperty call.
func (j *Journal) RecordRemoval(ctx context.Context, r Removal) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO removals (seq, harness_id, property, removed)
		VALUES (?, ?, ?, ?)
	`, r.Seq, r.HarnessID, r.Property, boolToInt(r.Removed))
	if err != nil {
		return fmt.Errorf("record removal %s seq=%d: %w", r.Property, r.Seq, err)
	}
	return nil
}

// RecordValidation appends a Validate run. The violations are stored as a
// JSON report so the journal does not need a table per result.
func (j *Journal) RecordValidation(ctx context.Context, v Validation) error {
	violations := v.Violations
	if violations == nil {
		violations = []Violation{}
	}
	report, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("marshal validation report: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO validations (seq, harness_id, violations, report)
		VALUES (?, ?, ?, ?)
	`, v.Seq, v.HarnessID, len(violations), string(report))
	if err != nil {
		return fmt.Errorf("record validation seq=%d: %w", v.Seq, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
