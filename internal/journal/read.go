package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
)

// Tables lists the journal tables, in the order records are usually read.
var Tables = []string{"attempts", "changes", "removals", "validations"}

// IsTable reports whether name is one of the journal tables.
func IsTable(name string) bool {
	return slices.Contains(Tables, name)
}

// Attempts returns every attempt recorded for harnessID in seq order.
func (j *Journal) Attempts(ctx context.Context, harnessID string) ([]Attempt, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, harness_id, property, value, valid, explanation
		FROM attempts
		WHERE harness_id = ?
		ORDER BY seq ASC, id ASC
	`, harnessID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		var a Attempt
		var valid int
		if err := rows.Scan(&a.Seq, &a.HarnessID, &a.Property, &a.Value, &valid, &a.Explanation); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Valid = valid != 0
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// Changes returns every change notification recorded for harnessID in seq
// order.
func (j *Journal) Changes(ctx context.Context, harnessID string) ([]Change, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, harness_id, property, old_value, new_value
		FROM changes
		WHERE harness_id = ?
		ORDER BY seq ASC, id ASC
	`, harnessID)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var c Change
		var oldValue, newValue sql.NullString
		if err := rows.Scan(&c.Seq, &c.HarnessID, &c.Property, &oldValue, &newValue); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		c.OldValue = fromNullable(oldValue)
		c.NewValue = fromNullable(newValue)
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}
	return changes, nil
}

// Removals returns every removal recorded for harnessID in seq order.
func (j *Journal) Removals(ctx context.Context, harnessID string) ([]Removal, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, harness_id, property, removed
		FROM removals
		WHERE harness_id = ?
		ORDER BY seq ASC, id ASC
	`, harnessID)
	if err != nil {
		return nil, fmt.Errorf("query removals: %w", err)
	}
	defer rows.Close()

	removals := []Removal{}
	for rows.Next() {
		var r Removal
		var removed int
		if err := rows.Scan(&r.Seq, &r.HarnessID, &r.Property, &removed); err != nil {
			return nil, fmt.Errorf("scan removal: %w", err)
		}
		r.Removed = removed != 0
		removals = append(removals, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate removals: %w", err)
	}
	return removals, nil
}

// Validations returns every validation run recorded for harnessID in seq
// order.
func (j *Journal) Validations(ctx context.Context, harnessID string) ([]Validation, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, harness_id, report
		FROM validations
		WHERE harness_id = ?
		ORDER BY seq ASC, id ASC
	`, harnessID)
	if err != nil {
		return nil, fmt.Errorf("query validations: %w", err)
	}
	defer rows.Close()

	validations := []Validation{}
	for rows.Next() {
		var v Validation
		var report string
		if err := rows.Scan(&v.Seq, &v.HarnessID, &report); err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		if err := json.Unmarshal([]byte(report), &v.Violations); err != nil {
			return nil, fmt.Errorf("unmarshal validation report seq=%d: %w", v.Seq, err)
		}
		validations = append(validations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validations: %w", err)
	}
	return validations, nil
}

// Count returns the number of rows for harnessID in one of the journal
// tables: attempts, changes, removals or validations.
func (j *Journal) Count(ctx context.Context, table, harnessID string) (int, error) {
	if !IsTable(table) {
		return 0, fmt.Errorf("unknown journal table %q", table)
	}

	var n int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE harness_id = ?", harnessID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func fromNullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
