package scenario

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/propharness/internal/component"
	"github.com/roach88/propharness/internal/harness"
	"github.com/roach88/propharness/internal/journal"
	"github.com/roach88/propharness/internal/schema"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", event.Seq, event.Type)
			if event.Property != "" {
				fmt.Fprintf(&buf, " %s", event.Property)
			}
			if event.Value != nil {
				fmt.Fprintf(&buf, " = %q", *event.Value)
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

func (r *runner) evaluateAssertion(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertValid:
		return r.assertValid(a)
	case AssertViolations:
		return r.assertViolations(a)
	case AssertProperty:
		return r.assertProperty(a)
	case AssertRelationships:
		return r.assertRelationships(a)
	case AssertNotifications:
		return r.assertNotifications(a)
	case AssertJournal:
		return assertJournal(ctx, r.journal, r.harness.ID(), a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertValid checks the validity of the whole configuration.
func (r *runner) assertValid(a Assertion) error {
	failures := r.harness.Violations()
	valid := len(failures) == 0
	if valid == *a.Valid {
		return nil
	}

	actual := "configuration is valid"
	if !valid {
		actual = fmt.Sprintf("configuration is invalid: %s", joinResults(failures))
	}
	return &AssertionError{
		Type:     AssertValid,
		Expected: fmt.Sprintf("valid=%t", *a.Valid),
		Actual:   actual,
		Trace:    r.result.Trace,
	}
}

// assertViolations checks the failing results by count and subject order.
func (r *runner) assertViolations(a Assertion) error {
	failures := r.harness.Violations()

	if a.Count != nil && len(failures) != *a.Count {
		return &AssertionError{
			Type:     AssertViolations,
			Expected: fmt.Sprintf("%d violations", *a.Count),
			Actual:   fmt.Sprintf("%d violations: %s", len(failures), joinResults(failures)),
			Trace:    r.result.Trace,
		}
	}

	if a.Subjects != nil {
		subjects := make([]string, len(failures))
		for i, f := range failures {
			subjects[i] = f.Subject
		}
		if diff := cmp.Diff(a.Subjects, subjects); diff != "" {
			return &AssertionError{
				Type:     AssertViolations,
				Expected: fmt.Sprintf("violation subjects %v", a.Subjects),
				Actual:   fmt.Sprintf("violation subjects %v (-want +got):\n%s", subjects, diff),
				Trace:    r.result.Trace,
			}
		}
	}

	return nil
}

// assertProperty checks the effective value of one property.
func (r *runner) assertProperty(a Assertion) error {
	pv, ok := r.harness.PropertyByName(a.Property)
	if !ok {
		return &AssertionError{
			Type:     AssertProperty,
			Expected: fmt.Sprintf("property %q to be known", a.Property),
			Actual:   "property is not supported by the component",
			Trace:    r.result.Trace,
		}
	}

	got := pv.Value()
	want := component.None
	if !a.Unset {
		want = component.Some(*a.Value)
	}
	if got == want {
		return nil
	}

	return &AssertionError{
		Type:     AssertProperty,
		Expected: fmt.Sprintf("%s = %#v", a.Property, want),
		Actual:   fmt.Sprintf("%s = %#v", a.Property, got),
		Trace:    r.result.Trace,
	}
}

// assertRelationships checks the available relationship set, ignoring order.
func (r *runner) assertRelationships(a Assertion) error {
	got := component.RelationshipNames(r.harness.AvailableRelationships())
	want := append([]string(nil), a.Relationships...)
	sort.Strings(want)

	if diff := cmp.Diff(want, got); diff != "" {
		return &AssertionError{
			Type:     AssertRelationships,
			Expected: fmt.Sprintf("available relationships %v", want),
			Actual:   fmt.Sprintf("available relationships %v (-want +got):\n%s", got, diff),
			Trace:    r.result.Trace,
		}
	}
	return nil
}

// modificationSource is implemented by components that record the change
// notifications they receive.
type modificationSource interface {
	Modifications() []schema.Modification
}

// assertNotifications counts the change notifications the component
// received for one property. Components that do not record notifications
// are counted from the change events in the trace.
func (r *runner) assertNotifications(a Assertion) error {
	count := 0
	if src, ok := r.harness.Component().(modificationSource); ok {
		for _, m := range src.Modifications() {
			if component.Key(m.Property) == component.Key(a.Property) {
				count++
			}
		}
	} else {
		for _, te := range r.result.Trace {
			if te.Type == string(harness.EventChange) && component.Key(te.Property) == component.Key(a.Property) {
				count++
			}
		}
	}

	if count != *a.Count {
		return &AssertionError{
			Type:     AssertNotifications,
			Expected: fmt.Sprintf("%d notifications for %s", *a.Count, a.Property),
			Actual:   fmt.Sprintf("%d notifications", count),
			Trace:    r.result.Trace,
		}
	}
	return nil
}

// assertJournal checks rows of a journal table written by this run.
// Queries with parameterized SQL and validates expected values using
// subset semantics. With Count set the number of matching rows is checked;
// with Expect set exactly one row must match.
//
// Security: the table must be a journal table and column names must match a
// whitelist pattern to prevent SQL injection via identifier interpolation.
func assertJournal(ctx context.Context, j *journal.Journal, harnessID string, assertion Assertion) error {
	if assertion.Table == "" {
		return fmt.Errorf("journal assertion requires table name")
	}

	// Identifiers can't be parameterized, so only the fixed journal tables are accepted
	if !journal.IsTable(assertion.Table) {
		return fmt.Errorf("unknown journal table %q: must be one of %v", assertion.Table, journal.Tables)
	}

	where := make(map[string]any, len(assertion.Where)+1)
	for k, v := range assertion.Where {
		where[k] = v
	}
	if _, ok := where["harness_id"]; !ok {
		where["harness_id"] = harnessID
	}

	whereSQL, whereArgs, err := buildWhereClause(where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY seq ASC", assertion.Table, whereSQL)

	rows, err := j.Query(ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	var matched []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		matched = append(matched, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}

	whereDesc := formatWhereClause(assertion.Where)

	if assertion.Count != nil && len(matched) != *assertion.Count {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("%d rows in %s where %s", *assertion.Count, assertion.Table, whereDesc),
			Actual:   fmt.Sprintf("%d rows", len(matched)),
		}
	}

	if len(assertion.Expect) == 0 {
		return nil
	}

	switch {
	case len(matched) == 0:
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, whereDesc),
			Actual:   "row not found",
		}
	case len(matched) > 1:
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, whereDesc),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := matched[0]

	// Subset semantics - only check fields in Expect
	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		expectedValue := assertion.Expect[key]
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertJournal,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}

		if !journalValuesEqual(expectedValue, actualValue) {
			return &AssertionError{
				Type:     AssertJournal,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expectedValue, expectedValue),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}

	return nil
}

// buildWhereClause constructs a parameterized WHERE clause.
// Returns SQL fragment, arguments slice, and error. Keys are sorted for determinism.
//
// Security: Column names are validated against a whitelist pattern to prevent
// SQL injection via identifier interpolation.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		if where[key] == nil {
			clauses = append(clauses, fmt.Sprintf("%s IS NULL", key))
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, toSQLValue(where[key]))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// toSQLValue converts a YAML-decoded value to a SQL-compatible value.
func toSQLValue(v any) any {
	switch val := v.(type) {
	case string, int64:
		return val
	case int:
		return int64(val)
	case bool:
		// SQLite stores booleans as integers
		if val {
			return int64(1)
		}
		return int64(0)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

// journalValuesEqual compares expected and actual journal column values.
// Handles type coercion for SQLite values which may be returned as different types.
func journalValuesEqual(expected, actual any) bool {
	if expected == nil && actual == nil {
		return true
	}
	if expected == nil || actual == nil {
		return false
	}

	// SQLite may hand text back as []byte
	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}

	switch exp := expected.(type) {
	case string:
		if actualStr, ok := actual.(string); ok {
			return exp == actualStr
		}
		return false
	case int:
		if actualInt, ok := actual.(int64); ok {
			return int64(exp) == actualInt
		}
		if actualInt, ok := actual.(int); ok {
			return exp == actualInt
		}
		return false
	case int64:
		if actualInt, ok := actual.(int64); ok {
			return exp == actualInt
		}
		return false
	case bool:
		if actualBool, ok := actual.(bool); ok {
			return exp == actualBool
		}
		// SQLite stores booleans as integers
		if actualInt, ok := actual.(int64); ok {
			return exp == (actualInt != 0)
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}

func joinResults(results []component.ValidationResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.String()
	}
	return strings.Join(parts, "; ")
}
