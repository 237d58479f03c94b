package scenario

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/propharness/internal/journal"
)

// createTestJournal opens an in-memory journal with three attempts for
// harness h1 and one for h2.
func createTestJournal(t *testing.T) *journal.Journal {
	t.Helper()

	j, err := journal.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	ctx := context.Background()
	attempts := []journal.Attempt{
		{Seq: 1, HarnessID: "h1", Property: "Batch Size", Value: "abc", Valid: false, Explanation: "value is not a positive integer"},
		{Seq: 2, HarnessID: "h1", Property: "Batch Size", Value: "25", Valid: true},
		{Seq: 3, HarnessID: "h1", Property: "Mode", Value: "batch", Valid: true},
		{Seq: 1, HarnessID: "h2", Property: "Batch Size", Value: "abc", Valid: false},
	}
	for _, a := range attempts {
		require.NoError(t, j.RecordAttempt(ctx, a))
	}
	return j
}

func TestAssertJournal_RowFound_Pass(t *testing.T) {
	j := createTestJournal(t)

	err := assertJournal(context.Background(), j, "h1", Assertion{
		Type:   AssertJournal,
		Table:  "attempts",
		Where:  map[string]any{"property": "Batch Size", "value": "abc"},
		Expect: map[string]any{"valid": false, "seq": 1, "explanation": "value is not a positive integer"},
	})
	assert.NoError(t, err)
}

func TestAssertJournal_ScopedToHarness(t *testing.T) {
	j := createTestJournal(t)

	err := assertJournal(context.Background(), j, "h2", Assertion{
		Type:  AssertJournal,
		Table: "attempts",
		Where: map[string]any{"property": "Batch Size"},
		Count: intPtr(1),
	})
	assert.NoError(t, err)

	err = assertJournal(context.Background(), j, "h1", Assertion{
		Type:  AssertJournal,
		Table: "attempts",
		Where: map[string]any{"property": "Batch Size"},
		Count: intPtr(2),
	})
	assert.NoError(t, err)
}

func TestAssertJournal_CountMismatch_Fail(t *testing.T) {
	j := createTestJournal(t)

	err := assertJournal(context.Background(), j, "h1", Assertion{
		Type:  AssertJournal,
		Table: "attempts",
		Where: map[string]any{"valid": true},
		Count: intPtr(3),
	})
	require.Error(t, err)

	var assertErr *AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Equal(t, AssertJournal, assertErr.Type)
	assert.Equal(t, "3 rows in attempts where valid=true", assertErr.Expected)
	assert.Equal(t, "2 rows", assertErr.Actual)
}

func TestAssertJournal_RowNotFound_Fail(t *testing.T) {
	j := createTestJournal(t)

	err := assertJournal(context.Background(), j, "h1", Assertion{
		Type:   AssertJournal,
		Table:  "attempts",
		Where:  map[string]any{"property": "Prefix"},
		Expect: map[string]any{"valid": true},
	})

	var assertErr *AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Equal(t, "row not found", assertErr.Actual)
}

func TestAssertJournal_Ambiguous_Fail(t *testing.T) {
	j := createTestJournal(t)

	err := assertJournal(context.Background(), j, "h1", Assertion{
		Type:   AssertJournal,
		Table:  "attempts",
		Where:  map[string]any{"property": "Batch Size"},
		Expect: map[string]any{"valid": true},
	})

	var assertErr *AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Contains(t, assertErr.Actual, "multiple rows matched")
}

func TestAssertJournal_ValueMismatch_Fail(t *testing.T) {
	j := createTestJournal(t)

	err := assertJournal(context.Background(), j, "h1", Assertion{
		Type:   AssertJournal,
		Table:  "attempts",
		Where:  map[string]any{"property": "Mode"},
		Expect: map[string]any{"value": "single"},
	})

	var assertErr *AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Equal(t, `field "value" = single (type string)`, assertErr.Expected)
	assert.Equal(t, `field "value" = batch (type string)`, assertErr.Actual)
}

func TestAssertJournal_MissingColumn_Fail(t *testing.T) {
	j := createTestJournal(t)

	err := assertJournal(context.Background(), j, "h1", Assertion{
		Type:   AssertJournal,
		Table:  "attempts",
		Where:  map[string]any{"property": "Mode"},
		Expect: map[string]any{"colour": "red"},
	})

	var assertErr *AssertionError
	require.ErrorAs(t, err, &assertErr)
	assert.Contains(t, assertErr.Actual, `field "colour" not present`)
}

func TestAssertJournal_UnknownTable(t *testing.T) {
	j := createTestJournal(t)

	for _, table := range []string{"nonexistent", "sqlite_master", "attempts; DROP TABLE attempts"} {
		t.Run(table, func(t *testing.T) {
			err := assertJournal(context.Background(), j, "h1", Assertion{
				Type:  AssertJournal,
				Table: table,
				Count: intPtr(0),
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unknown journal table")
		})
	}

	n, err := j.Count(context.Background(), "attempts", "h1")
	require.NoError(t, err)
	assert.Positive(t, n, "attempts table is untouched")
}

func TestAssertJournal_NullColumn(t *testing.T) {
	j, err := journal.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	old := "rec"
	require.NoError(t, j.RecordChange(context.Background(), journal.Change{
		Seq: 1, HarnessID: "h1", Property: "Prefix", OldValue: &old, NewValue: nil,
	}))

	err = assertJournal(context.Background(), j, "h1", Assertion{
		Type:   AssertJournal,
		Table:  "changes",
		Where:  map[string]any{"new_value": nil},
		Expect: map[string]any{"old_value": "rec"},
	})
	assert.NoError(t, err)
}

func TestBuildWhereClause_Empty(t *testing.T) {
	sql, args, err := buildWhereClause(nil)
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Nil(t, args)
}

func TestBuildWhereClause_MultipleKeys_SortedDeterministic(t *testing.T) {
	sql, args, err := buildWhereClause(map[string]any{
		"value":    "abc",
		"property": "Batch Size",
		"valid":    false,
	})
	require.NoError(t, err)
	assert.Equal(t, "property = ? AND valid = ? AND value = ?", sql)
	assert.Equal(t, []any{"Batch Size", int64(0), "abc"}, args)
}

func TestBuildWhereClause_NoInterpolation(t *testing.T) {
	sql, args, err := buildWhereClause(map[string]any{"property": "x' OR '1'='1"})
	require.NoError(t, err)
	assert.NotContains(t, sql, "OR")
	assert.Equal(t, []any{"x' OR '1'='1"}, args)
}

func TestBuildWhereClause_InvalidColumnName(t *testing.T) {
	for _, col := range []string{"1col", "col name", "col;drop", ""} {
		_, _, err := buildWhereClause(map[string]any{col: "x"})
		assert.Error(t, err, "column %q", col)
	}
}

func TestBuildWhereClause_Null(t *testing.T) {
	sql, args, err := buildWhereClause(map[string]any{"old_value": nil})
	require.NoError(t, err)
	assert.Equal(t, "old_value IS NULL", sql)
	assert.Empty(t, args)
}

func TestToSQLValue_Types(t *testing.T) {
	assert.Equal(t, "abc", toSQLValue("abc"))
	assert.Equal(t, int64(3), toSQLValue(3))
	assert.Equal(t, int64(4), toSQLValue(int64(4)))
	assert.Equal(t, int64(1), toSQLValue(true))
	assert.Equal(t, int64(0), toSQLValue(false))
	assert.Equal(t, "1.5", toSQLValue(1.5))
}

func TestFormatWhereClause(t *testing.T) {
	assert.Equal(t, "(no conditions)", formatWhereClause(nil))
	assert.Equal(t, "property=Mode AND valid=true",
		formatWhereClause(map[string]any{"valid": true, "property": "Mode"}))
}

func TestJournalValuesEqual(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"strings", "a", "a", true},
		{"string bytes", "a", []byte("a"), true},
		{"string mismatch", "a", "b", false},
		{"int vs int64", 1, int64(1), true},
		{"int64", int64(2), int64(2), true},
		{"bool vs int64 true", true, int64(1), true},
		{"bool vs int64 false", false, int64(0), true},
		{"bool mismatch", true, int64(0), false},
		{"both nil", nil, nil, true},
		{"nil expected", nil, "a", false},
		{"nil actual", "a", nil, false},
		{"type mismatch", "1", int64(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, journalValuesEqual(tt.expected, tt.actual))
		})
	}
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	value := "abc"
	valid := false
	err := &AssertionError{
		Type:     AssertProperty,
		Expected: `Batch Size = Some("25")`,
		Actual:   `Batch Size = Some("abc")`,
		Trace: []TraceEvent{
			{Seq: 1, Type: "attempt", Property: "Batch Size", Value: &value, Valid: &valid},
			{Seq: 2, Type: "validate"},
		},
	}

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "Assertion failed: property\n"))
	assert.Contains(t, msg, `  Expected: Batch Size = Some("25")`)
	assert.Contains(t, msg, `  Actual: Batch Size = Some("abc")`)
	assert.Contains(t, msg, `  [1] attempt Batch Size = "abc"`)
	assert.Contains(t, msg, "  [2] validate\n")
}

func TestAssertionError_NoTrace(t *testing.T) {
	err := &AssertionError{Type: AssertJournal, Expected: "a", Actual: "b"}
	assert.NotContains(t, err.Error(), "Full trace")
}
