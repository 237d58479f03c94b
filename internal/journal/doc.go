// Package journal records what happened to a harness in an in-memory SQLite
// database so tests can query it after the fact.
//
// The journal is append-only and holds four record kinds:
//   - attempts: every SetProperty call, valid or not, with its result
//   - changes: every change notification delivered to the component
//   - removals: every RemoveProperty call and whether anything was removed
//   - validations: every Validate run with its failing results
//
// Ordering uses the logical seq supplied by the caller, never timestamps,
// with the row id as a tie-breaker. All reads are ORDER BY seq ASC, id ASC.
//
// The harness opens journals at ":memory:". Nothing survives the process;
// Open accepts a file path only so the CLI and tests can inspect a run.
//
// # Database Configuration
//
//   - One connection: ":memory:" databases are per-connection
//   - busy_timeout=5000
//   - foreign_keys=ON
package journal
