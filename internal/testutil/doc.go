// Package testutil provides deterministic helpers and fixture components
// for harness, journal and scenario tests.
package testutil
