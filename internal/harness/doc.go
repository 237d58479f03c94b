// Package harness runs a property-driven component outside its production
// runtime so tests can configure it, validate it and watch it react.
//
// A Harness owns:
//   - the property store: the values configured on the component, keyed by
//     descriptor identity, with descriptor defaults filling any gaps
//   - the controller service registry: nested configurations for services
//     the component references, each with its own property store
//   - the relationship overlay: which declared relationships are currently
//     unavailable
//
// Every mutation is synchronous. SetProperty validates the new value,
// commits it whether or not it is valid, and calls OnPropertyModified
// before returning when the effective value changed. Validate asks the
// component to check its whole configuration and reports every failure.
//
// # Determinism
//
// Events carry a logical sequence number and never wall-clock time. Pass
// WithID (or a fixed IDGenerator) and WithSequence to make journals and
// listener output reproducible across runs.
//
// # Concurrency
//
// A Harness is not safe for concurrent mutation; callers serialise access.
// The unavailable relationship set is the one exception: it is swapped
// atomically and may be read from any goroutine.
package harness
