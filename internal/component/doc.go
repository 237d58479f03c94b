// Package component defines the contract between a configurable component
// and the harness that configures it.
//
// This package contains the shared vocabulary only: property descriptors,
// optional values, validation results, relationships and the capability
// interfaces a component implements. All other internal packages import
// component; component imports nothing internal.
//
// Key design constraints:
//   - Property identity is the descriptor name, NFC-normalised (see Key).
//     Callers may pass partially populated descriptors; only the name counts.
//   - Absence is explicit: Value distinguishes "unset" from the empty string.
//   - Capabilities are interfaces. A component that routes output also
//     implements Router; a controller service also implements
//     ControllerService. The harness discovers them with type assertions.
//   - Validation never fails fast. Helpers such as ValidateProperties
//     collect every failing result.
package component
