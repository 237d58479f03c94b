// Package scenario runs declarative configuration scenarios against
// components built from CUE definitions.
//
// A scenario instantiates one component through a harness, registers
// controller services, applies a list of steps and checks assertions
// about the resulting configuration. Each run uses a fresh in-memory
// journal and logical sequence, so traces are deterministic and can be
// compared against golden files.
//
// # Scenario Format
//
//	name: put_record
//	description: "What this scenario checks"
//	specs:
//	  - ../specs
//	component: PutRecord
//	services:
//	  - id: writer
//	    component: JSONWriter
//	    properties: { Path: /var/out }
//	    enabled: true
//	steps:
//	  - set: { property: "Record Writer", value: writer }
//	    expect: { valid: true }
//	  - set: { property: "Batch Size", value: abc }
//	    expect: { valid: false, explanation: "positive integer" }
//	  - remove: Prefix
//	    expect: { removed: false }
//	  - unavailable: [retry]
//	  - validate: true
//	assertions:
//	  - type: valid
//	    valid: false
//	  - type: violations
//	    subjects: ["Batch Size"]
//	  - type: property
//	    property: "Batch Size"
//	    value: abc
//	  - type: notifications
//	    property: "Batch Size"
//	    count: 1
//	  - type: relationships
//	    relationships: [failure, success]
//	  - type: journal
//	    table: attempts
//	    where: { property: "Batch Size" }
//	    expect: { valid: false }
//
// Spec paths are resolved relative to the scenario file.
//
// # Assertion Types
//
//   - valid: the whole configuration is (or is not) valid
//   - violations: failing results by count and subject order
//   - property: the effective value of one property, or unset
//   - relationships: the available relationship set
//   - notifications: change notifications received for one property
//   - journal: rows of a journal table (attempts, changes, removals,
//     validations) written by this run
package scenario
