// Package schema compiles declarative component definitions written in CUE
// into components the harness can configure.
//
// A definitions file declares components under the top-level "component"
// field:
//
//	component: PutRecord: {
//		kind:        "processor"
//		description: "Writes records in batches"
//		property: "Batch Size": {
//			default:   "10"
//			required:  true
//			validator: "positive_integer"
//		}
//		relationship: {
//			success: "Records written"
//			failure: "Records that could not be written"
//		}
//		rule: [{when: "Mode", equals: "batch", require: ["Batch Size"]}]
//	}
//
// CompileComponent turns one such value into a Definition, Validate checks
// a Definition for authoring mistakes (codes E100-E199) and Definition.New
// instantiates it. Load does all of this for a directory.
package schema
