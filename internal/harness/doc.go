// Package harness runs reduction scenarios against every engine.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: shared_identity
//	description: "A boxed identity shared by a fan"
//	program: ../programs/prelude.cue   # optional, relative to the scenario
//	definitions:                       # optional, merged over the program's
//	  twice: {lambda: {body: {variable: 0}}}
//	entry: {reference: twice}          # optional if the program has one
//	engines: [sequential, accelerated] # default: both
//	expect:
//	  outcome: ok                      # ok | check_failed | compile_failed | reduce_failed | verify_failed
//	  error: AFFINE_REUSED             # error code, for failed outcomes
//	  rewrites: 3
//	  result: {lambda: {body: {variable: 0}}}
//	  live: 1
//
// Terms use the term.FromValue encoding.
//
// # Agreement
//
// Besides the expect clause, every engine must agree with the first: same
// outcome, same rewrite count, and nets equivalent from the interface.
//
// # Deterministic Testing
//
// Runs use a fixed run ID, testutil.DeterministicClock and an in-memory
// journal, so snapshots compared with RunWithGolden are byte-stable.
package harness
