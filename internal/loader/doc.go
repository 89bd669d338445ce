// Package loader reads strata programs written in CUE.
//
// A program is a CUE document with two optional top-level fields:
//
//	definitions: {
//		id: {lambda: {body: {variable: 0}}}
//	}
//	entry: {apply: {function: {reference: "id"}, argument: {reference: "id"}}}
//
// Terms use the same single-key object encoding as term.Marshal, so plain
// JSON programs load unchanged. CUE references may be used to share
// subterms: entry: {put: definitions.id} inlines the definition's body.
package loader
