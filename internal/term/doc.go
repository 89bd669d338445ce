// Package term provides the expression tree that the rest of strata
// consumes: de Bruijn indexed terms with erasure and box markers.
//
// This package contains the data model and its structural operations only.
// All other internal packages import term; term imports nothing internal.
//
// Key design constraints:
//   - Variables are de Bruijn indices, never names
//   - Term is a closed sum type (sealed interface)
//   - Terms are immutable once built; Substitute and Shift return new trees
//   - Serialization is a transparent pass-through of the field structure
package term
