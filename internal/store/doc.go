// Package store is the SQLite reduction journal.
//
// A term is stored once, as canonical JSON keyed by term.Hash, so every run
// of the same program points at the same row however it was loaded. A run
// row records which engine produced the result, whether the accelerated
// engine fell back, the rewrite count, the net statistics and the error of
// a failed run. Rows are ordered by seq, never by timestamp, and writing
// the same term or run twice stores it once.
//
// The journal layout version lives in PRAGMA user_version; Open refuses a
// journal stamped by a newer layout.
package store
