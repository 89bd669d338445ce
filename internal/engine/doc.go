// Package engine runs the strata pipeline: check, compile, reduce.
//
// A run takes a term and its definitions through three stages:
//
//  1. stratify.Check proves the term stratified.
//  2. compiler.Compile lowers it to an interaction net.
//  3. The net is reduced to normal form, on the accelerated engine when
//     one is configured and on the sequential engine otherwise.
//
// Any accel.Error from the accelerated engine, at staging or during
// reduction, falls back to the sequential engine on a fresh copy of the
// compiled net. The fallback is logged and recorded on the Result; it is
// never an error. Errors from the first two stages, and a sequential
// engine that exceeds its rewrite budget, fail the run.
//
// When a Journal is configured, every run that gets past checking is
// recorded, failed or not.
package engine
