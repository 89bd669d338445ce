package engine

import "time"

// Clock stamps journal rows. Journal ordering comes from the store's
// sequence numbers, so timestamps are informational only.
//
// testutil.DeterministicClock is the test implementation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
