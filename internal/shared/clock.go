package shared

import "time"

// Clock abstracts the current time so slug derivation and timestamps are
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the configured instant.
func (c FixedClock) Now() time.Time { return c.At }
