package shared

import "time"

// Clock abstracts time for deterministic tests
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current UTC time
type SystemClock struct{}

// Now returns the current time in UTC
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant; for tests
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}
