// Package clock abstracts time operations so time-dependent behavior
// (message timestamps, checkpoint ordering) can be controlled in tests.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// System implements Clock using the system clock. Times are returned in
// UTC so persisted timestamps compare consistently across hosts.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed implements Clock with a constant time, for tests.
type Fixed struct {
	// Time is the value returned by every Now call.
	Time time.Time
}

// Now returns the fixed time.
func (f Fixed) Now() time.Time {
	return f.Time
}

var (
	_ Clock = System{}
	_ Clock = Fixed{}
)
