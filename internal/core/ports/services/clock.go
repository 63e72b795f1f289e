package services

import "time"

// Clock supplies "now" to everything date-sensitive (deadline lead times,
// cadence computation, start date defaults) so tests can pin time.
type Clock interface {
	// Now returns the current instant in UTC.
	Now() time.Time

	// Today returns the current calendar date in UTC, truncated to midnight.
	Today() time.Time
}
