package clock

import (
	"time"

	portssvc "github.com/dhanarakshak/goals-backend/internal/core/ports/services"
)

// systemClock reports real wall-clock time in UTC.
type systemClock struct{}

// NewSystemClock returns the production clock.
func NewSystemClock() portssvc.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return Truncate(time.Now().UTC())
}

// Truncate drops the time-of-day component, keeping the UTC calendar date.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
