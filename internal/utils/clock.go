package utils

import "time"

// Clock supplies write-time timestamps so tests can pin ledger ordering.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func NewClock() Clock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now()
}

// Timestamp returns the clock's time in UTC at microsecond precision, the
// resolution PostgreSQL keeps for timestamptz.
func Timestamp(c Clock) time.Time {
	return c.Now().UTC().Truncate(time.Microsecond)
}
