package core

import "time"

// Timestamp is the canonical time representation for domain events.
// All acquisition and window timestamps are stored in UTC.
type Timestamp time.Time

// NewTimestamp creates a Timestamp from a time.Time, normalized to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC())
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Year returns the calendar year of the timestamp.
func (t Timestamp) Year() int {
	return time.Time(t).Year()
}

// Before reports whether t is before other.
func (t Timestamp) Before(other Timestamp) bool {
	return time.Time(t).Before(time.Time(other))
}

// After reports whether t is after other.
func (t Timestamp) After(other Timestamp) bool {
	return time.Time(t).After(time.Time(other))
}

// FractionalYears returns the signed number of fractional years between t and
// the given epoch. Used when a trend's independent variable is expressed in
// calendar time rather than window ordinals.
func (t Timestamp) FractionalYears(epoch time.Time) float64 {
	const hoursPerYear = 24 * 365.2425
	return time.Time(t).Sub(epoch).Hours() / hoursPerYear
}

// MidYear returns a representative timestamp for a calendar year (July 1, UTC).
func MidYear(year int) Timestamp {
	return Timestamp(time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC))
}
