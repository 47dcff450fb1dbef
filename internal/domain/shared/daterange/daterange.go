package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: check-out cannot precede check-in")

// StayRange is an inclusive [check-in, check-out] pair of UTC calendar days.
// Both endpoints count as booked nights: a same-day stay is one night.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both instants to UTC calendar days and validates ordering.
// Time-of-day is ignored.
func New(checkIn, checkOut time.Time) (StayRange, error) {
	in := DayOf(checkIn)
	out := DayOf(checkOut)
	if out.Before(in) {
		return StayRange{}, ErrInvalidRange
	}
	return StayRange{CheckIn: in, CheckOut: out}, nil
}

// DayOf returns the UTC midnight of the calendar day containing t.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights is the inclusive day count of the range.
func (r StayRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours()/24) + 1
}

// Days yields every UTC day of the range in order, check-in first.
func (r StayRange) Days() []time.Time {
	days := make([]time.Time, 0, r.Nights())
	for cursor := r.CheckIn; !cursor.After(r.CheckOut); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, cursor)
	}
	return days
}

// Overlaps reports whether the two inclusive ranges share at least one day.
func (r StayRange) Overlaps(other StayRange) bool {
	return !r.CheckIn.After(other.CheckOut) && !other.CheckIn.After(r.CheckOut)
}
