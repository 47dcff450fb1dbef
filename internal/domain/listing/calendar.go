package listing

import (
	"fmt"
	"sort"
	"time"

	"homestay/internal/domain/shared/daterange"
)

// DayKeyLayout encodes a reserved UTC calendar day ("2024-03-01").
const DayKeyLayout = "2006-01-02"

// ConflictError reports the first requested day that is already reserved.
type ConflictError struct {
	Day string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("listing: day %s is already reserved", e.Day)
}

// Calendar is the set of reserved days for one listing, kept as sorted ISO
// day keys. A key is present only while that day is booked; absence means
// available.
type Calendar struct {
	days []string
}

// NewCalendar builds a calendar from stored day keys, normalizing order and
// duplicates.
func NewCalendar(days ...string) Calendar {
	if len(days) == 0 {
		return Calendar{}
	}
	sorted := append([]string(nil), days...)
	sort.Strings(sorted)
	unique := sorted[:0]
	for i, d := range sorted {
		if i == 0 || d != sorted[i-1] {
			unique = append(unique, d)
		}
	}
	return Calendar{days: unique}
}

// DayKey formats t as a calendar day key.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// Has reports whether the day key is reserved.
func (c Calendar) Has(day string) bool {
	i := sort.SearchStrings(c.days, day)
	return i < len(c.days) && c.days[i] == day
}

// Len returns the number of reserved days.
func (c Calendar) Len() int {
	return len(c.days)
}

// Days returns a copy of the reserved day keys in ascending order.
func (c Calendar) Days() []string {
	return append([]string(nil), c.days...)
}

// Reserve returns a new calendar with every day of the stay marked reserved,
// both endpoints included. Days are checked in order from check-in; the first
// day that is already reserved fails the whole operation with ConflictError
// and the receiver is left untouched.
func (c Calendar) Reserve(r daterange.StayRange) (Calendar, error) {
	requested := make([]string, 0, r.Nights())
	for _, day := range r.Days() {
		key := DayKey(day)
		if c.Has(key) {
			return Calendar{}, &ConflictError{Day: key}
		}
		requested = append(requested, key)
	}
	merged := make([]string, 0, len(c.days)+len(requested))
	merged = append(merged, c.days...)
	merged = append(merged, requested...)
	sort.Strings(merged)
	return Calendar{days: merged}, nil
}
