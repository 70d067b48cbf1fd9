// Package dates handles the MM-DD-YY date strings used throughout the
// registrant datasets, plus the "MM-DD-YY at h:mm AM/PM" generation
// timestamps stamped onto cached snapshots.
//
// Dates carry both comparison semantics the datasets rely on: Compare
// is calendar-aware (used by range filters), while Raw exposes the
// original string for the report sorts that intentionally compare
// MM-DD-YY strings lexicographically. Callers pick one deliberately;
// the two are not interchangeable.
package dates

import (
	"errors"
	"time"
)

// Layout is the MM-DD-YY date format used in all registrant fields.
const Layout = "01-02-06"

// TimestampLayout is the snapshot generation-timestamp format.
const TimestampLayout = "01-02-06 at 3:04 PM"

// ErrInvalidDate reports a value that is not a real MM-DD-YY calendar date.
var ErrInvalidDate = errors.New("invalid MM-DD-YY date")

// zone is the fixed timezone all generation timestamps are rendered in.
var zone = mustLoad("America/Los_Angeles")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Date is an MM-DD-YY domain value. The zero Date is invalid.
type Date struct {
	raw string
	t   time.Time
}

// Parse converts an MM-DD-YY string into a Date. The value must match
// the pattern and be a real calendar date.
func Parse(s string) (Date, error) {
	if len(s) != len(Layout) {
		return Date{}, ErrInvalidDate
	}
	t, err := time.ParseInLocation(Layout, s, zone)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{raw: s, t: t}, nil
}

// Valid reports whether s parses as an MM-DD-YY calendar date.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Raw returns the original MM-DD-YY string. Report sorts that compare
// date strings lexicographically use this accessor, preserving the
// observed (non-chronological across year boundaries) ordering.
func (d Date) Raw() string { return d.raw }

// Time returns the parsed calendar value.
func (d Date) Time() time.Time { return d.t }

// Compare orders two dates by calendar value: -1 if d is earlier,
// 0 if equal, +1 if later.
func (d Date) Compare(other Date) int {
	switch {
	case d.t.Before(other.t):
		return -1
	case d.t.After(other.t):
		return 1
	default:
		return 0
	}
}

// Between reports whether d falls within [start, end], inclusive on
// both ends, by calendar comparison.
func (d Date) Between(start, end Date) bool {
	return d.Compare(start) >= 0 && d.Compare(end) <= 0
}

// InRange parses s and reports whether it is a valid date within
// [start, end]. Invalid values are simply not in range.
func InRange(s string, start, end Date) bool {
	d, err := Parse(s)
	if err != nil {
		return false
	}
	return d.Between(start, end)
}

// FormatTimestamp renders t as a snapshot generation timestamp in the
// fixed display timezone.
func FormatTimestamp(t time.Time) string {
	return t.In(zone).Format(TimestampLayout)
}

// ParseTimestamp parses a snapshot generation timestamp. The result is
// anchored in the fixed display timezone so age comparisons against
// the current clock are consistent.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, zone)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
