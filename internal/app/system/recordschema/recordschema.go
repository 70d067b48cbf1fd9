// Package recordschema is the single authority for the column layout of
// registrant records. Every registrant dataset kind (raw registrants,
// submissions, and the derived snapshots) uses the same flat 17-column
// layout, so all field access anywhere in the app goes through
// FieldIndex rather than hard-coded positions.
package recordschema

import "fmt"

// Field names for the registrant record layout.
const (
	DaysToClose  = "days_to_close"
	Invited      = "invited"
	Enrolled     = "enrolled"
	Cohort       = "cohort"
	Year         = "year"
	FirstName    = "first_name"
	LastName     = "last_name"
	Email        = "email"
	Role         = "role"
	Organization = "organization"
	Certificate  = "certificate"
	Issued       = "issued"
	ClosingDate  = "closing_date"
	Completed    = "completed"
	RegistrantID = "registrant_id"
	Submitted    = "submitted"
	Status       = "status"
)

// FieldCount is the number of columns in a registrant record.
const FieldCount = 17

var indexes = map[string]int{
	DaysToClose:  0,
	Invited:      1,
	Enrolled:     2,
	Cohort:       3,
	Year:         4,
	FirstName:    5,
	LastName:     6,
	Email:        7,
	Role:         8,
	Organization: 9,
	Certificate:  10,
	Issued:       11,
	ClosingDate:  12,
	Completed:    13,
	RegistrantID: 14,
	Submitted:    15,
	Status:       16,
}

// FieldIndex returns the column position of a named field. An unknown
// name is a programming error, not bad data, so it panics rather than
// returning a sentinel.
func FieldIndex(name string) int {
	idx, ok := indexes[name]
	if !ok {
		panic(fmt.Sprintf("recordschema: unknown field %q", name))
	}
	return idx
}

// Fields returns every defined field name. The order matches the column
// layout (position 0 first).
func Fields() []string {
	out := make([]string, FieldCount)
	for name, idx := range indexes {
		out[idx] = name
	}
	return out
}
