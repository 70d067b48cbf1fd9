package models

import "github.com/dalemusser/enrollhub/internal/app/system/recordschema"

// Record is one registrant row: a flat tuple of 17 string fields laid
// out per recordschema. Fields are always addressed by name through
// Field/WithField, never by literal position.
//
// A record fetched with fewer than 17 cells is not an error; missing
// fields read as empty strings.
type Record []string

// Field returns the named field, or "" when the record is short.
func (r Record) Field(name string) string {
	idx := recordschema.FieldIndex(name)
	if idx >= len(r) {
		return ""
	}
	return r[idx]
}

// WithField returns a copy of the record with the named field set,
// padding the record out to the full layout when needed.
func (r Record) WithField(name, value string) Record {
	idx := recordschema.FieldIndex(name)
	out := make(Record, len(r))
	copy(out, r)
	for len(out) <= idx {
		out = append(out, "")
	}
	out[idx] = value
	return out
}

// CohortYear returns the composite "Cohort-Year" grouping key,
// e.g. "08-25".
func (r Record) CohortYear() string {
	return r.Field(recordschema.Cohort) + "-" + r.Field(recordschema.Year)
}

// IsEnrolled reports whether the Enrolled field holds a value, i.e. it
// is non-blank and not the "-" placeholder. The value itself may be a
// date or a literal "Yes" depending on the enterprise's convention.
func (r Record) IsEnrolled() bool {
	v := r.Field(recordschema.Enrolled)
	return v != "" && v != "-"
}
