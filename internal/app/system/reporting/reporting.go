// Package reporting filters registrant records into dashboard and
// rollup views. Views are pure functions over snapshots; nothing here
// touches the cache or the network.
package reporting

import (
	"errors"
	"fmt"

	"github.com/dalemusser/enrollhub/internal/app/system/dates"
	"github.com/dalemusser/enrollhub/internal/app/system/recordschema"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// Enrollment counting modes. tou_completion counts by the Enrolled
// date (when terms-of-use were completed); registration_date counts by
// the Submitted date for records that went on to enroll.
const (
	ModeTOUCompletion    = "tou_completion"
	ModeRegistrationDate = "registration_date"
)

var (
	ErrInvalidRange = errors.New("invalid date range")
	ErrInvalidMode  = errors.New("invalid enrollment mode")
)

// DateRange is an inclusive calendar range.
type DateRange struct {
	Start dates.Date
	End   dates.Date
}

// ParseRange parses MM-DD-YY bounds into a range.
func ParseRange(start, end string) (DateRange, error) {
	s, err := dates.Parse(start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
	}
	e, err := dates.Parse(end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
	}
	return DateRange{Start: s, End: e}, nil
}

// ValidMode reports whether mode names a known counting mode.
func ValidMode(mode string) bool {
	return mode == ModeTOUCompletion || mode == ModeRegistrationDate
}

// EnrolledInRange reports whether a record counts as an enrollment in
// the range under the given mode. Unknown modes fall back to
// tou_completion.
func EnrolledInRange(r models.Record, mode string, rng DateRange) bool {
	if mode == ModeRegistrationDate {
		return dates.InRange(r.Field(recordschema.Submitted), rng.Start, rng.End) && r.IsEnrolled()
	}
	return dates.InRange(r.Field(recordschema.Enrolled), rng.Start, rng.End)
}

// FilterRegistrations keeps records submitted within the range.
func FilterRegistrations(snap models.BareSnapshot, rng DateRange) models.BareSnapshot {
	out := models.BareSnapshot{}
	for _, r := range snap {
		if dates.InRange(r.Field(recordschema.Submitted), rng.Start, rng.End) {
			out = append(out, r)
		}
	}
	return out
}

// FilterEnrollments keeps records that count as enrollments in the
// range under the mode.
func FilterEnrollments(snap models.BareSnapshot, mode string, rng DateRange) models.BareSnapshot {
	out := models.BareSnapshot{}
	for _, r := range snap {
		if EnrolledInRange(r, mode, rng) {
			out = append(out, r)
		}
	}
	return out
}

// FilterCertificates keeps certificate-earning records issued within
// the range.
func FilterCertificates(snap models.BareSnapshot, rng DateRange) models.BareSnapshot {
	out := models.BareSnapshot{}
	for _, r := range snap {
		if r.Field(recordschema.Certificate) == "Yes" &&
			dates.InRange(r.Field(recordschema.Issued), rng.Start, rng.End) {
			out = append(out, r)
		}
	}
	return out
}
