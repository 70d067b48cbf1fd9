package reporting

import (
	"sort"
	"strings"

	"github.com/dalemusser/enrollhub/internal/app/system/recordschema"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// OrgData builds the four dashboard views for one organization from
// the registrants snapshot.
func OrgData(snap models.WrappedSnapshot, org string) models.OrgData {
	return models.OrgData{
		EnrollmentSummary:  EnrollmentSummary(snap.Data, org),
		Enrolled:           EnrolledParticipants(snap.Data, org),
		Invited:            InvitedParticipants(snap.Data, org),
		CertificatesEarned: CertificatesEarned(snap.Data, org),
		AsOf:               snap.GlobalTimestamp,
	}
}

// EnrollmentSummary buckets the org's enrolled records by cohort-year
// and counts enrollments, completions, and certificates per bucket.
// Buckets sort newest first: year descending, then cohort descending.
func EnrollmentSummary(records []models.Record, org string) []models.EnrollmentSummaryRow {
	type bucket struct {
		cohort, year                  string
		enrollments, completed, certs int
	}
	buckets := map[string]*bucket{}
	for _, r := range records {
		if r.Field(recordschema.Organization) != org || !r.IsEnrolled() {
			continue
		}
		key := r.CohortYear()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				cohort: r.Field(recordschema.Cohort),
				year:   r.Field(recordschema.Year),
			}
			buckets[key] = b
		}
		b.enrollments++
		if r.Field(recordschema.Completed) == "Yes" {
			b.completed++
		}
		if r.Field(recordschema.Certificate) == "Yes" {
			b.certs++
		}
	}

	rows := make([]models.EnrollmentSummaryRow, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, models.EnrollmentSummaryRow{
			Cohort:       b.cohort,
			Year:         b.year,
			Enrollments:  b.enrollments,
			Completed:    b.completed,
			Certificates: b.certs,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Cohort > rows[j].Cohort
	})
	return rows
}

// EnrolledParticipants lists the org's currently enrolled records:
// those with an open days-to-close value. Sorted newest cohort first,
// then by name.
func EnrolledParticipants(records []models.Record, org string) []models.Record {
	out := filterOrg(records, org, func(r models.Record) bool {
		d := r.Field(recordschema.DaysToClose)
		return d != "" && d != "closed"
	})
	sortRecords(out, cohortYearDesc, nameAsc)
	return out
}

// InvitedParticipants lists the org's invited-but-not-enrolled
// records. Sorted newest cohort first, then by invited value
// descending as a raw string, then by name; the raw comparison keeps
// historical orderings stable across year boundaries.
func InvitedParticipants(records []models.Record, org string) []models.Record {
	out := filterOrg(records, org, func(r models.Record) bool {
		return !r.IsEnrolled()
	})
	sortRecords(out, cohortYearDesc, fieldDesc(recordschema.Invited), nameAsc)
	return out
}

// CertificatesEarned lists the org's certificate-earning records,
// newest cohort first, then by name.
func CertificatesEarned(records []models.Record, org string) []models.Record {
	out := filterOrg(records, org, func(r models.Record) bool {
		return r.Field(recordschema.Certificate) == "Yes"
	})
	sortRecords(out, cohortYearDesc, nameAsc)
	return out
}

func filterOrg(records []models.Record, org string, keep func(models.Record) bool) []models.Record {
	out := []models.Record{}
	for _, r := range records {
		if r.Field(recordschema.Organization) == org && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// cmpKey compares two records; negative means a sorts before b.
type cmpKey func(a, b models.Record) int

func sortRecords(records []models.Record, keys ...cmpKey) {
	sort.SliceStable(records, func(i, j int) bool {
		for _, key := range keys {
			if c := key(records[i], records[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

func cohortYearDesc(a, b models.Record) int {
	// Year outranks cohort so "01-25" sorts before "11-24".
	if c := stringDesc(a.Field(recordschema.Year), b.Field(recordschema.Year)); c != 0 {
		return c
	}
	return stringDesc(a.Field(recordschema.Cohort), b.Field(recordschema.Cohort))
}

func nameAsc(a, b models.Record) int {
	if c := stringAsc(a.Field(recordschema.LastName), b.Field(recordschema.LastName)); c != 0 {
		return c
	}
	return stringAsc(a.Field(recordschema.FirstName), b.Field(recordschema.FirstName))
}

func fieldDesc(name string) cmpKey {
	return func(a, b models.Record) int {
		return stringDesc(a.Field(name), b.Field(name))
	}
}

func stringAsc(a, b string) int {
	return strings.Compare(a, b)
}

func stringDesc(a, b string) int {
	return strings.Compare(b, a)
}
