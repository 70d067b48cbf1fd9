package reporting

import (
	"testing"

	"github.com/dalemusser/enrollhub/internal/app/system/recordschema"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

func rec(fields map[string]string) models.Record {
	r := make(models.Record, recordschema.FieldCount)
	for name, value := range fields {
		r = r.WithField(name, value)
	}
	return r
}

func TestDashboardViewClassification(t *testing.T) {
	// One enrolled participant with certificate still open, one
	// invited participant whose window closed.
	row1 := rec(map[string]string{
		recordschema.Organization: "Acme",
		recordschema.Enrolled:     "08-02-25",
		recordschema.Certificate:  "Yes",
		recordschema.DaysToClose:  "5",
		recordschema.LastName:     "Smith",
		recordschema.FirstName:    "Al",
		recordschema.Cohort:       "08",
		recordschema.Year:         "25",
	})
	row2 := rec(map[string]string{
		recordschema.Organization: "Acme",
		recordschema.Enrolled:     "-",
		recordschema.Invited:      "07-15-25",
		recordschema.DaysToClose:  "closed",
		recordschema.LastName:     "Jones",
		recordschema.FirstName:    "Amy",
		recordschema.Cohort:       "08",
		recordschema.Year:         "25",
	})
	records := []models.Record{row1, row2}

	enrolled := EnrolledParticipants(records, "Acme")
	if len(enrolled) != 1 || enrolled[0].Field(recordschema.LastName) != "Smith" {
		t.Errorf("enrolled = %v", enrolled)
	}

	invited := InvitedParticipants(records, "Acme")
	if len(invited) != 1 || invited[0].Field(recordschema.LastName) != "Jones" {
		t.Errorf("invited = %v", invited)
	}

	certs := CertificatesEarned(records, "Acme")
	if len(certs) != 1 || certs[0].Field(recordschema.LastName) != "Smith" {
		t.Errorf("certificates = %v", certs)
	}

	summary := EnrollmentSummary(records, "Acme")
	if len(summary) != 1 {
		t.Fatalf("summary rows = %d, want 1", len(summary))
	}
	s := summary[0]
	if s.Cohort != "08" || s.Year != "25" || s.Enrollments != 1 || s.Certificates != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestViewsScopedToOrganization(t *testing.T) {
	records := []models.Record{
		rec(map[string]string{
			recordschema.Organization: "Acme",
			recordschema.Enrolled:     "08-02-25",
			recordschema.DaysToClose:  "5",
		}),
		rec(map[string]string{
			recordschema.Organization: "Globex",
			recordschema.Enrolled:     "08-02-25",
			recordschema.DaysToClose:  "5",
		}),
	}
	if got := EnrolledParticipants(records, "Acme"); len(got) != 1 {
		t.Errorf("enrolled for Acme = %d rows, want 1", len(got))
	}
	if got := EnrolledParticipants(records, "Initech"); len(got) != 0 {
		t.Errorf("enrolled for Initech = %d rows, want 0", len(got))
	}
}

func TestEnrollmentSummarySort(t *testing.T) {
	records := []models.Record{}
	for _, cy := range [][2]string{{"08", "24"}, {"01", "25"}, {"11", "24"}} {
		records = append(records, rec(map[string]string{
			recordschema.Organization: "Acme",
			recordschema.Enrolled:     "08-02-25",
			recordschema.Completed:    "Yes",
			recordschema.Cohort:       cy[0],
			recordschema.Year:         cy[1],
		}))
	}
	summary := EnrollmentSummary(records, "Acme")
	if len(summary) != 3 {
		t.Fatalf("summary rows = %d, want 3", len(summary))
	}
	wantOrder := []string{"01-25", "11-24", "08-24"}
	for i, want := range wantOrder {
		got := summary[i].Cohort + "-" + summary[i].Year
		if got != want {
			t.Errorf("summary[%d] = %s, want %s", i, got, want)
		}
		if summary[i].Completed != 1 {
			t.Errorf("summary[%d].Completed = %d, want 1", i, summary[i].Completed)
		}
	}
}

func TestInvitedSortRawStringDescending(t *testing.T) {
	// Raw string comparison puts "12-20-24" before "01-05-25" even
	// though the latter is more recent as a calendar date.
	alpha := rec(map[string]string{
		recordschema.Organization: "Acme",
		recordschema.Invited:      "01-05-25",
		recordschema.LastName:     "Alpha",
	})
	beta := rec(map[string]string{
		recordschema.Organization: "Acme",
		recordschema.Invited:      "12-20-24",
		recordschema.LastName:     "Beta",
	})
	invited := InvitedParticipants([]models.Record{alpha, beta}, "Acme")
	if len(invited) != 2 {
		t.Fatalf("invited rows = %d, want 2", len(invited))
	}
	if invited[0].Field(recordschema.LastName) != "Beta" {
		t.Errorf("invited[0] = %s, want Beta", invited[0].Field(recordschema.LastName))
	}
}

func TestNameSort(t *testing.T) {
	mk := func(last, first string) models.Record {
		return rec(map[string]string{
			recordschema.Organization: "Acme",
			recordschema.Enrolled:     "08-02-25",
			recordschema.DaysToClose:  "5",
			recordschema.LastName:     last,
			recordschema.FirstName:    first,
		})
	}
	enrolled := EnrolledParticipants([]models.Record{
		mk("Smith", "Zoe"), mk("Jones", "Amy"), mk("Smith", "Al"),
	}, "Acme")
	want := [][2]string{{"Jones", "Amy"}, {"Smith", "Al"}, {"Smith", "Zoe"}}
	for i, w := range want {
		last := enrolled[i].Field(recordschema.LastName)
		first := enrolled[i].Field(recordschema.FirstName)
		if last != w[0] || first != w[1] {
			t.Errorf("enrolled[%d] = %s %s, want %s %s", i, first, last, w[1], w[0])
		}
	}
}

func TestOrgDataCarriesTimestamp(t *testing.T) {
	snap := models.WrappedSnapshot{
		GlobalTimestamp: "08-20-25 at 1:00 PM",
		Data:            []models.Record{},
	}
	data := OrgData(snap, "Acme")
	if data.AsOf != snap.GlobalTimestamp {
		t.Errorf("AsOf = %q, want %q", data.AsOf, snap.GlobalTimestamp)
	}
	if data.Enrolled == nil || data.Invited == nil || data.CertificatesEarned == nil {
		t.Error("views must be non-nil even when empty")
	}
}

func TestShortRecordsTolerated(t *testing.T) {
	short := models.Record{"5", "07-01-25", "08-02-25"}
	// Organization reads as "", so the record never matches a real org
	// and never panics.
	if got := EnrolledParticipants([]models.Record{short}, "Acme"); len(got) != 0 {
		t.Errorf("short record matched: %v", got)
	}
	if got := EnrollmentSummary([]models.Record{short}, "Acme"); len(got) != 0 {
		t.Errorf("short record summarized: %v", got)
	}
}
