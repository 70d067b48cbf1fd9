package reports_test

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	errorsfeature "github.com/dalemusser/enrollhub/internal/app/features/errors"
	"github.com/dalemusser/enrollhub/internal/app/features/reports"
	"github.com/dalemusser/enrollhub/internal/app/features/shared"
	enterprisestore "github.com/dalemusser/enrollhub/internal/app/store/enterprises"
	snapshotstore "github.com/dalemusser/enrollhub/internal/app/store/snapshots"
	"github.com/dalemusser/enrollhub/internal/app/system/recordschema"
	"github.com/dalemusser/enrollhub/internal/app/system/refresh"
	"github.com/dalemusser/enrollhub/internal/domain/models"
	"github.com/dalemusser/enrollhub/internal/testutil"
)

type fakeSource struct {
	rows map[string][][]string
}

func (f *fakeSource) FetchRows(ctx context.Context, sourceID, sheetName string, startRow int) ([][]string, error) {
	return f.rows[sheetName], nil
}

func registrantRow(org, submitted, enrolled, certificate, issued string) []string {
	r := models.Record{}.
		WithField(recordschema.Organization, org).
		WithField(recordschema.Submitted, submitted).
		WithField(recordschema.Enrolled, enrolled).
		WithField(recordschema.Certificate, certificate).
		WithField(recordschema.Issued, issued)
	return []string(r)
}

func testEnterprise() *models.Enterprise {
	return &models.Enterprise{
		Code:             "acme",
		Name:             "Acme",
		TTLSeconds:       3600,
		SourceID:         "sheet-1",
		RegistrantsSheet: "Registrants",
		SubmissionsSheet: "Submissions",
		StartRow:         2,
		EnrollmentMode:   "tou_completion",
	}
}

func newHandler(t *testing.T, enterprises *enterprisestore.Store) *reports.Handler {
	t.Helper()
	source := &fakeSource{rows: map[string][][]string{
		"Registrants": {
			registrantRow("Acme High", "07-01-25", "Yes", "Yes", "07-28-25"),
			registrantRow("Acme High", "07-02-25", "07-10-25", "", ""),
		},
		"Submissions": {
			registrantRow("Acme High", "07-01-25", "", "", ""),
			registrantRow("Acme High", "07-02-25", "", "", ""),
		},
	}}
	dir := t.TempDir()
	log := zap.NewNop()
	cache := snapshotstore.New(filepath.Join(dir, "cache"), filepath.Join(dir, "tmp"), log)
	orch := refresh.New(cache, source, log)
	return reports.NewHandler(enterprises, cache, orch, errorsfeature.NewErrorLogger(log), log)
}

func TestGetSystemwide(t *testing.T) {
	h := newHandler(t, nil)

	req := testutil.NewRequest("GET", "/api/acme/reports/systemwide?start=07-01-25&end=07-31-25")
	req = shared.WithEnterprise(req, testEnterprise())
	rec := testutil.NewRecorder()

	h.GetSystemwide(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var counts models.SystemwideCounts
	if err := json.NewDecoder(rec.Body).Decode(&counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The enrollments dataset only keeps rows with the literal "Yes"
	// marker, which is not a date, so tou_completion counts none of
	// them in a date range.
	want := models.SystemwideCounts{RegistrationsCount: 2, EnrollmentsCount: 0, CertificatesCount: 1}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
}

func TestGetSystemwideModeOverride(t *testing.T) {
	h := newHandler(t, nil)

	req := testutil.NewRequest("GET", "/api/acme/reports/systemwide?start=07-01-25&end=07-31-25&mode=registration_date")
	req = shared.WithEnterprise(req, testEnterprise())
	rec := testutil.NewRecorder()

	h.GetSystemwide(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var counts models.SystemwideCounts
	if err := json.NewDecoder(rec.Body).Decode(&counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Both registrant rows were submitted in july with a non-blank
	// Enrolled value; since the enrollments dataset only keeps the
	// literal "Yes" rows, one row is present and counted.
	if counts.EnrollmentsCount != 1 {
		t.Errorf("enrollments = %d, want 1", counts.EnrollmentsCount)
	}
}

func TestGetSystemwideClampsToEnterpriseStartDate(t *testing.T) {
	h := newHandler(t, nil)
	ent := testEnterprise()
	// Nothing exists before the enterprise's first reporting date, so
	// an earlier query start is raised to it.
	ent.StartDate = "07-02-25"

	req := testutil.NewRequest("GET", "/api/acme/reports/systemwide?start=01-01-25&end=07-31-25")
	req = shared.WithEnterprise(req, ent)
	rec := testutil.NewRecorder()

	h.GetSystemwide(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var counts models.SystemwideCounts
	if err := json.NewDecoder(rec.Body).Decode(&counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The 07-01-25 registration falls below the floor.
	if counts.RegistrationsCount != 1 {
		t.Errorf("registrations = %d, want 1", counts.RegistrationsCount)
	}
}

func TestGetSystemwideRejectsBadQuery(t *testing.T) {
	h := newHandler(t, nil)

	for _, target := range []string{
		"/api/acme/reports/systemwide?start=2025-07-01&end=07-31-25",
		"/api/acme/reports/systemwide?start=07-01-25&end=07-31-25&mode=bogus",
		"/api/acme/reports/systemwide",
	} {
		req := testutil.NewRequest("GET", target)
		req = shared.WithEnterprise(req, testEnterprise())
		rec := testutil.NewRecorder()

		h.GetSystemwide(rec.ResponseRecorder, req)
		rec.AssertStatus(t, http.StatusBadRequest)
	}
}

func TestGetOrganizations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fixtures := testutil.NewFixtures(t, db)
	fixtures.CreateEnterprise(ctx, "acme", "x")
	fixtures.CreateOrganization(ctx, "acme", "Acme High")
	fixtures.CreateOrganization(ctx, "acme", "Foothill Community College District")

	h := newHandler(t, enterprisestore.New(db))

	req := testutil.NewRequest("GET", "/api/acme/reports/organizations?start=07-01-25&end=07-31-25")
	req = shared.WithEnterprise(req, testEnterprise())
	rec := testutil.NewRecorder()

	h.GetOrganizations(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var rows []struct {
		Organization  string `json:"organization"`
		DisplayName   string `json:"display_name"`
		Registrations int    `json:"registrations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Organization != "Acme High" || rows[0].Registrations != 2 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].DisplayName != "Foothill CCD" {
		t.Errorf("rows[1].DisplayName = %q, want %q", rows[1].DisplayName, "Foothill CCD")
	}
	if rows[1].Registrations != 0 {
		t.Errorf("zero-activity org registrations = %d", rows[1].Registrations)
	}
}

func TestGetGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fixtures := testutil.NewFixtures(t, db)
	fixtures.CreateEnterprise(ctx, "acme", "x")
	fixtures.CreateOrganization(ctx, "acme", "Acme High")

	h := newHandler(t, enterprisestore.New(db))
	ent := testEnterprise()
	ent.GroupMap = map[string]string{"Acme High": "North"}

	req := testutil.NewRequest("GET", "/api/acme/reports/groups?start=07-01-25&end=07-31-25")
	req = shared.WithEnterprise(req, ent)
	rec := testutil.NewRecorder()

	h.GetGroups(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var rows []models.GroupCounts
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Group != "North" || rows[0].Registrations != 2 {
		t.Errorf("rows = %v", rows)
	}
}

func TestGetGroupsWithoutMapping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fixtures := testutil.NewFixtures(t, db)
	fixtures.CreateEnterprise(ctx, "acme", "x")

	h := newHandler(t, enterprisestore.New(db))

	req := testutil.NewRequest("GET", "/api/acme/reports/groups?start=07-01-25&end=07-31-25")
	req = shared.WithEnterprise(req, testEnterprise())
	rec := testutil.NewRecorder()

	h.GetGroups(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}
