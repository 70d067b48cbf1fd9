package reporting

import (
	"sort"
	"strings"

	"github.com/dalemusser/enrollhub/internal/app/system/recordschema"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// Systemwide counts registrations, enrollments, and certificates
// across the whole enterprise for a range.
func Systemwide(registrations, enrollments, certificates models.BareSnapshot, mode string, rng DateRange) models.SystemwideCounts {
	return models.SystemwideCounts{
		RegistrationsCount: len(FilterRegistrations(registrations, rng)),
		EnrollmentsCount:   len(FilterEnrollments(enrollments, mode, rng)),
		CertificatesCount:  len(FilterCertificates(certificates, rng)),
	}
}

// Organizations breaks the systemwide counts down per organization.
// Every roster org gets a row, zero counts included, so the rollup
// always shows the full roster. Rows sort by name, case-insensitive.
func Organizations(registrations, enrollments, certificates models.BareSnapshot, mode string, rng DateRange, orgNames []string) []models.OrgCounts {
	regByOrg := countByOrg(FilterRegistrations(registrations, rng))
	enrByOrg := countByOrg(FilterEnrollments(enrollments, mode, rng))
	certByOrg := countByOrg(FilterCertificates(certificates, rng))

	rows := make([]models.OrgCounts, 0, len(orgNames))
	for _, name := range orgNames {
		rows = append(rows, models.OrgCounts{
			Organization:  name,
			Registrations: regByOrg[name],
			Enrollments:   enrByOrg[name],
			Certificates:  certByOrg[name],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Organization) < strings.ToLower(rows[j].Organization)
	})
	return rows
}

// Groups repartitions the organization rollup by the enterprise's
// group mapping. Orgs without a mapping are excluded; an enterprise
// with no mapping gets an empty (non-nil) result.
func Groups(registrations, enrollments, certificates models.BareSnapshot, mode string, rng DateRange, orgNames []string, groupMap map[string]string) []models.GroupCounts {
	rows := []models.GroupCounts{}
	if len(groupMap) == 0 {
		return rows
	}

	orgRows := Organizations(registrations, enrollments, certificates, mode, rng, orgNames)
	byGroup := map[string]*models.GroupCounts{}
	for _, org := range orgRows {
		group, ok := groupMap[org.Organization]
		if !ok {
			continue
		}
		g, ok := byGroup[group]
		if !ok {
			g = &models.GroupCounts{Group: group}
			byGroup[group] = g
		}
		g.Registrations += org.Registrations
		g.Enrollments += org.Enrollments
		g.Certificates += org.Certificates
	}

	for _, g := range byGroup {
		rows = append(rows, *g)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Group) < strings.ToLower(rows[j].Group)
	})
	return rows
}

func countByOrg(snap models.BareSnapshot) map[string]int {
	counts := map[string]int{}
	for _, r := range snap {
		counts[r.Field(recordschema.Organization)]++
	}
	return counts
}
