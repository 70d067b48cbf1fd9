package models

// EnrollmentSummaryRow is one cohort-year bucket in an organization's
// dashboard summary.
type EnrollmentSummaryRow struct {
	Cohort       string `json:"cohort"`
	Year         string `json:"year"`
	Enrollments  int    `json:"enrollments"`
	Completed    int    `json:"completed"`
	Certificates int    `json:"certificates"`
}

// OrgData bundles the four dashboard views for one organization.
type OrgData struct {
	EnrollmentSummary  []EnrollmentSummaryRow `json:"enrollment_summary"`
	Enrolled           []Record               `json:"enrolled"`
	Invited            []Record               `json:"invited"`
	CertificatesEarned []Record               `json:"certificates_earned"`
	AsOf               string                 `json:"as_of"`
}

// SystemwideCounts is the enterprise-wide rollup for a date range.
type SystemwideCounts struct {
	RegistrationsCount int `json:"registrations_count"`
	EnrollmentsCount   int `json:"enrollments_count"`
	CertificatesCount  int `json:"certificates_count"`
}

// OrgCounts is one row of the per-organization rollup.
type OrgCounts struct {
	Organization  string `json:"organization"`
	Registrations int    `json:"registrations"`
	Enrollments   int    `json:"enrollments"`
	Certificates  int    `json:"certificates"`
}

// GroupCounts is one row of the group rollup.
type GroupCounts struct {
	Group         string `json:"group"`
	Registrations int    `json:"registrations"`
	Enrollments   int    `json:"enrollments"`
	Certificates  int    `json:"certificates"`
}
