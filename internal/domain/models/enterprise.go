package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enterprise is one tenant: its upstream spreadsheet coordinates,
// cache policy, and reporting configuration.
type Enterprise struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Code           string             `bson:"code"`
	Name           string             `bson:"name"`
	AccessCodeHash string             `bson:"access_code_hash"`

	// TTLSeconds bounds snapshot age before a refresh is required.
	TTLSeconds int `bson:"ttl_seconds"`

	// StartDate is the earliest reporting date, MM-DD-YY.
	StartDate string `bson:"start_date"`

	SourceID         string `bson:"source_id"`
	RegistrantsSheet string `bson:"registrants_sheet"`
	SubmissionsSheet string `bson:"submissions_sheet"`
	StartRow         int    `bson:"start_row"`

	EnrollmentMode string `bson:"enrollment_mode"`
	DemoSandbox    bool   `bson:"demo_sandbox"`

	// GroupMap maps organization name to group name; empty when the
	// enterprise has no group rollups.
	GroupMap map[string]string `bson:"group_map,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// HasGroups reports whether the enterprise defines group rollups.
func (e *Enterprise) HasGroups() bool {
	return len(e.GroupMap) > 0
}

// Organization is one org within an enterprise.
type Organization struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	EnterpriseCode string             `bson:"enterprise_code"`
	IsAdmin        bool               `bson:"is_admin"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}
