package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEnterprise inserts a test enterprise with the given code and
// access code. Sheet coordinates get placeholder values.
func (f *Fixtures) CreateEnterprise(ctx context.Context, code, accessCode string) models.Enterprise {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(accessCode), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash test access code: %v", err)
	}
	now := time.Now().UTC()
	ent := models.Enterprise{
		ID:               primitive.NewObjectID(),
		Code:             code,
		Name:             "Test Enterprise",
		AccessCodeHash:   string(hash),
		TTLSeconds:       3600,
		StartDate:        "01-01-24",
		SourceID:         "test-sheet",
		RegistrantsSheet: "Registrants",
		SubmissionsSheet: "Submissions",
		StartRow:         2,
		EnrollmentMode:   "tou_completion",
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := f.db.Collection("enterprises").InsertOne(ctx, ent); err != nil {
		f.t.Fatalf("create test enterprise: %v", err)
	}
	return ent
}

// CreateOrganization inserts a test organization for an enterprise.
func (f *Fixtures) CreateOrganization(ctx context.Context, enterpriseCode, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:             primitive.NewObjectID(),
		Name:           name,
		EnterpriseCode: enterpriseCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("create test organization: %v", err)
	}
	return org
}
