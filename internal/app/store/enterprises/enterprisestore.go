// Package enterprisestore persists enterprise (tenant) configuration
// and organization rosters in MongoDB.
package enterprisestore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/dalemusser/enrollhub/internal/domain/models"
)

var (
	ErrEnterpriseNotFound  = errors.New("enterprise not found")
	ErrInvalidCode         = errors.New("invalid enterprise code")
	ErrBadAccessCode       = errors.New("access code mismatch")
	ErrDuplicateEnterprise = errors.New("enterprise code already exists")
)

// Enterprise codes are short lowercase alphabetic slugs; they appear
// in URLs and as cache directory names.
var codePattern = regexp.MustCompile(`^[a-z]{2,12}$`)

// ValidCode reports whether code is a well-formed enterprise code.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Store wraps the enterprises and organizations collections.
type Store struct {
	enterprises *mongo.Collection
	orgs        *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		enterprises: db.Collection("enterprises"),
		orgs:        db.Collection("organizations"),
	}
}

// Create inserts a new enterprise, hashing the plaintext access code.
func (s *Store) Create(ctx context.Context, ent *models.Enterprise, accessCode string) error {
	if !ValidCode(ent.Code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, ent.Code)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(accessCode), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash access code: %w", err)
	}
	ent.AccessCodeHash = string(hash)
	now := time.Now()
	ent.CreatedAt = now
	ent.UpdatedAt = now

	if _, err := s.enterprises.InsertOne(ctx, ent); err != nil {
		if wafflemongo.IsDup(err) {
			return fmt.Errorf("%w: %q", ErrDuplicateEnterprise, ent.Code)
		}
		return fmt.Errorf("insert enterprise: %w", err)
	}
	return nil
}

// GetByCode loads the enterprise with the given code.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Enterprise, error) {
	if !ValidCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	var ent models.Enterprise
	err := s.enterprises.FindOne(ctx, bson.M{"code": code}).Decode(&ent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %q", ErrEnterpriseNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("find enterprise: %w", err)
	}
	return &ent, nil
}

// VerifyAccessCode checks a plaintext access code against the stored
// hash for the enterprise.
func (s *Store) VerifyAccessCode(ctx context.Context, code, accessCode string) (*models.Enterprise, error) {
	ent, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ent.AccessCodeHash), []byte(accessCode)); err != nil {
		return nil, ErrBadAccessCode
	}
	return ent, nil
}

// SetGroupMap replaces the enterprise's organization-to-group mapping.
func (s *Store) SetGroupMap(ctx context.Context, code string, groupMap map[string]string) error {
	res, err := s.enterprises.UpdateOne(ctx,
		bson.M{"code": code},
		bson.M{"$set": bson.M{"group_map": groupMap, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("update group map: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %q", ErrEnterpriseNotFound, code)
	}
	return nil
}

// AddOrganization adds an org to the enterprise roster.
func (s *Store) AddOrganization(ctx context.Context, org *models.Organization) error {
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.orgs.InsertOne(ctx, org); err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

// Organizations lists the enterprise's org roster sorted by name.
func (s *Store) Organizations(ctx context.Context, code string) ([]models.Organization, error) {
	cur, err := s.orgs.Find(ctx,
		bson.M{"enterprise_code": code},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find organizations: %w", err)
	}
	defer cur.Close(ctx)

	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}
	return orgs, nil
}
