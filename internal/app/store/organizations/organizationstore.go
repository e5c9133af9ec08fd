// internal/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reservehub/reservehub/internal/app/system/paging"
	"github.com/reservehub/reservehub/internal/app/system/status"
	"github.com/reservehub/reservehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateOrganization = errors.New("an organization with this name already exists")

	// ErrInvalid wraps field validation failures; errors.Is(err, ErrInvalid)
	// distinguishes them from storage errors.
	ErrInvalid = errors.New("invalid organization")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	if strings.TrimSpace(org.Name) == "" {
		return models.Organization{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.NameCI = text.Fold(org.Name)
	if org.TimeZone == "" {
		org.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(org.TimeZone); err != nil {
		return models.Organization{}, fmt.Errorf("%w: time_zone must be a valid IANA zone name", ErrInvalid)
	}
	if org.Status == "" {
		org.Status = status.Active
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// Update modifies an organization's mutable fields and refreshes UpdatedAt.
// Empty fields are left untouched.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, org models.Organization) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if org.Name != "" {
		set["name"] = org.Name
		set["name_ci"] = text.Fold(org.Name)
	}
	if org.TimeZone != "" {
		if _, err := time.LoadLocation(org.TimeZone); err != nil {
			return fmt.Errorf("%w: time_zone must be a valid IANA zone name", ErrInvalid)
		}
		set["time_zone"] = org.TimeZone
	}
	if org.ContactInfo != "" {
		set["contact_info"] = org.ContactInfo
	}
	if org.Status != "" {
		if !status.IsValid(org.Status) {
			return fmt.Errorf("%w: status must be 'active' or 'disabled'", ErrInvalid)
		}
		set["status"] = org.Status
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateOrganization
		}
		return err
	}
	return nil
}

// ListPage returns one page of organizations in folded-name order using
// keyset cursors. A non-empty q narrows the page to names with that
// case-folded prefix.
func (s *Store) ListPage(ctx context.Context, q, before, after string) ([]models.Organization, paging.Result, error) {
	filter := bson.M{}
	if fq := text.Fold(q); fq != "" {
		filter["name_ci"] = bson.M{"$gte": fq, "$lt": fq + "￿"}
	}

	find := options.Find()
	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(find, "name_ci")
	if ks := cfg.KeysetWindow("name_ci"); ks != nil {
		if len(filter) > 0 {
			filter = bson.M{"$and": []bson.M{filter, ks}}
		} else {
			filter = ks
		}
	}

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, paging.Result{}, err
	}
	defer cur.Close(ctx)
	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, paging.Result{}, err
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(orgs)
	}
	page := paging.TrimPage(&orgs, before, after)
	return orgs, page, nil
}

// IDs returns every organization ID. The sweep worker uses this to walk
// all tenants on its schedule.
func (s *Store) IDs(ctx context.Context) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
