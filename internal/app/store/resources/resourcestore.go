// internal/store/resources/resourcestore.go
package resourcestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/reservehub/reservehub/internal/app/system/txn"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store owns the bookable-resource catalog. The booking engine reads it
// for policy and manager lookups; administrators mutate it.
type Store struct {
	c      *mongo.Collection
	client *mongo.Client
}

var (
	// ErrManagerRequired enforces the catalog's one structural rule: an
	// approval-required resource with no managers could never have a
	// booking approved, so it is rejected at save time.
	ErrManagerRequired = errors.New("approval-required resources need at least one manager")

	ErrNotFound = errors.New("resource not found")

	// ErrInvalid wraps field validation failures.
	ErrInvalid = errors.New("invalid resource")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("resources"), client: db.Client()}
}

// Create inserts a new Resource, folding the CI name and stamping
// timestamps. When no DisplayOrder is given the resource is appended to
// the bottom of the catalog by taking the organization's highest order
// plus one, so every created resource holds a distinct swappable value.
func (s *Store) Create(ctx context.Context, r models.Resource) (models.Resource, error) {
	if strings.TrimSpace(r.Name) == "" {
		return models.Resource{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if r.ApprovalRequired && len(r.ManagerIDs) == 0 {
		return models.Resource{}, ErrManagerRequired
	}

	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.NameCI = text.Fold(r.Name)
	if r.DisplayOrder == 0 {
		next, err := s.nextDisplayOrder(ctx, r.OrganizationID)
		if err != nil {
			return models.Resource{}, err
		}
		r.DisplayOrder = next
	}
	r.CreatedAt = now
	r.UpdatedAt = &now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Resource{}, err
	}
	return r, nil
}

// nextDisplayOrder returns one past the organization's highest explicit
// display order. Documents carrying the unset sentinel (imported or
// legacy records) are excluded so they keep sorting after everything.
func (s *Store) nextDisplayOrder(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "display_order", Value: -1}}).
		SetProjection(bson.M{"display_order": 1})
	var top struct {
		DisplayOrder int64 `bson:"display_order"`
	}
	err := s.c.FindOne(ctx, bson.M{
		"organization_id": orgID,
		"display_order":   bson.M{"$gte": 0},
	}, opts).Decode(&top)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return top.DisplayOrder + 1, nil
}

// Update modifies mutable fields and refreshes UpdatedAt. The
// approval/manager invariant is checked against the merged result, not
// just the incoming mutation, so a resource cannot be flipped to
// approval-required while its manager set is empty.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut models.Resource) error {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	set := bson.M{}
	if strings.TrimSpace(mut.Name) != "" {
		set["name"] = mut.Name
		set["name_ci"] = text.Fold(mut.Name)
	}
	set["location"] = mut.Location
	set["description"] = mut.Description

	managers := cur.ManagerIDs
	if mut.ManagerIDs != nil {
		managers = mut.ManagerIDs
		set["manager_ids"] = mut.ManagerIDs
	}
	set["approval_required"] = mut.ApprovalRequired
	if mut.ApprovalRequired && len(managers) == 0 {
		return ErrManagerRequired
	}

	if mut.ImagePath != "" {
		set["image_path"] = mut.ImagePath
		set["image_name"] = mut.ImageName
	}

	now := time.Now().UTC()
	set["updated_at"] = &now

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a resource by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Resource, error) {
	var r models.Resource
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Resource{}, ErrNotFound
		}
		return models.Resource{}, err
	}
	return r, nil
}

// Delete removes the resource record only. Bookings referencing it are
// left in place on purpose; the consistency sweeper reclaims them.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByOrg returns the organization's resources sorted by display order
// ascending. Resources with the unset sentinel sort after every explicit
// order and keep a stable relative order among themselves.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Resource, error) {
	// _id sort gives the stable tiebreak; the sentinel is mapped to the
	// end in-process since it is stored as -1.
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Resource
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].DisplayOrder, out[j].DisplayOrder
		if oi == models.OrderUnset {
			return false
		}
		if oj == models.OrderUnset {
			return true
		}
		return oi < oj
	})
	return out, nil
}

// SwapOrder exchanges the display orders of the two resources. It is a
// deliberate O(1) pairwise swap inside one transaction, not a
// resequencing of the whole catalog.
func (s *Store) SwapOrder(ctx context.Context, idA, idB primitive.ObjectID) error {
	swap := func(ctx context.Context) error {
		a, err := s.GetByID(ctx, idA)
		if err != nil {
			return err
		}
		b, err := s.GetByID(ctx, idB)
		if err != nil {
			return err
		}
		if _, err := s.c.UpdateByID(ctx, idA, bson.M{"$set": bson.M{"display_order": b.DisplayOrder}}); err != nil {
			return err
		}
		_, err = s.c.UpdateByID(ctx, idB, bson.M{"$set": bson.M{"display_order": a.DisplayOrder}})
		return err
	}

	err := txn.Run(ctx, s.client, func(sc mongo.SessionContext) error {
		return swap(sc)
	})
	if txn.IsNotSupported(err) {
		// Standalone server: the swap still happens, just not atomically.
		return swap(ctx)
	}
	return err
}

// LiveIDSet returns the set of resource IDs currently present for the
// organization. The sweeper reads this exactly once per pass so the
// orphan check stays consistent within the pass.
func (s *Store) LiveIDSet(ctx context.Context, orgID primitive.ObjectID) (map[primitive.ObjectID]struct{}, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	live := make(map[primitive.ObjectID]struct{})
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		live[doc.ID] = struct{}{}
	}
	return live, cur.Err()
}
