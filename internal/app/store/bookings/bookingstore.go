// internal/store/bookings/bookingstore.go
package bookingstore

import (
	"context"
	"errors"
	"time"

	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds the raw booking collection operations. All policy — who may
// approve, what conflicts, when a write must be transactional — lives in
// the booking engine; this package is plain document access so the engine
// can run any of these inside a session context.
type Store struct {
	c     *mongo.Collection
	locks *mongo.Collection
}

var ErrNotFound = errors.New("booking not found")

func New(db *mongo.Database) *Store {
	return &Store{
		c:     db.Collection("bookings"),
		locks: db.Collection("slot_locks"),
	}
}

// LockSlot writes the guard document for (resourceID, date). Bookings
// themselves are inserted as fresh documents, so two transactions for
// the same slot would otherwise touch no common document and commit on
// disjoint snapshots. Both touching the one guard document makes the
// later writer abort with a transient transaction error; the retry then
// reads a snapshot that includes the winner's booking. One guard
// document exists per slot ever requested. The collection must already
// exist (indexes.EnsureAll creates it): an upsert cannot create a
// namespace inside a transaction.
func (s *Store) LockSlot(ctx context.Context, resourceID primitive.ObjectID, date string) error {
	_, err := s.locks.UpdateOne(ctx,
		bson.M{"resource_id": resourceID, "date": date},
		bson.M{"$inc": bson.M{"writes": 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Insert persists a new booking, assigning its ID and CreatedAt.
func (s *Store) Insert(ctx context.Context, b models.Booking) (models.Booking, error) {
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Booking, error) {
	var b models.Booking
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Booking{}, ErrNotFound
		}
		return models.Booking{}, err
	}
	return b, nil
}

// FindOverlap returns the first non-rejected booking for (resourceID,
// date) whose [start_time, end_time) intersects [start, end), or
// ErrNotFound when the slot is free. Half-open intervals: equal
// boundaries do not overlap. Times are zero-padded "HH:MM" strings, so
// the comparison is safe to run in the database.
func (s *Store) FindOverlap(ctx context.Context, resourceID primitive.ObjectID, date, start, end string) (models.Booking, error) {
	filter := bson.M{
		"resource_id": resourceID,
		"date":        date,
		"status":      bson.M{"$ne": models.BookingRejected},
		"start_time":  bson.M{"$lt": end},
		"end_time":    bson.M{"$gt": start},
	}
	var b models.Booking
	err := s.c.FindOne(ctx, filter).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Booking{}, ErrNotFound
		}
		return models.Booking{}, err
	}
	return b, nil
}

// TransitionFromPending conditionally moves a booking out of pending.
// The status guard sits in the filter, so of two racing managers only the
// first matches; the loser sees matched == false and reports the state
// error itself.
func (s *Store) TransitionFromPending(ctx context.Context, id primitive.ObjectID, to string) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.BookingPending},
		bson.M{"$set": bson.M{"status": to, "updated_at": &now}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// UpdatePurpose replaces the booking's purpose text.
func (s *Store) UpdatePurpose(ctx context.Context, id primitive.ObjectID, purpose string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"purpose": purpose, "updated_at": &now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the booking unconditionally.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForResourceDate returns every booking (all statuses) for the
// resource on the date, ordered by start time. The display layer filters
// rejected entries out of the grid itself; managers still see them in
// the approval history.
func (s *Store) ListForResourceDate(ctx context.Context, resourceID primitive.ObjectID, date string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return s.find(ctx, bson.M{"resource_id": resourceID, "date": date}, opts)
}

// ListForOwner returns the user's bookings, newest date first.
func (s *Store) ListForOwner(ctx context.Context, orgID, ownerID primitive.ObjectID) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "start_time", Value: 1}})
	return s.find(ctx, bson.M{"organization_id": orgID, "owner_id": ownerID}, opts)
}

// ListForOrgDateRange returns the organization's bookings with date in
// [from, to], ordered by date then start time.
func (s *Store) ListForOrgDateRange(ctx context.Context, orgID primitive.ObjectID, from, to string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})
	return s.find(ctx, bson.M{
		"organization_id": orgID,
		"date":            bson.M{"$gte": from, "$lte": to},
	}, opts)
}

// ListPendingForManager returns pending bookings on the given resources,
// oldest first, for approval queues.
func (s *Store) ListPendingForManager(ctx context.Context, resourceIDs []primitive.ObjectID) ([]models.Booking, error) {
	if len(resourceIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return s.find(ctx, bson.M{
		"resource_id": bson.M{"$in": resourceIDs},
		"status":      models.BookingPending,
	}, opts)
}

// ListByOrg returns every booking for the organization. Sweeper input.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Booking, error) {
	return s.find(ctx, bson.M{"organization_id": orgID}, nil)
}

// CountActiveOnDate counts non-rejected bookings for the organization on
// the date, restricted to the given live resource set.
func (s *Store) CountActiveOnDate(ctx context.Context, orgID primitive.ObjectID, date string, live []primitive.ObjectID) (int64, error) {
	if len(live) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{
		"organization_id": orgID,
		"date":            date,
		"status":          bson.M{"$ne": models.BookingRejected},
		"resource_id":     bson.M{"$in": live},
	})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = s.c.Find(ctx, filter, opts)
	} else {
		cur, err = s.c.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Booking
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
