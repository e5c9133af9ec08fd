// internal/store/metrics/metricsstore.go
package metricsstore

import (
	"context"
	"time"

	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store caches per-organization booking counters so dashboards do not
// re-aggregate the bookings collection on every widget load. The sweeper
// is the only writer.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("booking_metrics")}
}

// Put upserts the organization's counters for the given date.
func (s *Store) Put(ctx context.Context, orgID primitive.ObjectID, date string, todayBookings int64) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"organization_id": orgID},
		bson.M{"$set": bson.M{
			"organization_id": orgID,
			"date":            date,
			"today_bookings":  todayBookings,
			"computed_at":     time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Get returns the organization's cached counters and a found flag. A
// cache entry for a different date counts as not found; the caller
// recomputes rather than showing yesterday's number.
func (s *Store) Get(ctx context.Context, orgID primitive.ObjectID, date string) (models.BookingMetrics, bool, error) {
	var m models.BookingMetrics
	err := s.c.FindOne(ctx, bson.M{"organization_id": orgID}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.BookingMetrics{}, false, nil
		}
		return models.BookingMetrics{}, false, err
	}
	if m.Date != date {
		return models.BookingMetrics{}, false, nil
	}
	return m, true, nil
}
