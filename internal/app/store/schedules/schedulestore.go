// internal/store/schedules/schedulestore.go
package schedulestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store owns the per-organization schedule template: the ordered list of
// named periods that defines the booking grid. One document per
// organization, replaced wholesale on save.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("schedule_templates")}
}

// InvalidPeriodError identifies which submitted period failed validation
// and why. Callers surface this directly to administrators.
type InvalidPeriodError struct {
	Index  int
	Reason string
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period at index %d: %s", e.Index, e.Reason)
}

// Get returns the organization's periods sorted by start time. A missing
// template yields an empty slice, not an error: "no periods" means
// booking is unavailable for the tenant, which callers handle themselves.
func (s *Store) Get(ctx context.Context, orgID primitive.ObjectID) ([]models.Period, error) {
	var tpl models.ScheduleTemplate
	err := s.c.FindOne(ctx, bson.M{"organization_id": orgID}).Decode(&tpl)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	// Stored sorted, but older documents may predate that guarantee.
	sortPeriods(tpl.Periods)
	return tpl.Periods, nil
}

// Save validates and persists the full period list for the organization,
// replacing whatever was there. Periods are stored sorted by start.
//
// Validation per period: non-empty name, both times parseable "HH:MM",
// start strictly before end. Overlapping or duplicate periods are
// permitted; conflict detection downstream operates on resolved time
// ranges, not period identity.
func (s *Store) Save(ctx context.Context, orgID primitive.ObjectID, periods []models.Period) error {
	cleaned := make([]models.Period, len(periods))
	for i, p := range periods {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return &InvalidPeriodError{Index: i, Reason: "name is required"}
		}
		start, err := models.ParseClock(p.Start)
		if err != nil {
			return &InvalidPeriodError{Index: i, Reason: err.Error()}
		}
		end, err := models.ParseClock(p.End)
		if err != nil {
			return &InvalidPeriodError{Index: i, Reason: err.Error()}
		}
		if start >= end {
			return &InvalidPeriodError{Index: i, Reason: fmt.Sprintf("start %s must be before end %s", start, end)}
		}
		cleaned[i] = models.Period{Name: name, Start: start, End: end}
	}
	sortPeriods(cleaned)

	_, err := s.c.UpdateOne(ctx,
		bson.M{"organization_id": orgID},
		bson.M{"$set": bson.M{
			"organization_id": orgID,
			"periods":         cleaned,
			"updated_at":      time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func sortPeriods(periods []models.Period) {
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Start < periods[j].Start
	})
}
