package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

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

// CreateOrganization creates a test organization with the given name.
// Returns the created organization with its generated ID.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		TimeZone:  "America/New_York",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("organizations").InsertOne(ctx, org)
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateUser creates a test user with the given parameters.
// For managers and members, orgID must be provided.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, orgID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       fullName,
		FullNameCI:     text.Fold(fullName),
		Email:          email,
		AuthMethod:     "password",
		Role:           role,
		Status:         "active",
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin", nil)
}

// CreateManager creates a test manager user in the given organization.
func (f *Fixtures) CreateManager(ctx context.Context, fullName, email string, orgID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "manager", &orgID)
}

// CreateMember creates a test member user in the given organization.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email string, orgID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "member", &orgID)
}

// CreateResource creates a test resource in the given organization.
// approvalRequired implies managers must be non-empty; callers pass the
// manager IDs that fit the scenario.
func (f *Fixtures) CreateResource(ctx context.Context, orgID primitive.ObjectID, name string, approvalRequired bool, managers ...primitive.ObjectID) models.Resource {
	f.t.Helper()

	now := time.Now().UTC()
	resource := models.Resource{
		ID:               primitive.NewObjectID(),
		OrganizationID:   orgID,
		Name:             name,
		NameCI:           text.Fold(name),
		ApprovalRequired: approvalRequired,
		ManagerIDs:       managers,
		DisplayOrder:     models.OrderUnset,
		CreatedAt:        now,
	}

	_, err := f.db.Collection("resources").InsertOne(ctx, resource)
	if err != nil {
		f.t.Fatalf("failed to create test resource: %v", err)
	}

	return resource
}

// SavePeriods stores a schedule template for the organization. Periods
// must already be sorted and non-overlapping; this writes them raw.
func (f *Fixtures) SavePeriods(ctx context.Context, orgID primitive.ObjectID, periods []models.Period) {
	f.t.Helper()

	tmpl := models.ScheduleTemplate{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Periods:        periods,
		UpdatedAt:      time.Now().UTC(),
	}

	_, err := f.db.Collection("schedule_templates").InsertOne(ctx, tmpl)
	if err != nil {
		f.t.Fatalf("failed to create test schedule template: %v", err)
	}
}

// StandardPeriods returns a four-period school-day template used across
// booking tests: 09:00-09:40, 09:50-10:30, 10:40-11:20, 11:30-12:10.
func StandardPeriods() []models.Period {
	return []models.Period{
		{Name: "Period 1", Start: "09:00", End: "09:40"},
		{Name: "Period 2", Start: "09:50", End: "10:30"},
		{Name: "Period 3", Start: "10:40", End: "11:20"},
		{Name: "Period 4", Start: "11:30", End: "12:10"},
	}
}

// CreateBooking inserts a booking directly, bypassing the engine's
// conflict check. Use it for list/read test setup only.
func (f *Fixtures) CreateBooking(ctx context.Context, orgID, resourceID, ownerID primitive.ObjectID, date, start, end, status string) models.Booking {
	f.t.Helper()

	b := models.Booking{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		ResourceID:     resourceID,
		OwnerID:        ownerID,
		OwnerName:      "Test Owner",
		Date:           date,
		StartTime:      start,
		EndTime:        end,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := f.db.Collection("bookings").InsertOne(ctx, b)
	if err != nil {
		f.t.Fatalf("failed to create test booking: %v", err)
	}

	return b
}
