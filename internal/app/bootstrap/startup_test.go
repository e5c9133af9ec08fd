package bootstrap

import (
	"testing"
	"time"

	"github.com/reservehub/reservehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/reservehub/reservehub/internal/domain/models"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	err := ensureAdmin(ctx, deps, "admin@test.com", "bootstrap-secret", testLogger())
	if err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"email": "admin@test.com"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}

	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
	if user.Status != "active" {
		t.Errorf("expected status 'active', got %q", user.Status)
	}
	if user.PasswordHash == "" {
		t.Error("expected a password hash for the created admin")
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	existing := fx.CreateMember(ctx, "Existing User", "existing@test.com", org.ID)

	deps := DBDeps{MongoDatabase: db}

	err := ensureAdmin(ctx, deps, "existing@test.com", "ignored", testLogger())
	if err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}

	if user.Role != "admin" {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
}

func TestEnsureAdmin_AlreadyAdminNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	admin := fx.CreateAdmin(ctx, "Super Admin", "admin@test.com")

	deps := DBDeps{MongoDatabase: db}

	err := ensureAdmin(ctx, deps, "admin@test.com", "ignored", testLogger())
	if err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err = db.Collection("users").FindOne(ctx, bson.M{"_id": admin.ID}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	// BSON stores times at millisecond precision.
	if !user.UpdatedAt.Equal(admin.UpdatedAt.Truncate(time.Millisecond)) {
		t.Error("expected no write for an account that is already admin")
	}
}
