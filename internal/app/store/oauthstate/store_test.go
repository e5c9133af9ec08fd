package oauthstate_test

import (
	"errors"
	"testing"
	"time"

	oauthstatestore "github.com/reservehub/reservehub/internal/app/store/oauthstate"
	"github.com/reservehub/reservehub/internal/testutil"
)

func TestConsume_OneShot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := oauthstatestore.New(db)

	if err := store.Put(ctx, "tok-abc", "/dashboard", 10*time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	st, err := store.Consume(ctx, "tok-abc")
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if st.ReturnURL != "/dashboard" {
		t.Errorf("return_url: got %q, want %q", st.ReturnURL, "/dashboard")
	}

	if _, err := store.Consume(ctx, "tok-abc"); !errors.Is(err, oauthstatestore.ErrStateNotFound) {
		t.Errorf("second consume: got %v, want ErrStateNotFound", err)
	}
}

func TestConsume_UnknownToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := oauthstatestore.New(db)

	if _, err := store.Consume(ctx, "never-issued"); !errors.Is(err, oauthstatestore.ErrStateNotFound) {
		t.Errorf("got %v, want ErrStateNotFound", err)
	}
}

func TestConsume_ExpiredToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := oauthstatestore.New(db)

	if err := store.Put(ctx, "tok-old", "/", -time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if _, err := store.Consume(ctx, "tok-old"); !errors.Is(err, oauthstatestore.ErrStateNotFound) {
		t.Errorf("got %v, want ErrStateNotFound", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := oauthstatestore.New(db)

	if err := store.Put(ctx, "tok-live", "/", 10*time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, "tok-dead-1", "/", -time.Minute); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Put(ctx, "tok-dead-2", "/", -time.Hour); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	deleted, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted: got %d, want 2", deleted)
	}

	if _, err := store.Consume(ctx, "tok-live"); err != nil {
		t.Errorf("live token should survive cleanup: %v", err)
	}
}
