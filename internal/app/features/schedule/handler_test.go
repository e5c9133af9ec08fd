package schedule_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/features/schedule"
	schedulestore "github.com/reservehub/reservehub/internal/app/store/schedules"
	"github.com/reservehub/reservehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*schedule.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	errLog := uierrors.NewErrorLogger(zap.NewNop())
	return schedule.NewHandler(db, errLog, zap.NewNop()), db
}

func TestServeTemplate_MissingTemplateIsEmpty(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")

	req := testutil.NewAuthenticatedRequest("GET", "/schedule", testutil.MemberUser(org.ID))
	rec := httptest.NewRecorder()
	h.ServeTemplate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var body struct {
		Periods []json.RawMessage `json:"periods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Periods == nil {
		t.Error("expected an empty period list, got null")
	}
	if len(body.Periods) != 0 {
		t.Errorf("periods: got %d, want 0", len(body.Periods))
	}
}

func TestHandleSaveTemplate_RoundTrip(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")

	payload := `{"periods":[
		{"name":"Period 2","start":"09:50","end":"10:30"},
		{"name":"Period 1","start":"09:00","end":"09:40"}
	]}`
	req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/schedule", payload), testutil.MemberUser(org.ID))
	rec := httptest.NewRecorder()
	h.HandleSaveTemplate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var body struct {
		Periods []struct {
			Name  string `json:"name"`
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"periods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Periods) != 2 {
		t.Fatalf("periods: got %d, want 2", len(body.Periods))
	}
	// Stored and served in start order regardless of submission order.
	if body.Periods[0].Name != "Period 1" || body.Periods[1].Name != "Period 2" {
		t.Errorf("periods out of order: %+v", body.Periods)
	}

	periods, err := schedulestore.New(db).Get(ctx, org.ID)
	if err != nil {
		t.Fatalf("store get failed: %v", err)
	}
	if len(periods) != 2 {
		t.Errorf("stored periods: got %d, want 2", len(periods))
	}
}

func TestHandleSaveTemplate_ReplacesWholesale(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	fx.SavePeriods(ctx, org.ID, testutil.StandardPeriods())

	payload := `{"periods":[{"name":"Block A","start":"08:00","end":"10:00"}]}`
	req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/schedule", payload), testutil.MemberUser(org.ID))
	rec := httptest.NewRecorder()
	h.HandleSaveTemplate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	periods, err := schedulestore.New(db).Get(ctx, org.ID)
	if err != nil {
		t.Fatalf("store get failed: %v", err)
	}
	if len(periods) != 1 || periods[0].Name != "Block A" {
		t.Errorf("expected the submitted list to replace the old template, got %+v", periods)
	}
}

func TestHandleSaveTemplate_InvalidPeriod(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	fx.SavePeriods(ctx, org.ID, testutil.StandardPeriods())

	payload := `{"periods":[{"name":"Broken","start":"10:00","end":"09:00"}]}`
	req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/schedule", payload), testutil.MemberUser(org.ID))
	rec := httptest.NewRecorder()
	h.HandleSaveTemplate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Error != "InvalidPeriod" {
		t.Errorf("error kind: got %q, want %q", body.Error, "InvalidPeriod")
	}

	// A rejected save must not disturb the stored template.
	periods, err := schedulestore.New(db).Get(ctx, org.ID)
	if err != nil {
		t.Fatalf("store get failed: %v", err)
	}
	if len(periods) != len(testutil.StandardPeriods()) {
		t.Errorf("stored periods: got %d, want %d", len(periods), len(testutil.StandardPeriods()))
	}
}

func TestServeTemplate_NoOrganizationForbidden(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/schedule", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeTemplate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}
