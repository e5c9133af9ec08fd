package resources_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	uierrors "github.com/reservehub/reservehub/internal/app/features/errors"
	"github.com/reservehub/reservehub/internal/app/features/resources"
	bookingstore "github.com/reservehub/reservehub/internal/app/store/bookings"
	resourcestore "github.com/reservehub/reservehub/internal/app/store/resources"
	"github.com/reservehub/reservehub/internal/app/system/auditlog"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/reservehub/reservehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*resources.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	errLog := uierrors.NewErrorLogger(zap.NewNop())
	return resources.NewHandler(db, nil, auditlog.NewNopLogger(), errLog, zap.NewNop()), db
}

func TestServeList_ScopedToOrganization(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	other := fx.CreateOrganization(ctx, "Roosevelt High")
	fx.CreateResource(ctx, org.ID, "Chemistry Lab", false)
	fx.CreateResource(ctx, org.ID, "Auditorium", false)
	fx.CreateResource(ctx, other.ID, "Gym", false)

	req := testutil.NewAuthenticatedRequest("GET", "/resources", testutil.MemberUser(org.ID))
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp struct {
		Resources []models.Resource `json:"resources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Resources) != 2 {
		t.Errorf("resources: got %d, want 2", len(resp.Resources))
	}
	for _, res := range resp.Resources {
		if res.OrganizationID != org.ID {
			t.Errorf("resource %q leaked from organization %s", res.Name, res.OrganizationID.Hex())
		}
	}
}

func TestServeList_NoOrganizationForbidden(t *testing.T) {
	h, _ := newHandler(t)

	// Admin with no org_id query and no organization of their own.
	req := testutil.NewAuthenticatedRequest("GET", "/resources", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestHandleCreate(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	manager := fx.CreateManager(ctx, "Dana Reyes", "dana@lincoln.edu", org.ID)

	body := fmt.Sprintf(`{"name":"  3D Printer ","location":"Maker Space","description":"<script>x</script>Nylon only","approval_required":true,"manager_ids":[%q]}`, manager.ID.Hex())
	req := testutil.NewJSONRequest("POST", "/resources?org_id="+org.ID.Hex(), body)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	var created models.Resource
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.Name != "3D Printer" {
		t.Errorf("name: got %q, want %q", created.Name, "3D Printer")
	}
	if created.Description != "Nylon only" {
		t.Errorf("description not sanitized: got %q", created.Description)
	}
	if !created.ApprovalRequired {
		t.Error("expected approval_required to be true")
	}
	if !created.ManagedBy(manager.ID) {
		t.Error("expected manager to be recorded")
	}
	if created.DisplayOrder != 1 {
		t.Errorf("display order: got %d, want 1 for the organization's first resource", created.DisplayOrder)
	}
}

func TestHandleCreate_ApprovalWithoutManagerRejected(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")

	body := `{"name":"Kiln","approval_required":true}`
	req := testutil.NewJSONRequest("POST", "/resources?org_id="+org.ID.Hex(), body)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Error != "ManagerRequired" {
		t.Errorf("error kind: got %q, want %q", resp.Error, "ManagerRequired")
	}
}

func TestHandleUpdate_OmittedApprovalUnchanged(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	manager := fx.CreateManager(ctx, "Dana Reyes", "dana@lincoln.edu", org.ID)
	res := fx.CreateResource(ctx, org.ID, "Chemistry Lab", true, manager.ID)

	req := testutil.NewJSONRequest("PATCH", "/resources/"+res.ID.Hex()+"?org_id="+org.ID.Hex(), `{"name":"Chem Lab B"}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", res.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var updated models.Resource
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if updated.Name != "Chem Lab B" {
		t.Errorf("name: got %q, want %q", updated.Name, "Chem Lab B")
	}
	if !updated.ApprovalRequired {
		t.Error("approval_required flipped by a request that omitted it")
	}
}

func TestHandleUpdate_CrossOrgHidden(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	other := fx.CreateOrganization(ctx, "Roosevelt High")
	res := fx.CreateResource(ctx, other.ID, "Gym", false)

	// Member of one org patching a resource belonging to another.
	req := testutil.NewJSONRequest("PATCH", "/resources/"+res.ID.Hex(), `{"name":"Hijacked"}`)
	req = testutil.WithUser(req, testutil.ManagerUser(org.ID))
	req = testutil.WithChiURLParam(req, "id", res.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleDelete_SweepsOrphanedBookings(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	owner := fx.CreateMember(ctx, "Sam Ortiz", "sam@lincoln.edu", org.ID)
	res := fx.CreateResource(ctx, org.ID, "Chemistry Lab", false)
	orphan := fx.CreateBooking(ctx, org.ID, res.ID, owner.ID, "2026-09-07", "09:00", "09:40", models.BookingApproved)

	req := testutil.NewRequest("DELETE", "/resources/"+res.ID.Hex()+"?org_id="+org.ID.Hex())
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", res.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if _, err := resourcestore.New(db).GetByID(ctx, res.ID); !errors.Is(err, resourcestore.ErrNotFound) {
		t.Errorf("expected resource to be gone, got %v", err)
	}
	if _, err := bookingstore.New(db).GetByID(ctx, orphan.ID); !errors.Is(err, bookingstore.ErrNotFound) {
		t.Errorf("expected orphaned booking to be swept, got %v", err)
	}
}

func TestHandleSwapOrder(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	store := resourcestore.New(db)
	a, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Lab A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Lab B"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Auto-assigned orders must differ or the swap below proves nothing.
	if a.DisplayOrder == b.DisplayOrder {
		t.Fatalf("created resources share display order %d", a.DisplayOrder)
	}

	body := fmt.Sprintf(`{"other_id":%q}`, b.ID.Hex())
	req := testutil.NewJSONRequest("POST", "/resources/"+a.ID.Hex()+"/swap-order?org_id="+org.ID.Hex(), body)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", a.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleSwapOrder(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	aAfter, _ := store.GetByID(ctx, a.ID)
	bAfter, _ := store.GetByID(ctx, b.ID)
	if aAfter.DisplayOrder != b.DisplayOrder || bAfter.DisplayOrder != a.DisplayOrder {
		t.Errorf("orders not swapped: a=%d b=%d", aAfter.DisplayOrder, bAfter.DisplayOrder)
	}
}

func TestHandleSwapOrder_CrossOrgRejected(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	other := fx.CreateOrganization(ctx, "Roosevelt High")
	mine := fx.CreateResource(ctx, org.ID, "Lab A", false)
	foreign := fx.CreateResource(ctx, other.ID, "Gym", false)

	body := fmt.Sprintf(`{"other_id":%q}`, foreign.ID.Hex())
	req := testutil.NewJSONRequest("POST", "/resources/"+mine.ID.Hex()+"/swap-order?org_id="+org.ID.Hex(), body)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", mine.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleSwapOrder(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleUploadImage_MissingFile(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	res := fx.CreateResource(ctx, org.ID, "Chemistry Lab", false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("unrelated", "value")
	mw.Close()

	req := httptest.NewRequest("POST", "/resources/"+res.ID.Hex()+"/image?org_id="+org.ID.Hex(), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", res.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUploadImage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleUploadImage_UnsupportedType(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	res := fx.CreateResource(ctx, org.ID, "Chemistry Lab", false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="notes.txt"`},
		"Content-Type":        {"text/plain"},
	})
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("not an image"))
	mw.Close()

	req := httptest.NewRequest("POST", "/resources/"+res.ID.Hex()+"/image?org_id="+org.ID.Hex(), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", res.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUploadImage(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	}
}

// Verify the ID parsed from the body leaves bad ids at 422, not 500.
func TestHandleCreate_BadManagerID(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")

	req := testutil.NewJSONRequest("POST", "/resources?org_id="+org.ID.Hex(), `{"name":"Kiln","manager_ids":["not-a-hex-id"]}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
}
