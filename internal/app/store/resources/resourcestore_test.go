package resourcestore_test

import (
	"errors"
	"testing"

	resourcestore "github.com/reservehub/reservehub/internal/app/store/resources"
	"github.com/reservehub/reservehub/internal/domain/models"
	"github.com/reservehub/reservehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	store := resourcestore.New(db)

	res, err := store.Create(ctx, models.Resource{
		OrganizationID: org.ID,
		Name:           "Chemistry Lab",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if res.DisplayOrder != 1 {
		t.Errorf("display order: got %d, want 1 for the first resource", res.DisplayOrder)
	}
	if res.NameCI != "chemistry lab" {
		t.Errorf("name_ci: got %q, want folded name", res.NameCI)
	}

	// Subsequent creates without an explicit order append after the
	// current maximum, explicit orders are kept as given.
	second, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Library"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.DisplayOrder != 2 {
		t.Errorf("second display order: got %d, want 2", second.DisplayOrder)
	}
	pinned, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Gym", DisplayOrder: 40})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if pinned.DisplayOrder != 40 {
		t.Errorf("pinned display order: got %d, want 40", pinned.DisplayOrder)
	}
	after, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Pool"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if after.DisplayOrder != 41 {
		t.Errorf("display order after pinned: got %d, want 41", after.DisplayOrder)
	}
}

func TestCreate_DisplayOrderPerOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	orgA := fx.CreateOrganization(ctx, "Lincoln High")
	orgB := fx.CreateOrganization(ctx, "Roosevelt Middle")
	store := resourcestore.New(db)

	if _, err := store.Create(ctx, models.Resource{OrganizationID: orgA.ID, Name: "Lab", DisplayOrder: 90}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	other, err := store.Create(ctx, models.Resource{OrganizationID: orgB.ID, Name: "Lab"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if other.DisplayOrder != 1 {
		t.Errorf("other org's order: got %d, want 1", other.DisplayOrder)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	store := resourcestore.New(db)

	_, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "  "})
	if !errors.Is(err, resourcestore.ErrInvalid) {
		t.Errorf("blank name: got %v, want ErrInvalid", err)
	}

	_, err = store.Create(ctx, models.Resource{
		OrganizationID:   org.ID,
		Name:             "Auditorium",
		ApprovalRequired: true,
	})
	if !errors.Is(err, resourcestore.ErrManagerRequired) {
		t.Errorf("approval without managers: got %v, want ErrManagerRequired", err)
	}
}

func TestUpdate_ManagerInvariantOnMergedResult(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	manager := fx.CreateManager(ctx, "Dana Reyes", "dana@lincoln.edu", org.ID)
	store := resourcestore.New(db)

	res, err := store.Create(ctx, models.Resource{
		OrganizationID: org.ID,
		Name:           "Auditorium",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Flipping to approval-required without managers must fail.
	err = store.Update(ctx, res.ID, models.Resource{
		Name:             res.Name,
		ApprovalRequired: true,
	})
	if !errors.Is(err, resourcestore.ErrManagerRequired) {
		t.Fatalf("got %v, want ErrManagerRequired", err)
	}

	// With a manager in the same mutation it succeeds.
	err = store.Update(ctx, res.ID, models.Resource{
		Name:             res.Name,
		ApprovalRequired: true,
		ManagerIDs:       []primitive.ObjectID{manager.ID},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Keeping approval on, managers carry over from the stored document.
	err = store.Update(ctx, res.ID, models.Resource{
		Name:             res.Name,
		ApprovalRequired: true,
	})
	if err != nil {
		t.Errorf("update with inherited managers failed: %v", err)
	}
}

func TestListByOrg_UnsetOrderSortsLast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	store := resourcestore.New(db)

	// Inserted directly with the sentinel, as a legacy document would be.
	unordered := fx.CreateResource(ctx, org.ID, "Unordered", false)
	second, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Second", DisplayOrder: 20})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	first, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "First", DisplayOrder: 10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items, err := store.ListByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items: got %d, want 3", len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID || items[2].ID != unordered.ID {
		t.Errorf("wrong order: %s, %s, %s", items[0].Name, items[1].Name, items[2].Name)
	}
}

func TestSwapOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	store := resourcestore.New(db)

	a, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Lab A", DisplayOrder: 10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Lab B", DisplayOrder: 20})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.SwapOrder(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	aAfter, _ := store.GetByID(ctx, a.ID)
	bAfter, _ := store.GetByID(ctx, b.ID)
	if aAfter.DisplayOrder != 20 || bAfter.DisplayOrder != 10 {
		t.Errorf("orders after swap: a=%d b=%d, want a=20 b=10", aAfter.DisplayOrder, bAfter.DisplayOrder)
	}
}

func TestSwapOrder_WithUnsetSentinel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	store := resourcestore.New(db)

	ordered, err := store.Create(ctx, models.Resource{OrganizationID: org.ID, Name: "Ordered", DisplayOrder: 10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	unset := fx.CreateResource(ctx, org.ID, "Unset", false)

	// The sentinel participates in swaps like any other value.
	if err := store.SwapOrder(ctx, ordered.ID, unset.ID); err != nil {
		t.Fatalf("swap failed: %v", err)
	}
	orderedAfter, _ := store.GetByID(ctx, ordered.ID)
	unsetAfter, _ := store.GetByID(ctx, unset.ID)
	if orderedAfter.DisplayOrder != models.OrderUnset {
		t.Errorf("expected ordered resource to take the sentinel, got %d", orderedAfter.DisplayOrder)
	}
	if unsetAfter.DisplayOrder != 10 {
		t.Errorf("expected unset resource to take 10, got %d", unsetAfter.DisplayOrder)
	}
}

func TestDeleteAndLiveIDSet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Lincoln High")
	store := resourcestore.New(db)

	kept := fx.CreateResource(ctx, org.ID, "Kept", false)
	doomed := fx.CreateResource(ctx, org.ID, "Doomed", false)

	deleted, err := store.Delete(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}

	live, err := store.LiveIDSet(ctx, org.ID)
	if err != nil {
		t.Fatalf("live set failed: %v", err)
	}
	if _, ok := live[kept.ID]; !ok {
		t.Error("expected kept resource in live set")
	}
	if _, ok := live[doomed.ID]; ok {
		t.Error("deleted resource still in live set")
	}

	if _, err := store.GetByID(ctx, doomed.ID); !errors.Is(err, resourcestore.ErrNotFound) {
		t.Errorf("get deleted: got %v, want ErrNotFound", err)
	}
}
