// internal/app/booking/engine.go
//
// Package booking is the reservation engine: conflict detection, the
// approval state machine, cancellation, and week duplication. Everything
// that decides whether a booking may exist lives here; the stores
// underneath are plain document access.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	bookingstore "github.com/reservehub/reservehub/internal/app/store/bookings"
	resourcestore "github.com/reservehub/reservehub/internal/app/store/resources"
	schedulestore "github.com/reservehub/reservehub/internal/app/store/schedules"
	"github.com/reservehub/reservehub/internal/app/system/htmlsanitize"
	"github.com/reservehub/reservehub/internal/app/system/keyedmutex"
	"github.com/reservehub/reservehub/internal/app/system/txn"
	"github.com/reservehub/reservehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Actor is the authenticated caller, as resolved by the session layer.
// The engine trusts tenant membership was already checked and enforces
// only owner and resource-manager rules itself.
type Actor struct {
	ID   primitive.ObjectID
	Name string
}

// RequestInput is one booking request: a contiguous run of template
// periods on a single date, identified by index into the organization's
// period list.
type RequestInput struct {
	OrganizationID primitive.ObjectID
	ResourceID     primitive.ObjectID
	Date           string // "YYYY-MM-DD"
	StartPeriod    int
	EndPeriod      int
	Purpose        string
}

// Engine composes the stores into the reservation operations.
type Engine struct {
	client    *mongo.Client
	schedules *schedulestore.Store
	resources *resourcestore.Store
	bookings  *bookingstore.Store
	log       *zap.Logger

	// slotLocks serializes conflict checks per (resource, date) when the
	// server topology cannot run transactions. With transactions
	// available the cross-process fence is the slot guard document each
	// transaction writes (see createChecked); this mutex just keeps
	// local goroutines from burning transaction retries on each other.
	slotLocks *keyedmutex.Mutex

	warnOnce sync.Once
}

// New builds an Engine over the shared database handle.
func New(db *mongo.Database, logger *zap.Logger) *Engine {
	return &Engine{
		client:    db.Client(),
		schedules: schedulestore.New(db),
		resources: resourcestore.New(db),
		bookings:  bookingstore.New(db),
		log:       logger,
		slotLocks: keyedmutex.New(),
	}
}

// Request books a resource for the given period range.
//
// The conflict check and the insert run as one atomic unit scoped to
// (resource, date): inside a MongoDB transaction where the topology
// supports one, otherwise under a process-local keyed lock. Two
// concurrent overlapping requests end with exactly one created booking
// and one ErrSlotConflict.
func (e *Engine) Request(ctx context.Context, in RequestInput, actor Actor) (models.Booking, error) {
	date, err := models.ParseDate(in.Date)
	if err != nil {
		return models.Booking{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	periods, err := e.schedules.Get(ctx, in.OrganizationID)
	if err != nil {
		return models.Booking{}, fmt.Errorf("load schedule template: %w", err)
	}
	if len(periods) == 0 {
		return models.Booking{}, ErrNoSchedule
	}
	if in.StartPeriod < 0 || in.EndPeriod >= len(periods) || in.StartPeriod > in.EndPeriod {
		// End-before-start is rejected, never silently swapped.
		return models.Booking{}, ErrInvalidRange
	}

	res, err := e.resources.GetByID(ctx, in.ResourceID)
	if err != nil {
		return models.Booking{}, err
	}
	if res.OrganizationID != in.OrganizationID {
		return models.Booking{}, ErrNotFound
	}

	status := models.BookingApproved
	if res.ApprovalRequired {
		status = models.BookingPending
	}

	candidate := models.Booking{
		OrganizationID: in.OrganizationID,
		ResourceID:     in.ResourceID,
		OwnerID:        actor.ID,
		OwnerName:      actor.Name,
		Date:           date,
		StartTime:      periods[in.StartPeriod].Start,
		EndTime:        periods[in.EndPeriod].End,
		Status:         status,
		Purpose:        htmlsanitize.Sanitize(in.Purpose),
	}

	return e.createChecked(ctx, candidate)
}

// createChecked runs the conflict-check-then-insert critical section.
//
// Snapshot isolation alone does not fence two instances booking the
// same slot: each transaction inserts a distinct new document, so
// neither writes anything the other wrote and both would commit. The
// guard write at the top of each attempt pins the transaction to the
// slot's one shared document in slot_locks; the second writer aborts
// with a transient error, retries on a snapshot that now holds the
// winner's booking, and loses the overlap check instead. Requests for
// different (resource, date) pairs touch different guard documents and
// never block each other.
func (e *Engine) createChecked(ctx context.Context, b models.Booking) (models.Booking, error) {
	key := b.ResourceID.Hex() + "|" + b.Date
	e.slotLocks.Lock(key)
	defer e.slotLocks.Unlock(key)

	var created models.Booking
	attempt := func(ctx context.Context) error {
		if err := e.bookings.LockSlot(ctx, b.ResourceID, b.Date); err != nil {
			return err
		}
		_, err := e.bookings.FindOverlap(ctx, b.ResourceID, b.Date, b.StartTime, b.EndTime)
		if err == nil {
			return ErrSlotConflict
		}
		if !errors.Is(err, bookingstore.ErrNotFound) {
			return err
		}
		created, err = e.bookings.Insert(ctx, b)
		return err
	}

	err := txn.Run(ctx, e.client, func(sc mongo.SessionContext) error {
		return attempt(sc)
	})
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, ErrSlotConflict):
		return models.Booking{}, ErrSlotConflict
	case txn.IsNotSupported(err):
		e.warnOnce.Do(func() {
			e.log.Warn("mongodb topology does not support transactions; " +
				"booking conflict checks are serialized in-process only — " +
				"run against a replica set before scaling out")
		})
		if err := attempt(ctx); err != nil {
			return models.Booking{}, err
		}
		return created, nil
	case txn.IsTransient(err):
		// Retries exhausted. Contention on this (resource, date) key is
		// operationally indistinguishable from losing the slot.
		e.log.Info("booking transaction aborted under contention",
			zap.String("resource_id", b.ResourceID.Hex()),
			zap.String("date", b.Date))
		return models.Booking{}, ErrSlotConflict
	default:
		return models.Booking{}, fmt.Errorf("booking transaction: %w", err)
	}
}

// Approve moves a pending booking to approved. Only a manager of the
// booking's resource may call it; the manager set is read at action time,
// never cached on the booking.
func (e *Engine) Approve(ctx context.Context, bookingID primitive.ObjectID, actor Actor) (models.Booking, error) {
	return e.transition(ctx, bookingID, actor, models.BookingApproved)
}

// Reject moves a pending booking to rejected. Terminal, like Approve.
func (e *Engine) Reject(ctx context.Context, bookingID primitive.ObjectID, actor Actor) (models.Booking, error) {
	return e.transition(ctx, bookingID, actor, models.BookingRejected)
}

func (e *Engine) transition(ctx context.Context, bookingID primitive.ObjectID, actor Actor, to string) (models.Booking, error) {
	b, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	res, err := e.resources.GetByID(ctx, b.ResourceID)
	if err != nil {
		return models.Booking{}, err
	}
	if !res.ManagedBy(actor.ID) {
		return models.Booking{}, ErrForbidden
	}
	if b.Status != models.BookingPending {
		return models.Booking{}, ErrInvalidState
	}

	// Conditional update: the pending check rides in the filter, so of
	// two racing managers only the first transition lands.
	ok, err := e.bookings.TransitionFromPending(ctx, bookingID, to)
	if err != nil {
		return models.Booking{}, err
	}
	if !ok {
		return models.Booking{}, ErrInvalidState
	}
	b.Status = to
	return b, nil
}

// Cancel deletes the booking regardless of status. Allowed for the owner
// and for managers of the booking's resource. If the resource is already
// gone (sweeper hasn't caught up), only the owner may cancel.
func (e *Engine) Cancel(ctx context.Context, bookingID primitive.ObjectID, actor Actor) error {
	b, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	allowed := b.OwnerID == actor.ID
	if !allowed {
		res, err := e.resources.GetByID(ctx, b.ResourceID)
		if err != nil && !errors.Is(err, resourcestore.ErrNotFound) {
			return err
		}
		allowed = err == nil && res.ManagedBy(actor.ID)
	}
	if !allowed {
		return ErrForbidden
	}

	return e.bookings.Delete(ctx, bookingID)
}

// UpdatePurpose rewrites the booking's purpose text. Owner only. Time and
// resource are unchanged, so no conflict re-check is needed.
func (e *Engine) UpdatePurpose(ctx context.Context, bookingID primitive.ObjectID, purpose string, actor Actor) error {
	b, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.OwnerID != actor.ID {
		return ErrForbidden
	}
	return e.bookings.UpdatePurpose(ctx, bookingID, htmlsanitize.Sanitize(purpose))
}

// DuplicateToNextWeek books the same slot seven days after the source
// booking. Owner only, and only for instant-confirm resources: a resource
// behind a manager gate must not be rebooked without passing the gate
// again, so the policy (not the source booking's status) decides. The new
// booking is created approved after a full conflict re-check at the new
// date.
func (e *Engine) DuplicateToNextWeek(ctx context.Context, bookingID primitive.ObjectID, actor Actor) (models.Booking, error) {
	src, err := e.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if src.OwnerID != actor.ID {
		return models.Booking{}, ErrForbidden
	}

	res, err := e.resources.GetByID(ctx, src.ResourceID)
	if err != nil {
		return models.Booking{}, err
	}
	if res.ApprovalRequired {
		return models.Booking{}, ErrPolicyViolation
	}

	date, err := models.AddDays(src.Date, 7)
	if err != nil {
		return models.Booking{}, err
	}

	candidate := models.Booking{
		OrganizationID: src.OrganizationID,
		ResourceID:     src.ResourceID,
		OwnerID:        src.OwnerID,
		OwnerName:      src.OwnerName,
		Date:           date,
		StartTime:      src.StartTime,
		EndTime:        src.EndTime,
		Status:         models.BookingApproved,
		Purpose:        src.Purpose,
	}
	return e.createChecked(ctx, candidate)
}

// Get returns one booking by ID.
func (e *Engine) Get(ctx context.Context, bookingID primitive.ObjectID) (models.Booking, error) {
	return e.bookings.GetByID(ctx, bookingID)
}

// ListForResourceDate is the grid read: all bookings for one resource on
// one date, sorted by start time.
func (e *Engine) ListForResourceDate(ctx context.Context, resourceID primitive.ObjectID, date string) ([]models.Booking, error) {
	d, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	return e.bookings.ListForResourceDate(ctx, resourceID, d)
}

// ListForOwner returns the actor's own bookings, newest date first.
func (e *Engine) ListForOwner(ctx context.Context, orgID primitive.ObjectID, actor Actor) ([]models.Booking, error) {
	return e.bookings.ListForOwner(ctx, orgID, actor.ID)
}

// ListForOrgDateRange returns the organization's bookings with dates in
// [from, to].
func (e *Engine) ListForOrgDateRange(ctx context.Context, orgID primitive.ObjectID, from, to string) ([]models.Booking, error) {
	f, err := models.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	t, err := models.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if f > t {
		return nil, ErrInvalidRange
	}
	return e.bookings.ListForOrgDateRange(ctx, orgID, f, t)
}

// ListPendingForManager returns the pending bookings awaiting the actor
// on resources they manage, oldest first.
func (e *Engine) ListPendingForManager(ctx context.Context, orgID primitive.ObjectID, actor Actor) ([]models.Booking, error) {
	resources, err := e.resources.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	var managed []primitive.ObjectID
	for _, r := range resources {
		if r.ManagedBy(actor.ID) {
			managed = append(managed, r.ID)
		}
	}
	return e.bookings.ListPendingForManager(ctx, managed)
}
