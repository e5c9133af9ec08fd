// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/reservehub/reservehub/internal/app/store/audit"
	"github.com/reservehub/reservehub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Logger records audit events to MongoDB (via audit.Store) and to
// structured logs (via zap). A nil *Logger is a no-op, so handlers never
// have to guard their audit calls.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
}

// New creates an audit Logger writing to both the store and zap.
func New(store *audit.Store, zapLog *zap.Logger) *Logger {
	return &Logger{store: store, zapLog: zapLog}
}

// NewNopLogger returns a Logger that discards everything. Test helper.
func NewNopLogger() *Logger {
	return &Logger{zapLog: zap.NewNop()}
}

// Log records a single audit event. Store failures are logged and
// swallowed; an audit write must never fail the user's request.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.SubjectID != nil {
		fields = append(fields, zap.String("subject_id", event.SubjectID.Hex()))
	}
	if event.OrganizationID != nil {
		fields = append(fields, zap.String("organization_id", event.OrganizationID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	l.zapLog.Info("audit event", fields...)

	if l.store == nil {
		return
	}
	if err := l.store.Log(ctx, event); err != nil {
		l.zapLog.Error("failed to store audit event",
			zap.Error(err),
			zap.String("event_type", event.EventType))
	}
}

// --- Authentication events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, orgID *primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryAuth,
		EventType:      audit.EventLoginSuccess,
		OrganizationID: orgID,
		ActorID:        &userID,
		IP:             ratelimit.ClientIP(r),
		UserAgent:      r.UserAgent(),
		Success:        true,
		Details:        map[string]string{"email": email},
	})
}

// LoginFailed logs a rejected sign-in attempt. Wrong passwords and
// unknown accounts record the same event so the trail cannot be used to
// probe for accounts either.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginFailed,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   false,
		Details:   map[string]string{"email": email},
	})
}

// LoginRateLimited logs a sign-in attempt blocked by the rate limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            ratelimit.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

// --- Booking events ---

// BookingEvent logs a booking lifecycle transition. eventType is one of
// the audit.EventBooking* constants.
func (l *Logger) BookingEvent(ctx context.Context, r *http.Request, eventType string, actorID, bookingID, orgID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryBooking,
		EventType:      eventType,
		OrganizationID: &orgID,
		ActorID:        &actorID,
		SubjectID:      &bookingID,
		IP:             ratelimit.ClientIP(r),
		UserAgent:      r.UserAgent(),
		Success:        true,
	})
}

// --- Admin events ---

// AdminEvent logs a catalog or tenant mutation. eventType is one of the
// audit.EventOrg*/EventResource* constants; subjectID is the organization
// or resource acted on.
func (l *Logger) AdminEvent(ctx context.Context, r *http.Request, eventType string, actorID, subjectID primitive.ObjectID, orgID *primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryAdmin,
		EventType:      eventType,
		OrganizationID: orgID,
		ActorID:        &actorID,
		SubjectID:      &subjectID,
		IP:             ratelimit.ClientIP(r),
		UserAgent:      r.UserAgent(),
		Success:        true,
	})
}
