// internal/app/system/txn/txn.go
//
// Package txn wraps MongoDB multi-document transactions for the booking
// engine's check-then-write critical sections.
//
// Transactions need a replica set (or mongos). Standalone servers reject
// them with a handful of different command errors depending on version;
// IsNotSupported recognizes those so callers can fall back to a
// process-local guard instead of failing every request.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// MaxAttempts bounds how many times Run retries a transiently-aborted
// transaction before giving up and returning the last error to the caller.
const MaxAttempts = 3

// Run executes fn inside a MongoDB transaction, retrying up to
// MaxAttempts times on transient aborts (write conflicts between
// concurrent transactions touching the same documents).
//
// Errors returned by fn itself are never retried; only storage-layer
// transient labels are. If the topology does not support transactions at
// all, Run returns an error for which IsNotSupported reports true and fn
// is not re-run.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		_, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			return nil, fn(sc)
		})
		if err == nil {
			return nil
		}
		lastErr = err
		if IsNotSupported(err) || !IsTransient(err) {
			return err
		}
	}
	return lastErr
}

// IsTransient reports whether the error carries MongoDB's transient
// transaction label, meaning the whole transaction can be retried.
func IsTransient(err error) bool {
	var le interface{ HasErrorLabel(string) bool }
	if errors.As(err, &le) {
		return le.HasErrorLabel("TransientTransactionError")
	}
	return false
}

// IsNotSupported reports whether the error indicates the server topology
// cannot run multi-document transactions (standalone mongod, old wire
// version, or DocumentDB-style partial support).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263:
			// IllegalOperation / OperationNotSupportedInTransaction /
			// transaction numbers on non-replset members.
			return true
		}
	}

	s := strings.ToLower(err.Error())
	has := func(sub string) bool { return strings.Contains(s, sub) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation") && has("transaction"):
		return true
	}
	return false
}
