package txn

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "generic error", err: errors.New("some random error"), want: false},
		{
			name: "command error code 20",
			err:  mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"},
			want: true,
		},
		{
			name: "command error code 51",
			err:  mongo.CommandError{Code: 51, Message: "Illegal operation"},
			want: true,
		},
		{
			name: "command error code 263",
			err:  mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"},
			want: true,
		},
		{
			name: "unrelated command error code",
			err:  mongo.CommandError{Code: 100, Message: "Some other error"},
			want: false,
		},
		{
			name: "standalone keyword form",
			err:  errors.New("transaction failed because this is not a replica set member"),
			want: true,
		},
		{
			name: "session keyword form",
			err:  errors.New("session operations are not supported on this server"),
			want: true,
		},
		{
			name: "single keyword is not enough",
			err:  errors.New("transaction failed"),
			want: false,
		},
		{
			name: "transaction plus session",
			err:  errors.New("cannot start transaction in current session state"),
			want: true,
		},
		{
			name: "illegal operation form",
			err:  errors.New("illegal operation during transaction"),
			want: true,
		},
		{
			name: "case insensitive",
			err:  errors.New("TRANSACTION FAILED on REPLICA SET"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNotSupported(tt.err)
			if got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	transient := mongo.CommandError{
		Code:    112,
		Message: "WriteConflict",
		Labels:  []string{"TransientTransactionError"},
	}
	if !IsTransient(transient) {
		t.Error("expected labeled command error to be transient")
	}

	plain := mongo.CommandError{Code: 112, Message: "WriteConflict"}
	if IsTransient(plain) {
		t.Error("unlabeled command error must not be transient")
	}

	if IsTransient(errors.New("boom")) {
		t.Error("generic error must not be transient")
	}
	if IsTransient(nil) {
		t.Error("nil must not be transient")
	}
}
