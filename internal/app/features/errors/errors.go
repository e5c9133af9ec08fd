// internal/app/features/errors/errors.go
//
// Package errors holds the API error envelope and the shared error
// logger. Every non-2xx response in the service goes through Write, so
// clients always see the same shape:
//
//	{ "error": "<kind>", "message": "<human text>" }
//
// Clients branch on the kind string, never on the message.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger centralizes logging of handler-level failures so handlers
// stay terse and the log fields stay consistent.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger backed by the given zap logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// ServerError logs err with request context and writes a generic 500
// envelope. The internal error text never reaches the client.
func (l *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	l.log.Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Write(w, http.StatusInternalServerError, "Internal", "something went wrong")
}

// envelope is the wire shape of every error response.
type envelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Write emits the error envelope with the given status.
func Write(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: kind, Message: msg})
}

// JSON emits v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// BadRequest writes a 400 envelope for malformed request bodies.
func BadRequest(w http.ResponseWriter, msg string) {
	Write(w, http.StatusBadRequest, "BadRequest", msg)
}

// NotFound writes a 404 envelope.
func NotFound(w http.ResponseWriter, msg string) {
	Write(w, http.StatusNotFound, "NotFound", msg)
}

// Forbidden writes a 403 envelope.
func Forbidden(w http.ResponseWriter, msg string) {
	Write(w, http.StatusForbidden, "Forbidden", msg)
}
