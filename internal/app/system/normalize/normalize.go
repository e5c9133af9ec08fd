// internal/app/system/normalize/normalize.go
//
// Package normalize canonicalizes user-supplied scalar inputs before they
// reach validation or storage. Keep these dumb: trim, lowercase where the
// value is case-insensitive by definition, nothing clever.
package normalize

import (
	"net/http"
	"strings"
)

// Email lowercases and trims an email/login identifier.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses interior runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam returns the trimmed value of a URL query parameter.
func QueryParam(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
