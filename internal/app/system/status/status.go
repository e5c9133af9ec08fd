// internal/app/system/status/status.go
package status

// Record statuses shared by organizations and users.
const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is a known status.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
