// internal/domain/models/authmethods.go
package models

// AuthMethod represents an authentication method option.
type AuthMethod struct {
	Value string // The value stored in the database
	Label string // The display label
}

// EnabledAuthMethods contains the auth methods this deployment accepts.
var EnabledAuthMethods = []AuthMethod{
	{Value: "password", Label: "Password"},
	{Value: "google", Label: "Google"},
}

// IsEnabledAuthMethod checks if a value is an enabled auth method.
func IsEnabledAuthMethod(value string) bool {
	for _, m := range EnabledAuthMethods {
		if m.Value == value {
			return true
		}
	}
	return false
}
