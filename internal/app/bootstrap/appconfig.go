// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS, body limits). AppConfig is everything specific to
// ReserveHub: database connection strings, session settings, storage,
// OAuth credentials, and the background sweep cadence.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: reservehub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// File storage configuration (resource images)
	StorageLocalPath string // Local storage path (e.g., "./uploads/resources")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/resources")

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g., "https://reservehub.example.com")
	BaseURL string

	// Admin bootstrap: creates or promotes this account on startup.
	AdminEmail    string
	AdminPassword string

	// Consistency sweeper cadence.
	SweepInterval time.Duration
}
