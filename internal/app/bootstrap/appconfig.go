// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to StandHub lives: the MongoDB
// connection, session and CSRF keys, Google OAuth credentials, audit
// logging modes, and the stale standing-session sweeper settings.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: standhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// CSRF protection
	CSRFKey string // 32-byte key for gorilla/csrf token signing

	// Base URL for OAuth callbacks and absolute links
	BaseURL string // e.g., "https://standhub.app" or "http://localhost:3000"

	// Google OAuth configuration (blank disables the "Sign in with Google" path)
	GoogleClientID     string
	GoogleClientSecret string

	// Audit logging modes: "all" (db+log), "db", "log", or "off"
	AuditLogAuth string // signup/login/logout events
	AuditLogTeam string // team membership events

	// Stale standing-session sweeper
	StaleSweepInterval time.Duration // how often to sweep for forgotten timers
	StaleMaxAge        time.Duration // open sessions older than this get closed
}
