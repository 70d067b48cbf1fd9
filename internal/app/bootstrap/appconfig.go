// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: WAFFLE's CoreConfig
// handles framework-level settings like ports, TLS, logging, and CORS.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Snapshot cache configuration
	CacheDir string // Root directory for per-enterprise snapshot files
	TempDir  string // Shared scratch directory, swept of stale files

	// Google Sheets source configuration. Exactly one authentication
	// method is used: a service-account credentials file when set,
	// otherwise an API key.
	SheetsAPIKey          string // API key for public sheets
	SheetsCredentialsFile string // Path to service-account credentials JSON

	// Default cache TTL applied when an enterprise does not set one.
	DefaultTTL time.Duration
}
