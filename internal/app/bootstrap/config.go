// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for EnrollHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, cache_dir, etc.
//   - Environment variables: ENROLLHUB_MONGO_URI, ENROLLHUB_CACHE_DIR, etc.
//   - Command-line flags: --mongo_uri, --cache_dir, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "enrollhub", Desc: "MongoDB database name"},

	// Snapshot cache
	{Name: "cache_dir", Default: "./cache", Desc: "Root directory for per-enterprise snapshot files"},
	{Name: "temp_dir", Default: "./cache/tmp", Desc: "Shared scratch directory for temporary files"},
	{Name: "default_ttl", Default: "3h", Desc: "Default snapshot TTL when an enterprise does not set one (e.g., 3h, 90m)"},

	// Google Sheets source
	{Name: "sheets_api_key", Default: "", Desc: "Google Sheets API key (public sheets)"},
	{Name: "sheets_credentials_file", Default: "", Desc: "Path to Google service-account credentials JSON"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, ENROLLHUB_* for app), and
// command-line flags, with flags taking highest precedence.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ENROLLHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		CacheDir: appValues.String("cache_dir"),
		TempDir:  appValues.String("temp_dir"),

		SheetsAPIKey:          appValues.String("sheets_api_key"),
		SheetsCredentialsFile: appValues.String("sheets_credentials_file"),

		DefaultTTL: appValues.Duration("default_ttl", 3*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// EnrollHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and requires at least one
// Sheets authentication method.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.SheetsAPIKey == "" && appCfg.SheetsCredentialsFile == "" {
		return fmt.Errorf("either sheets_api_key or sheets_credentials_file must be set")
	}

	if appCfg.CacheDir == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}

	return nil
}
