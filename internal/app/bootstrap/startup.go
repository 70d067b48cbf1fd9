// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// EnrollHub creates the cache and temp directories here so the first
// refresh never races directory creation.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	for _, dir := range []string{appCfg.CacheDir, appCfg.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	logger.Info("snapshot cache ready",
		zap.String("cache_dir", appCfg.CacheDir),
		zap.String("temp_dir", appCfg.TempDir))
	return nil
}
