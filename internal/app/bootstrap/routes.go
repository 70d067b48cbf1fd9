// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dashboardfeature "github.com/dalemusser/enrollhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/enrollhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/enrollhub/internal/app/features/health"
	refreshfeature "github.com/dalemusser/enrollhub/internal/app/features/refresh"
	reportsfeature "github.com/dalemusser/enrollhub/internal/app/features/reports"
	"github.com/dalemusser/enrollhub/internal/app/features/shared"
	enterprisestore "github.com/dalemusser/enrollhub/internal/app/store/enterprises"
	snapshotstore "github.com/dalemusser/enrollhub/internal/app/store/snapshots"
	"github.com/dalemusser/enrollhub/internal/app/system/refresh"
	"github.com/dalemusser/enrollhub/internal/app/system/sheetsource"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. EnrollHub wires the snapshot
// store, the Sheets source client, the refresh orchestrator, and the
// enterprise store, then mounts the feature routers: health checks,
// per-org dashboards, rollup reports, and cache refresh endpoints. All
// /api/{enterprise} routes require a valid enterprise code and access
// code.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	cache := snapshotstore.New(appCfg.CacheDir, appCfg.TempDir, logger)

	source, err := buildSheetSource(appCfg, logger)
	if err != nil {
		logger.Error("sheet source init failed", zap.Error(err))
		return nil, err
	}

	orchestrator := refresh.New(cache, source, logger)
	if appCfg.DefaultTTL > 0 {
		orchestrator.DefaultTTL = appCfg.DefaultTTL
	}
	enterprises := enterprisestore.New(deps.MongoDatabase)
	errLog := errorsfeature.NewErrorLogger(logger)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	dashboardHandler := dashboardfeature.NewHandler(cache, orchestrator, errLog, logger)
	reportsHandler := reportsfeature.NewHandler(enterprises, cache, orchestrator, errLog, logger)
	refreshHandler := refreshfeature.NewHandler(orchestrator, errLog, logger)

	r := chi.NewRouter()
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api/{enterprise}", func(r chi.Router) {
		r.Use(shared.RequireEnterprise(enterprises, errLog, logger))
		r.Mount("/orgs", dashboardfeature.Routes(dashboardHandler))
		r.Mount("/reports", reportsfeature.Routes(reportsHandler))
		r.Mount("/refresh", refreshfeature.Routes(refreshHandler))
	})

	return r, nil
}

// buildSheetSource picks the Sheets authentication method: a
// service-account credentials file when configured, otherwise an API
// key.
func buildSheetSource(appCfg AppConfig, logger *zap.Logger) (sheetsource.Source, error) {
	if appCfg.SheetsCredentialsFile != "" {
		creds, err := os.ReadFile(appCfg.SheetsCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read sheets credentials: %w", err)
		}
		return sheetsource.NewServiceAccountClient(context.Background(), creds, logger)
	}
	return sheetsource.NewClient(appCfg.SheetsAPIKey, logger), nil
}
