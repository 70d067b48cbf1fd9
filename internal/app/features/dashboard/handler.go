// Package dashboard serves per-organization dashboard views.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	errorsfeature "github.com/dalemusser/enrollhub/internal/app/features/errors"
	"github.com/dalemusser/enrollhub/internal/app/features/shared"
	snapshotstore "github.com/dalemusser/enrollhub/internal/app/store/snapshots"
	"github.com/dalemusser/enrollhub/internal/app/system/orgnames"
	"github.com/dalemusser/enrollhub/internal/app/system/refresh"
	"github.com/dalemusser/enrollhub/internal/app/system/reporting"
	"github.com/dalemusser/enrollhub/internal/app/system/timeouts"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// Handler holds dependencies for the dashboard endpoints.
type Handler struct {
	Cache     *snapshotstore.Store
	Refresher *refresh.Orchestrator
	ErrLog    *errorsfeature.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(cache *snapshotstore.Store, refresher *refresh.Orchestrator, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Cache: cache, Refresher: refresher, ErrLog: errLog, Log: logger}
}

type dashboardResponse struct {
	Organization string `json:"organization"`
	DisplayName  string `json:"display_name"`
	models.OrgData
}

// GetOrgData handles GET /api/{enterprise}/orgs/{org}/dashboard.
//
// The cache is refreshed first when stale. If the upstream source is
// down and a previous snapshot exists, the stale snapshot is served;
// with no snapshot at all the degraded-service error is returned.
func (h *Handler) GetOrgData(w http.ResponseWriter, r *http.Request) {
	ent := shared.CurrentEnterprise(r)
	org := chi.URLParam(r, "org")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	snap, err := h.loadRegistrants(ctx, ent)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusServiceUnavailable, err)
		return
	}

	resp := dashboardResponse{
		Organization: org,
		DisplayName:  orgnames.Abbreviate(org),
		OrgData:      reporting.OrgData(snap, org),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// loadRegistrants returns the registrants snapshot, refreshing the
// cache when stale or corrupt and falling back to a stale snapshot
// when the upstream source is unavailable.
func (h *Handler) loadRegistrants(ctx context.Context, ent *models.Enterprise) (models.WrappedSnapshot, error) {
	_, refreshErr := h.Refresher.AutoRefreshIfNeeded(ctx, ent, ent.TTLSeconds)

	snap, ok, err := h.Cache.ReadWrapped(ent.Code, snapshotstore.DatasetRegistrants)
	if errors.Is(err, snapshotstore.ErrCacheCorrupt) {
		// A corrupt snapshot is re-fetched once.
		if _, err := h.Refresher.ForceRefresh(ctx, ent); err != nil {
			return models.WrappedSnapshot{}, err
		}
		snap, ok, err = h.Cache.ReadWrapped(ent.Code, snapshotstore.DatasetRegistrants)
	}
	if err != nil {
		return models.WrappedSnapshot{}, err
	}
	if !ok {
		if refreshErr != nil {
			return models.WrappedSnapshot{}, refreshErr
		}
		return models.WrappedSnapshot{}, errors.New("registrants snapshot missing after refresh")
	}
	if refreshErr != nil {
		h.Log.Warn("serving stale snapshot, refresh failed",
			zap.String("enterprise", ent.Code),
			zap.Error(refreshErr))
	}
	return snap, nil
}
