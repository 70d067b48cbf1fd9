// Package refresh exposes cache refresh endpoints.
package refresh

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	errorsfeature "github.com/dalemusser/enrollhub/internal/app/features/errors"
	"github.com/dalemusser/enrollhub/internal/app/features/shared"
	refreshsys "github.com/dalemusser/enrollhub/internal/app/system/refresh"
	"github.com/dalemusser/enrollhub/internal/app/system/timeouts"
)

// Handler holds dependencies for the refresh endpoints.
type Handler struct {
	Refresher *refreshsys.Orchestrator
	ErrLog    *errorsfeature.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(refresher *refreshsys.Orchestrator, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Refresher: refresher, ErrLog: errLog, Log: logger}
}

// Force handles POST /api/{enterprise}/refresh. It re-fetches both
// sheets unconditionally and rewrites every dataset.
func (h *Handler) Force(w http.ResponseWriter, r *http.Request) {
	ent := shared.CurrentEnterprise(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	counts, err := h.Refresher.ForceRefresh(ctx, ent)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, refreshsys.Result{Refreshed: true, Counts: counts})
}

// Auto handles POST /api/{enterprise}/refresh/auto. It refreshes only
// when the cache is stale and reports whether a refresh ran.
func (h *Handler) Auto(w http.ResponseWriter, r *http.Request) {
	ent := shared.CurrentEnterprise(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	res, err := h.Refresher.AutoRefreshIfNeeded(ctx, ent, ent.TTLSeconds)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
