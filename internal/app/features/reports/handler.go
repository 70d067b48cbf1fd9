// Package reports serves enterprise-wide rollup reports.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	errorsfeature "github.com/dalemusser/enrollhub/internal/app/features/errors"
	"github.com/dalemusser/enrollhub/internal/app/features/shared"
	enterprisestore "github.com/dalemusser/enrollhub/internal/app/store/enterprises"
	snapshotstore "github.com/dalemusser/enrollhub/internal/app/store/snapshots"
	"github.com/dalemusser/enrollhub/internal/app/system/dates"
	"github.com/dalemusser/enrollhub/internal/app/system/orgnames"
	"github.com/dalemusser/enrollhub/internal/app/system/refresh"
	"github.com/dalemusser/enrollhub/internal/app/system/reporting"
	"github.com/dalemusser/enrollhub/internal/app/system/timeouts"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// Handler holds dependencies for the report endpoints.
type Handler struct {
	Enterprises *enterprisestore.Store
	Cache       *snapshotstore.Store
	Refresher   *refresh.Orchestrator
	ErrLog      *errorsfeature.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(enterprises *enterprisestore.Store, cache *snapshotstore.Store, refresher *refresh.Orchestrator, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Enterprises: enterprises,
		Cache:       cache,
		Refresher:   refresher,
		ErrLog:      errLog,
		Log:         logger,
	}
}

// query holds the validated report parameters.
type query struct {
	rng  reporting.DateRange
	mode string
}

// parseQuery validates start, end, and mode. The start bound is
// clamped to the enterprise's earliest reporting date, since no data
// exists below it. Mode defaults to the enterprise's configured
// counting mode when absent.
func (h *Handler) parseQuery(r *http.Request, ent *models.Enterprise) (query, string) {
	q := r.URL.Query()

	rng, err := reporting.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		return query{}, "Dates must be in MM-DD-YY format."
	}
	if ent.StartDate != "" {
		if floor, err := dates.Parse(ent.StartDate); err == nil && rng.Start.Compare(floor) < 0 {
			rng.Start = floor
		}
	}

	mode := q.Get("mode")
	if mode == "" {
		mode = ent.EnrollmentMode
	}
	if mode == "" {
		mode = reporting.ModeTOUCompletion
	}
	if !reporting.ValidMode(mode) {
		return query{}, "Unknown enrollment mode."
	}
	return query{rng: rng, mode: mode}, ""
}

// GetSystemwide handles GET /api/{enterprise}/reports/systemwide.
func (h *Handler) GetSystemwide(w http.ResponseWriter, r *http.Request) {
	ent := shared.CurrentEnterprise(r)
	q, msg := h.parseQuery(r, ent)
	if msg != "" {
		h.ErrLog.BadRequest(w, r, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	snaps, err := h.loadSnapshots(ctx, ent)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusServiceUnavailable, err)
		return
	}

	counts := reporting.Systemwide(snaps.registrations, snaps.enrollments, snaps.certificates, q.mode, q.rng)
	writeJSON(w, counts)
}

// orgCountsRow adds a display name to the rollup counts.
type orgCountsRow struct {
	models.OrgCounts
	DisplayName string `json:"display_name"`
}

// GetOrganizations handles GET /api/{enterprise}/reports/organizations.
func (h *Handler) GetOrganizations(w http.ResponseWriter, r *http.Request) {
	ent := shared.CurrentEnterprise(r)
	q, msg := h.parseQuery(r, ent)
	if msg != "" {
		h.ErrLog.BadRequest(w, r, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	roster, err := h.rosterNames(ctx, ent)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusInternalServerError, err)
		return
	}
	snaps, err := h.loadSnapshots(ctx, ent)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusServiceUnavailable, err)
		return
	}

	counts := reporting.Organizations(snaps.registrations, snaps.enrollments, snaps.certificates, q.mode, q.rng, roster)
	rows := make([]orgCountsRow, len(counts))
	for i, c := range counts {
		rows[i] = orgCountsRow{OrgCounts: c, DisplayName: orgnames.Abbreviate(c.Organization)}
	}
	writeJSON(w, rows)
}

// GetGroups handles GET /api/{enterprise}/reports/groups.
func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	ent := shared.CurrentEnterprise(r)
	q, msg := h.parseQuery(r, ent)
	if msg != "" {
		h.ErrLog.BadRequest(w, r, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	roster, err := h.rosterNames(ctx, ent)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusInternalServerError, err)
		return
	}
	snaps, err := h.loadSnapshots(ctx, ent)
	if err != nil {
		h.ErrLog.Serve(w, r, http.StatusServiceUnavailable, err)
		return
	}

	rows := reporting.Groups(snaps.registrations, snaps.enrollments, snaps.certificates, q.mode, q.rng, roster, ent.GroupMap)
	writeJSON(w, rows)
}

type rollupSnapshots struct {
	registrations models.BareSnapshot
	enrollments   models.BareSnapshot
	certificates  models.BareSnapshot
}

// loadSnapshots refreshes the cache when stale and reads the three
// rollup datasets. A failed refresh over a populated cache serves the
// stale data; a failed refresh over an empty cache is an error.
func (h *Handler) loadSnapshots(ctx context.Context, ent *models.Enterprise) (rollupSnapshots, error) {
	_, refreshErr := h.Refresher.AutoRefreshIfNeeded(ctx, ent, ent.TTLSeconds)

	var snaps rollupSnapshots
	for dataset, dst := range map[string]*models.BareSnapshot{
		snapshotstore.DatasetRegistrations: &snaps.registrations,
		snapshotstore.DatasetEnrollments:   &snaps.enrollments,
		snapshotstore.DatasetCertificates:  &snaps.certificates,
	} {
		snap, ok, err := h.Cache.ReadBare(ent.Code, dataset)
		if errors.Is(err, snapshotstore.ErrCacheCorrupt) {
			if _, err := h.Refresher.ForceRefresh(ctx, ent); err != nil {
				return rollupSnapshots{}, err
			}
			snap, ok, err = h.Cache.ReadBare(ent.Code, dataset)
		}
		if err != nil {
			return rollupSnapshots{}, err
		}
		if !ok {
			if refreshErr != nil {
				return rollupSnapshots{}, refreshErr
			}
			snap = models.BareSnapshot{}
		}
		*dst = snap
	}
	if refreshErr != nil {
		h.Log.Warn("serving stale rollup snapshots, refresh failed",
			zap.String("enterprise", ent.Code),
			zap.Error(refreshErr))
	}
	return snaps, nil
}

func (h *Handler) rosterNames(ctx context.Context, ent *models.Enterprise) ([]string, error) {
	orgs, err := h.Enterprises.Organizations(ctx, ent.Code)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(orgs))
	for i, org := range orgs {
		names[i] = org.Name
	}
	return names, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
