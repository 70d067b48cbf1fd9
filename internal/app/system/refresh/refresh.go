// Package refresh orchestrates cache refreshes: fetch both sheets,
// derive the rollup datasets, and swap everything into the snapshot
// store. Fetch happens before any write, so a failed refresh leaves
// the previous snapshots intact.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	snapshotstore "github.com/dalemusser/enrollhub/internal/app/store/snapshots"
	"github.com/dalemusser/enrollhub/internal/app/system/cellclean"
	"github.com/dalemusser/enrollhub/internal/app/system/dates"
	"github.com/dalemusser/enrollhub/internal/app/system/demodata"
	"github.com/dalemusser/enrollhub/internal/app/system/recordschema"
	"github.com/dalemusser/enrollhub/internal/app/system/sheetsource"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// ErrUpstreamFetch reports a refresh that failed before writing
// anything; cached snapshots are unchanged.
var ErrUpstreamFetch = errors.New("upstream fetch failed")

// Result reports whether an auto-refresh actually ran and the counts
// now in the cache.
type Result struct {
	Refreshed bool                 `json:"refreshed"`
	Counts    models.RefreshCounts `json:"counts"`
}

// Orchestrator coordinates refreshes for all enterprises. Refreshes
// for the same enterprise are serialized; different enterprises
// proceed in parallel.
type Orchestrator struct {
	cache  *snapshotstore.Store
	source sheetsource.Source
	log    *zap.Logger

	// Now is replaceable in tests.
	Now func() time.Time

	// DefaultTTL applies when an enterprise does not set a TTL of its
	// own. Without a fallback a zero TTL would mark the cache stale on
	// every request and re-fetch both sheets each time.
	DefaultTTL time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(cache *snapshotstore.Store, source sheetsource.Source, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cache:      cache,
		source:     source,
		log:        logger,
		Now:        time.Now,
		DefaultTTL: 3 * time.Hour,
		locks:      map[string]*sync.Mutex{},
	}
}

// NeedsRefresh reports whether the enterprise's cache is stale. The
// registrants dataset is the canonical staleness marker since every
// refresh writes all datasets together.
func (o *Orchestrator) NeedsRefresh(ent *models.Enterprise, ttlSeconds int) bool {
	if ttlSeconds <= 0 {
		ttlSeconds = int(o.DefaultTTL / time.Second)
	}
	return o.cache.IsStale(ent.Code, snapshotstore.DatasetRegistrants, ttlSeconds)
}

// AutoRefreshIfNeeded refreshes only when the cache is stale.
func (o *Orchestrator) AutoRefreshIfNeeded(ctx context.Context, ent *models.Enterprise, ttlSeconds int) (Result, error) {
	if !o.NeedsRefresh(ent, ttlSeconds) {
		counts, err := o.CurrentCounts(ent.Code)
		if err != nil {
			return Result{}, err
		}
		return Result{Refreshed: false, Counts: counts}, nil
	}
	counts, err := o.ForceRefresh(ctx, ent)
	if err != nil {
		return Result{}, err
	}
	return Result{Refreshed: true, Counts: counts}, nil
}

// ForceRefresh fetches both sheets and rewrites every dataset.
func (o *Orchestrator) ForceRefresh(ctx context.Context, ent *models.Enterprise) (models.RefreshCounts, error) {
	lock := o.enterpriseLock(ent.Code)
	lock.Lock()
	defer lock.Unlock()

	start := o.Now()

	// Fetch everything before writing anything.
	registrants, err := o.fetch(ctx, ent, ent.RegistrantsSheet)
	if err != nil {
		return models.RefreshCounts{}, err
	}
	submissions, err := o.fetch(ctx, ent, ent.SubmissionsSheet)
	if err != nil {
		return models.RefreshCounts{}, err
	}

	ts := dates.FormatTimestamp(o.Now())
	wrapped := map[string]models.WrappedSnapshot{
		snapshotstore.DatasetRegistrants: {GlobalTimestamp: ts, Data: registrants},
		snapshotstore.DatasetSubmissions: {GlobalTimestamp: ts, Data: submissions},
	}
	for dataset, snap := range wrapped {
		if err := o.cache.WriteWrapped(ent.Code, dataset, snap); err != nil {
			return models.RefreshCounts{}, err
		}
	}

	derived := map[string]models.BareSnapshot{
		snapshotstore.DatasetRegistrations: models.BareSnapshot(submissions),
		snapshotstore.DatasetEnrollments:   filterField(registrants, recordschema.Enrolled, "Yes"),
		snapshotstore.DatasetCertificates:  filterField(registrants, recordschema.Certificate, "Yes"),
	}
	for dataset, snap := range derived {
		if err := o.cache.WriteBare(ent.Code, dataset, snap); err != nil {
			return models.RefreshCounts{}, err
		}
	}

	counts, err := o.readCounts(ent.Code)
	if err != nil {
		return models.RefreshCounts{}, err
	}
	o.log.Info("cache refreshed",
		zap.String("enterprise", ent.Code),
		zap.Int("registrants", len(registrants)),
		zap.Int("submissions", len(submissions)),
		zap.Duration("took", o.Now().Sub(start)))
	return counts, nil
}

// CurrentCounts reads the derived dataset counts from the cache.
func (o *Orchestrator) CurrentCounts(enterprise string) (models.RefreshCounts, error) {
	return o.readCounts(enterprise)
}

func (o *Orchestrator) readCounts(enterprise string) (models.RefreshCounts, error) {
	var counts models.RefreshCounts
	for dataset, dst := range map[string]*int{
		snapshotstore.DatasetRegistrations: &counts.Registrations,
		snapshotstore.DatasetEnrollments:   &counts.Enrollments,
		snapshotstore.DatasetCertificates:  &counts.Certificates,
	} {
		snap, _, err := o.cache.ReadBare(enterprise, dataset)
		if err != nil {
			return models.RefreshCounts{}, err
		}
		*dst = len(snap)
	}
	return counts, nil
}

func (o *Orchestrator) fetch(ctx context.Context, ent *models.Enterprise, sheet string) ([]models.Record, error) {
	rows, err := o.source.FetchRows(ctx, ent.SourceID, sheet, ent.StartRow)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFetch, err)
	}
	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = models.Record(cellclean.Row(row))
	}
	if ent.DemoSandbox {
		records = demodata.Apply(records)
	}
	return records, nil
}

func (o *Orchestrator) enterpriseLock(code string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[code] = lock
	}
	return lock
}

func filterField(records []models.Record, field, want string) models.BareSnapshot {
	out := models.BareSnapshot{}
	for _, r := range records {
		if r.Field(field) == want {
			out = append(out, r)
		}
	}
	return out
}
