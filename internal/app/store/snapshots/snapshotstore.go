// Package snapshotstore persists per-enterprise dataset snapshots as
// JSON files on disk. Each enterprise owns a directory holding one
// file per dataset; writes are atomic (temp file then rename) so a
// reader never observes a partial snapshot.
package snapshotstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalemusser/enrollhub/internal/app/system/dates"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// Dataset names. Registrants and submissions carry a timestamp
// envelope; the derived datasets are bare record lists.
const (
	DatasetRegistrants   = "registrants"
	DatasetSubmissions   = "submissions"
	DatasetRegistrations = "registrations"
	DatasetEnrollments   = "enrollments"
	DatasetCertificates  = "certificates"
)

// AllDatasets lists every dataset a refresh writes.
var AllDatasets = []string{
	DatasetRegistrants,
	DatasetSubmissions,
	DatasetRegistrations,
	DatasetEnrollments,
	DatasetCertificates,
}

// ErrCacheCorrupt reports a snapshot file that exists but cannot be
// decoded. Callers treat it as a signal to re-fetch, not a fatal error.
var ErrCacheCorrupt = errors.New("snapshot cache corrupt")

// Temp files older than this are presumed orphaned by a crashed write.
const tempFileMaxAge = 24 * time.Hour

// Store reads and writes snapshot files under a root directory.
type Store struct {
	root    string
	tempDir string
	log     *zap.Logger

	// Now is replaceable in tests.
	Now func() time.Time
}

// New returns a store rooted at dir. tempDir holds scratch files
// shared across enterprises and is purged of stale entries on
// ClearAll.
func New(dir, tempDir string, logger *zap.Logger) *Store {
	return &Store{root: dir, tempDir: tempDir, log: logger, Now: time.Now}
}

// Path returns the snapshot file path for an enterprise dataset.
func (s *Store) Path(enterprise, dataset string) string {
	return filepath.Join(s.root, enterprise, dataset+".json")
}

// ReadWrapped loads a timestamped snapshot. ok is false when the file
// is absent; a file that exists but will not decode returns an error
// wrapping ErrCacheCorrupt.
func (s *Store) ReadWrapped(enterprise, dataset string) (models.WrappedSnapshot, bool, error) {
	var snap models.WrappedSnapshot
	raw, err := os.ReadFile(s.Path(enterprise, dataset))
	if errors.Is(err, os.ErrNotExist) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.Warn("corrupt snapshot",
			zap.String("enterprise", enterprise),
			zap.String("dataset", dataset),
			zap.Error(err))
		return snap, false, fmt.Errorf("%w: %s/%s: %v", ErrCacheCorrupt, enterprise, dataset, err)
	}
	return snap, true, nil
}

// ReadBare loads a bare snapshot with the same absent/corrupt
// semantics as ReadWrapped.
func (s *Store) ReadBare(enterprise, dataset string) (models.BareSnapshot, bool, error) {
	var snap models.BareSnapshot
	raw, err := os.ReadFile(s.Path(enterprise, dataset))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.Warn("corrupt snapshot",
			zap.String("enterprise", enterprise),
			zap.String("dataset", dataset),
			zap.Error(err))
		return nil, false, fmt.Errorf("%w: %s/%s: %v", ErrCacheCorrupt, enterprise, dataset, err)
	}
	return snap, true, nil
}

// WriteWrapped stores a timestamped snapshot atomically.
func (s *Store) WriteWrapped(enterprise, dataset string, snap models.WrappedSnapshot) error {
	return s.write(enterprise, dataset, snap)
}

// WriteBare stores a bare snapshot atomically.
func (s *Store) WriteBare(enterprise, dataset string, snap models.BareSnapshot) error {
	return s.write(enterprise, dataset, snap)
}

func (s *Store) write(enterprise, dataset string, v any) error {
	path := s.Path(enterprise, dataset)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s/%s: %w", enterprise, dataset, err)
	}
	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s/%s: %w", enterprise, dataset, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit snapshot %s/%s: %w", enterprise, dataset, err)
	}
	return nil
}

// IsStale reports whether a dataset needs refreshing: the snapshot is
// absent, its timestamp will not parse, or its age strictly exceeds
// the TTL. A snapshot exactly at the TTL boundary is still fresh.
func (s *Store) IsStale(enterprise, dataset string, ttlSeconds int) bool {
	snap, ok, err := s.ReadWrapped(enterprise, dataset)
	if err != nil || !ok {
		return true
	}
	written, err := dates.ParseTimestamp(snap.GlobalTimestamp)
	if err != nil {
		return true
	}
	age := s.Now().Sub(written)
	return age > time.Duration(ttlSeconds)*time.Second
}

// ClearAll removes every dataset for an enterprise, then sweeps stale
// temp files. Missing files are not an error.
func (s *Store) ClearAll(enterprise string) error {
	for _, dataset := range AllDatasets {
		if err := os.Remove(s.Path(enterprise, dataset)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear snapshot %s/%s: %w", enterprise, dataset, err)
		}
	}
	s.PurgeTempFiles()
	return nil
}

// PurgeTempFiles removes regular files in the shared temp directory
// older than tempFileMaxAge. Failures are logged, not returned; the
// sweep is best effort.
func (s *Store) PurgeTempFiles() {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("read temp dir", zap.String("dir", s.tempDir), zap.Error(err))
		}
		return
	}
	cutoff := s.Now().Add(-tempFileMaxAge)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.tempDir, e.Name())
			if err := os.Remove(path); err != nil {
				s.log.Warn("purge temp file", zap.String("path", path), zap.Error(err))
			}
		}
	}
}
