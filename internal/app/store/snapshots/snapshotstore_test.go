package snapshotstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/enrollhub/internal/app/system/dates"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "cache"), filepath.Join(dir, "tmp"), zap.NewNop())
}

func TestWriteReadWrapped(t *testing.T) {
	s := newTestStore(t)
	want := models.WrappedSnapshot{
		GlobalTimestamp: "08-20-25 at 1:00 PM",
		Data:            []models.Record{{"5", "08-01-25"}},
	}
	if err := s.WriteWrapped("acme", DatasetRegistrants, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, ok, err := s.ReadWrapped("acme", DatasetRegistrants)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if got.GlobalTimestamp != want.GlobalTimestamp {
		t.Errorf("timestamp = %q, want %q", got.GlobalTimestamp, want.GlobalTimestamp)
	}
	if len(got.Data) != 1 || got.Data[0][0] != "5" {
		t.Errorf("data = %v", got.Data)
	}
}

func TestReadAbsentIsNotError(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.ReadWrapped("acme", DatasetRegistrants)
	if err != nil {
		t.Fatalf("absent wrapped: err = %v", err)
	}
	if ok {
		t.Fatal("absent wrapped: ok = true")
	}
	_, ok, err = s.ReadBare("acme", DatasetEnrollments)
	if err != nil || ok {
		t.Fatalf("absent bare: ok=%v err=%v", ok, err)
	}
}

func TestReadCorruptFile(t *testing.T) {
	s := newTestStore(t)
	path := s.Path("acme", DatasetRegistrants)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := s.ReadWrapped("acme", DatasetRegistrants)
	if !errors.Is(err, ErrCacheCorrupt) {
		t.Fatalf("err = %v, want ErrCacheCorrupt", err)
	}
}

func TestIsStale(t *testing.T) {
	s := newTestStore(t)
	written := time.Date(2025, 8, 20, 13, 0, 0, 0, time.UTC)
	snap := models.WrappedSnapshot{GlobalTimestamp: dates.FormatTimestamp(written)}
	if err := s.WriteWrapped("acme", DatasetRegistrants, snap); err != nil {
		t.Fatal(err)
	}
	// FormatTimestamp renders in the pacific zone; reparse so the
	// staleness clock starts from the rendered value.
	base, err := dates.ParseTimestamp(snap.GlobalTimestamp)
	if err != nil {
		t.Fatal(err)
	}

	ttl := 3 * 60 * 60 // 3 hours

	// Written 1:00 PM, now 4:01 PM, ttl 3 hours: stale.
	s.Now = func() time.Time { return base.Add(3*time.Hour + time.Minute) }
	if !s.IsStale("acme", DatasetRegistrants, ttl) {
		t.Error("age past ttl: want stale")
	}

	// Exactly at the boundary the snapshot is still fresh.
	s.Now = func() time.Time { return base.Add(3 * time.Hour) }
	if s.IsStale("acme", DatasetRegistrants, ttl) {
		t.Error("age equal to ttl: want fresh")
	}

	s.Now = func() time.Time { return base.Add(time.Minute) }
	if s.IsStale("acme", DatasetRegistrants, ttl) {
		t.Error("young snapshot: want fresh")
	}
}

func TestIsStaleAbsentOrBadTimestamp(t *testing.T) {
	s := newTestStore(t)
	if !s.IsStale("acme", DatasetRegistrants, 3600) {
		t.Error("absent snapshot: want stale")
	}
	snap := models.WrappedSnapshot{GlobalTimestamp: "yesterday-ish"}
	if err := s.WriteWrapped("acme", DatasetRegistrants, snap); err != nil {
		t.Fatal(err)
	}
	if !s.IsStale("acme", DatasetRegistrants, 3600) {
		t.Error("unparseable timestamp: want stale")
	}
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteWrapped("acme", DatasetRegistrants, models.WrappedSnapshot{}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteBare("acme", DatasetEnrollments, models.BareSnapshot{}); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearAll("acme"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, ds := range AllDatasets {
		if _, err := os.Stat(s.Path("acme", ds)); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("dataset %s still present", ds)
		}
	}
	// Clearing again is a no-op, not an error.
	if err := s.ClearAll("acme"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestPurgeTempFiles(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		t.Fatal(err)
	}
	old := filepath.Join(s.tempDir, "stale.tmp")
	fresh := filepath.Join(s.tempDir, "fresh.tmp")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	s.PurgeTempFiles()

	if _, err := os.Stat(old); !errors.Is(err, os.ErrNotExist) {
		t.Error("stale temp file survived purge")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh temp file removed: %v", err)
	}
}
