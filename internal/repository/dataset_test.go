package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"aram-stats/internal/database"
	"aram-stats/internal/db"
	"aram-stats/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func newTestRepo(t *testing.T) *DatasetRepository {
	t.Helper()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "aram.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return NewDatasetRepository(sqlDB, db.New(sqlDB), zerolog.Nop())
}

func sampleRaw(rows int) *domain.RawTable {
	raw := &domain.RawTable{Columns: []string{"matchId", "teamId", "champion", "win"}}
	for i := 0; i < rows; i++ {
		raw.Rows = append(raw.Rows, []string{fmt.Sprintf("M%d", i/10), "100", "Ahri", "True"})
	}
	raw.Rows = append(raw.Rows, []string{"short"})
	return raw
}

func TestDatasetRepository_SaveAndLoad(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// spans several insert batches
	raw := sampleRaw(1203)

	ds, created, err := repo.Save(ctx, "patch-14", "upload.csv", raw)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !created {
		t.Errorf("expected a new dataset")
	}
	if ds.ID == "" || ds.RowCount != len(raw.Rows) {
		t.Errorf("unexpected dataset: %+v", ds)
	}

	got, err := repo.LoadRaw(ctx, ds.ID)
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}
	if diff := cmp.Diff(raw, got); diff != "" {
		t.Errorf("raw table mismatch (-want +got):\n%s", diff)
	}

	stored, err := repo.Get(ctx, ds.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Name != "patch-14" || stored.Checksum != ds.Checksum {
		t.Errorf("stored dataset: %+v", stored)
	}
	if diff := cmp.Diff(raw.Columns, stored.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestDatasetRepository_SaveDeduplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, _, err := repo.Save(ctx, "a", "a.csv", sampleRaw(3))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, created, err := repo.Save(ctx, "b", "b.csv", sampleRaw(3))
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if created || second.ID != first.ID {
		t.Errorf("expected existing dataset %s, got %s (created=%v)", first.ID, second.ID, created)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("datasets: got %d, want 1", len(list))
	}
}

func TestDatasetRepository_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Get: got %v, want ErrDatasetNotFound", err)
	}
	if _, err := repo.LoadRaw(ctx, "missing"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("LoadRaw: got %v, want ErrDatasetNotFound", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("Delete: got %v, want ErrDatasetNotFound", err)
	}
}

func TestDatasetRepository_DeleteCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ds, _, err := repo.Save(ctx, "a", "a.csv", sampleRaw(5))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Delete(ctx, ds.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var n int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM dataset_rows WHERE dataset_id = ?`, ds.ID).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 0 {
		t.Errorf("orphan rows: got %d", n)
	}
}

func TestChecksum(t *testing.T) {
	a := &domain.RawTable{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}
	b := &domain.RawTable{Columns: []string{"a", "b"}, Rows: [][]string{{"12", ""}}}
	if Checksum(a) == Checksum(b) {
		t.Errorf("cell boundaries must affect checksum")
	}
	if Checksum(a) != Checksum(&domain.RawTable{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}) {
		t.Errorf("checksum not deterministic")
	}
}
