package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aram-stats/internal/constants"
	"aram-stats/internal/db"
	"aram-stats/internal/domain"

	"github.com/goccy/go-json"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
)

var ErrDatasetNotFound = errors.New("dataset not found")

type DatasetRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewDatasetRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *DatasetRepository {
	return &DatasetRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Save stores raw under a new id. A table whose content was already stored
// is not duplicated: the existing dataset is returned with created=false.
func (r *DatasetRepository) Save(ctx context.Context, name, source string, raw *domain.RawTable) (*domain.Dataset, bool, error) {
	sum := Checksum(raw)

	existing, err := r.queries.GetDatasetByChecksum(ctx, sum)
	if err == nil {
		r.logger.Info().Str("dataset_id", existing.ID).Str("checksum", sum).Msg("dataset already stored")
		ds, err := toDomain(existing)
		return ds, false, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to look up dataset checksum: %w", err)
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	columns, err := json.Marshal(raw.Columns)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode columns: %w", err)
	}

	ds := &domain.Dataset{
		ID:        id,
		Name:      name,
		Source:    source,
		Columns:   raw.Columns,
		RowCount:  len(raw.Rows),
		Checksum:  sum,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	err = qtx.CreateDataset(ctx, db.CreateDatasetParams{
		ID:        ds.ID,
		Name:      ds.Name,
		Source:    ds.Source,
		Columns:   string(columns),
		RowCount:  int64(ds.RowCount),
		Checksum:  ds.Checksum,
		CreatedAt: ds.CreatedAt,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create dataset: %w", err)
	}

	for i := 0; i < len(raw.Rows); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(raw.Rows) {
			end = len(raw.Rows)
		}

		for n := i; n < end; n++ {
			payload, err := json.Marshal(raw.Rows[n])
			if err != nil {
				return nil, false, fmt.Errorf("failed to encode row %d: %w", n, err)
			}
			err = qtx.InsertDatasetRow(ctx, db.InsertDatasetRowParams{
				DatasetID: ds.ID,
				RowNum:    int64(n),
				Payload:   string(payload),
			})
			if err != nil {
				return nil, false, fmt.Errorf("failed to insert row %d: %w", n, err)
			}
		}

		r.logger.Debug().Str("dataset_id", ds.ID).Int("rows", end).Msg("dataset batch written")
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit dataset: %w", err)
	}

	r.logger.Info().
		Str("dataset_id", ds.ID).
		Str("name", ds.Name).
		Int("rows", ds.RowCount).
		Msg("dataset stored")
	return ds, true, nil
}

func (r *DatasetRepository) Get(ctx context.Context, id string) (*domain.Dataset, error) {
	row, err := r.queries.GetDataset(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return toDomain(row)
}

func (r *DatasetRepository) List(ctx context.Context) ([]domain.Dataset, error) {
	rows, err := r.queries.ListDatasets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	result := make([]domain.Dataset, 0, len(rows))
	for _, row := range rows {
		ds, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *ds)
	}
	return result, nil
}

// LoadRaw rebuilds the stored table in its original row order.
func (r *DatasetRepository) LoadRaw(ctx context.Context, id string) (*domain.RawTable, error) {
	ds, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payloads, err := r.queries.ListDatasetRows(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset rows: %w", err)
	}

	raw := &domain.RawTable{
		Columns: ds.Columns,
		Rows:    make([][]string, len(payloads)),
	}
	for i, p := range payloads {
		if err := json.Unmarshal([]byte(p), &raw.Rows[i]); err != nil {
			return nil, fmt.Errorf("failed to decode row %d of dataset %s: %w", i, id, err)
		}
	}
	return raw, nil
}

func (r *DatasetRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.queries.DeleteDataset(ctx, id); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	r.logger.Info().Str("dataset_id", id).Msg("dataset deleted")
	return nil
}

// Checksum fingerprints a raw table's header and cells.
func Checksum(raw *domain.RawTable) string {
	h := xxh3.New()
	for _, c := range raw.Columns {
		h.WriteString(c)
		h.WriteString("\x1f")
	}
	for _, row := range raw.Rows {
		h.WriteString("\x1e")
		for _, cell := range row {
			h.WriteString(cell)
			h.WriteString("\x1f")
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func toDomain(row db.Dataset) (*domain.Dataset, error) {
	var columns []string
	if err := json.Unmarshal([]byte(row.Columns), &columns); err != nil {
		return nil, fmt.Errorf("failed to decode columns of dataset %s: %w", row.ID, err)
	}
	return &domain.Dataset{
		ID:        row.ID,
		Name:      row.Name,
		Source:    row.Source,
		Columns:   columns,
		RowCount:  int(row.RowCount),
		Checksum:  row.Checksum,
		CreatedAt: row.CreatedAt,
	}, nil
}
