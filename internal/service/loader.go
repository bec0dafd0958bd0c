package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"aram-stats/internal/constants"
	"aram-stats/internal/domain"
	"aram-stats/internal/source"
)

var (
	ErrNoPostgres     = errors.New("postgres source not configured")
	ErrLocationDenied = errors.New("location not permitted")
)

const (
	SourceFile     = "file"
	SourceURL      = "url"
	SourcePostgres = "postgres"
	SourceDataset  = "dataset"
	SourceUpload   = "upload"
)

// LoadStartup loads the configured startup source: Postgres when
// DATABASE_URL is set, DATA_PATH otherwise.
func (s *StatsService) LoadStartup(ctx context.Context) (domain.Overview, error) {
	if s.cfg.DatabaseURL != "" {
		return s.LoadPostgres(ctx)
	}
	return s.LoadLocation(ctx, s.cfg.DataPath)
}

// LoadLocation reads a CSV file path or http(s) URL and makes it the active
// table.
func (s *StatsService) LoadLocation(ctx context.Context, location string) (domain.Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LoadTimeout)
	defer cancel()

	raw, kind, err := s.readLocation(ctx, location)
	if err != nil {
		s.metrics.ObserveLoad(kind, 0, err)
		return domain.Overview{}, err
	}
	return s.activate(raw, kind, location, "")
}

// LoadPostgres runs PG_QUERY against DATABASE_URL and makes the result the
// active table.
func (s *StatsService) LoadPostgres(ctx context.Context) (domain.Overview, error) {
	if s.cfg.DatabaseURL == "" {
		return domain.Overview{}, ErrNoPostgres
	}

	ctx, cancel := context.WithTimeout(ctx, constants.LoadTimeout)
	defer cancel()

	pg, err := source.NewPostgres(ctx, s.cfg.DatabaseURL, s.logger)
	if err != nil {
		s.metrics.ObserveLoad(SourcePostgres, 0, err)
		return domain.Overview{}, err
	}
	defer pg.Close()

	raw, err := pg.Query(ctx, s.cfg.PGQuery)
	if err != nil {
		s.metrics.ObserveLoad(SourcePostgres, 0, err)
		return domain.Overview{}, err
	}
	return s.activate(raw, SourcePostgres, "postgres", "")
}

// LoadDataset makes a stored dataset the active table.
func (s *StatsService) LoadDataset(ctx context.Context, id string) (domain.Overview, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LoadTimeout)
	defer cancel()

	raw, err := s.datasets.LoadRaw(ctx, id)
	if err != nil {
		s.metrics.ObserveLoad(SourceDataset, 0, err)
		return domain.Overview{}, err
	}
	return s.activate(raw, SourceDataset, "dataset:"+id, id)
}

// Import stores the table at location without activating it. The table
// must pass normalization first.
func (s *StatsService) Import(ctx context.Context, name, location string) (*domain.Dataset, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LoadTimeout)
	defer cancel()

	raw, _, err := s.readLocation(ctx, location)
	if err != nil {
		return nil, false, err
	}
	if name == "" {
		name = location
	}
	return s.save(ctx, name, location, raw)
}

// ImportCSV stores an uploaded CSV stream.
func (s *StatsService) ImportCSV(ctx context.Context, name string, r io.Reader) (*domain.Dataset, bool, error) {
	raw, err := source.ReadCSV(r)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if name == "" {
		name = SourceUpload
	}
	return s.save(ctx, name, SourceUpload, raw)
}

func (s *StatsService) Datasets(ctx context.Context) ([]domain.Dataset, error) {
	return s.datasets.List(ctx)
}

// DeleteDataset removes a stored dataset. The active table, if it came from
// that dataset, stays loaded.
func (s *StatsService) DeleteDataset(ctx context.Context, id string) error {
	return s.datasets.Delete(ctx, id)
}

// ClientLocation resolves a location supplied by a remote caller. Paths must
// be local to DATA_DIR and URLs must start with a SOURCE_URL_PREFIXES entry;
// with neither configured every location is refused.
func (s *StatsService) ClientLocation(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	if source.IsURL(location) {
		for _, prefix := range s.cfg.SourceURLs {
			if strings.HasPrefix(location, prefix) {
				return location, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrLocationDenied, location)
	}

	if s.cfg.DataDir == "" || !filepath.IsLocal(location) {
		return "", fmt.Errorf("%w: %s", ErrLocationDenied, location)
	}
	return filepath.Join(s.cfg.DataDir, location), nil
}

func (s *StatsService) save(ctx context.Context, name, origin string, raw *domain.RawTable) (*domain.Dataset, bool, error) {
	if _, err := s.normalizer.Normalize(raw); err != nil {
		return nil, false, fmt.Errorf("failed to validate %s: %w", origin, err)
	}
	return s.datasets.Save(ctx, name, origin, raw)
}

func (s *StatsService) readLocation(ctx context.Context, location string) (*domain.RawTable, string, error) {
	if location == "" {
		return nil, SourceFile, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if source.IsURL(location) {
		raw, err := s.fetcher.Fetch(ctx, location)
		return raw, SourceURL, err
	}
	raw, err := source.ReadFile(location)
	return raw, SourceFile, err
}

// activate normalizes raw and swaps it in as the active table.
func (s *StatsService) activate(raw *domain.RawTable, kind, origin, datasetID string) (domain.Overview, error) {
	table, err := s.normalizer.Normalize(raw)
	if err != nil {
		s.metrics.ObserveLoad(kind, 0, err)
		s.logger.Error().Err(err).Str("origin", origin).Msg("failed to normalize table")
		return domain.Overview{}, fmt.Errorf("failed to normalize %s: %w", origin, err)
	}

	s.mu.Lock()
	s.table = table
	s.datasetID = datasetID
	s.origin = origin
	s.mu.Unlock()

	s.engine.Invalidate()
	s.metrics.ObserveLoad(kind, table.Len(), nil)

	s.logger.Info().
		Str("source", kind).
		Str("origin", origin).
		Str("dataset_id", datasetID).
		Int("rows", table.Len()).
		Int("matches", table.DistinctMatches()).
		Msg("table activated")

	ov := s.engine.Overview(table)
	ov.DatasetID = datasetID
	return ov, nil
}
