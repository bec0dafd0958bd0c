package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"aram-stats/internal/config"
	"aram-stats/internal/constants"
	"aram-stats/internal/domain"
	"aram-stats/internal/engine"
	"aram-stats/internal/metrics"
	"aram-stats/internal/normalize"
	"aram-stats/internal/repository"
	"aram-stats/internal/source"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoDataset    = errors.New("no dataset loaded")
	ErrUnknownSlot  = errors.New("unknown item slot")
	ErrInvalidInput = errors.New("invalid input")
)

// StatsService owns the active participant table and answers statistics
// queries against it through the memoizing engine.
type StatsService struct {
	cfg        *config.Config
	normalizer *normalize.Normalizer
	engine     *engine.Engine
	datasets   *repository.DatasetRepository
	fetcher    *source.HTTPFetcher
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	mu        sync.RWMutex
	table     *domain.Table
	datasetID string
	origin    string
}

func NewStatsService(cfg *config.Config, normalizer *normalize.Normalizer, eng *engine.Engine, datasets *repository.DatasetRepository, fetcher *source.HTTPFetcher, m *metrics.Metrics, logger zerolog.Logger) *StatsService {
	return &StatsService{
		cfg:        cfg,
		normalizer: normalizer,
		engine:     eng,
		datasets:   datasets,
		fetcher:    fetcher,
		metrics:    m,
		logger:     logger,
	}
}

// Dashboard bundles the views rendered on the landing page.
type Dashboard struct {
	Overview   domain.Overview
	Champions  []domain.StatRow
	Boots      []domain.StatRow
	CoreCombos []domain.StatRow
	Runes      []domain.StatRow
	Spells     []domain.StatRow
}

// RowsPage is a window over the active table.
type RowsPage struct {
	Total int
	Rows  []domain.Participant
}

func (s *StatsService) current() (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrNoDataset
	}
	return s.table, nil
}

// Active reports the loaded table's dataset id (empty for path, URL and
// Postgres loads) and origin.
func (s *StatsService) Active() (datasetID, origin string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.datasetID, s.origin, s.table != nil
}

func (s *StatsService) Champions(ctx context.Context) ([]domain.StatRow, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.Champions(t), nil
}

func (s *StatsService) ChampionNames(ctx context.Context) ([]string, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	return t.Champions(), nil
}

// Items melts every item slot. An empty allow list keeps all items.
func (s *StatsService) Items(ctx context.Context, allow []string) ([]domain.StatRow, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.Items(t, allow), nil
}

// Boots is the items view restricted to the configured boots list.
func (s *StatsService) Boots(ctx context.Context) ([]domain.StatRow, error) {
	return s.Items(ctx, s.cfg.Boots)
}

// CoreCombos groups rows by the unordered combination of the named item
// slots, or the configured default slots when none are given.
func (s *StatsService) CoreCombos(ctx context.Context, slotNames []string) ([]domain.StatRow, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	slots, err := resolveSlots(t, slotNames, s.cfg.CoreSlots)
	if err != nil {
		return nil, err
	}
	return s.engine.CoreCombos(t, slots), nil
}

func (s *StatsService) Runes(ctx context.Context) ([]domain.StatRow, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.Runes(t), nil
}

func (s *StatsService) Spells(ctx context.Context) ([]domain.StatRow, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.Spells(t), nil
}

// Synergy ranks the teammates of champion by win rate. topN < 1 selects
// the default.
func (s *StatsService) Synergy(ctx context.Context, champion string, topN int) ([]domain.StatRow, error) {
	champion = normalize.Label(champion)
	if champion == "" {
		return nil, fmt.Errorf("%w: champion is required", ErrInvalidInput)
	}
	if topN > constants.SynergyMaxTopN {
		return nil, fmt.Errorf("%w: top_n must be at most %d", ErrInvalidInput, constants.SynergyMaxTopN)
	}
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	return s.engine.Synergy(t, champion, topN), nil
}

func (s *StatsService) ChampionDetail(ctx context.Context, champion string) (domain.ChampionDetail, error) {
	champion = normalize.Label(champion)
	if champion == "" {
		return domain.ChampionDetail{}, fmt.Errorf("%w: champion is required", ErrInvalidInput)
	}
	t, err := s.current()
	if err != nil {
		return domain.ChampionDetail{}, err
	}
	return s.engine.ChampionDetail(t, champion), nil
}

func (s *StatsService) Overview(ctx context.Context) (domain.Overview, error) {
	s.mu.RLock()
	t, id := s.table, s.datasetID
	s.mu.RUnlock()
	if t == nil {
		return domain.Overview{}, ErrNoDataset
	}

	ov := s.engine.Overview(t)
	ov.DatasetID = id
	return ov, nil
}

// Dashboard computes the landing views concurrently against one snapshot.
func (s *StatsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.mu.RLock()
	t, id := s.table, s.datasetID
	s.mu.RUnlock()
	if t == nil {
		return nil, ErrNoDataset
	}

	slots, err := resolveSlots(t, nil, s.cfg.CoreSlots)
	if err != nil {
		s.logger.Warn().Err(err).Msg("configured core slots not in table, combos left empty")
		slots = nil
	}

	d := &Dashboard{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.Overview = s.engine.Overview(t)
		d.Overview.DatasetID = id
		return gCtx.Err()
	})
	g.Go(func() error {
		d.Champions = s.engine.Champions(t)
		return gCtx.Err()
	})
	g.Go(func() error {
		d.Boots = s.engine.Items(t, s.cfg.Boots)
		return gCtx.Err()
	})
	g.Go(func() error {
		d.CoreCombos = s.engine.CoreCombos(t, slots)
		return gCtx.Err()
	})
	g.Go(func() error {
		d.Runes = s.engine.Runes(t)
		return gCtx.Err()
	})
	g.Go(func() error {
		d.Spells = s.engine.Spells(t)
		return gCtx.Err()
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to build dashboard")
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return d, nil
}

// Rows pages through the active table in load order.
func (s *StatsService) Rows(ctx context.Context, offset, limit int) (*RowsPage, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = constants.RawRowsDefaultLimit
	}
	if limit > constants.RawRowsMaxLimit {
		limit = constants.RawRowsMaxLimit
	}

	t, err := s.current()
	if err != nil {
		return nil, err
	}

	page := &RowsPage{Total: t.Len(), Rows: []domain.Participant{}}
	for i := offset; i < t.Len() && i < offset+limit; i++ {
		page.Rows = append(page.Rows, *t.Row(i))
	}
	return page, nil
}

// resolveSlots maps slot designators (column names such as "item2") to
// positions in the table's item slots.
func resolveSlots(t *domain.Table, names, fallback []string) ([]int, error) {
	if len(names) == 0 {
		names = fallback
	}

	slots := make([]int, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		idx, ok := t.SlotIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownSlot, name, strings.Join(t.SlotNames(), ", "))
		}
		slots = append(slots, idx)
	}
	return slots, nil
}
