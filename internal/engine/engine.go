package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"aram-stats/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Recorder receives per-query cache and timing events.
type Recorder interface {
	CacheHit(query string)
	CacheMiss(query string)
	ObserveQuery(query string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CacheHit(string) {}
func (nopRecorder) CacheMiss(string) {}
func (nopRecorder) ObserveQuery(string, time.Duration) {}

// Engine wraps the pure query functions with a memo cache. Results returned
// from the cache are shared between callers and must be treated as
// read-only.
type Engine struct {
	cache  *Cache
	group  singleflight.Group
	rec    Recorder
	logger zerolog.Logger
}

func New(cache *Cache, rec Recorder, logger zerolog.Logger) *Engine {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Engine{cache: cache, rec: rec, logger: logger}
}

// Invalidate drops all memoized results; call it whenever a new table is
// loaded.
func (e *Engine) Invalidate() {
	n := e.cache.Len()
	e.cache.Invalidate()
	e.logger.Debug().Int("entries", n).Msg("query cache invalidated")
}

func (e *Engine) Champions(t *domain.Table) []domain.StatRow {
	return memo(e, "champions", t, "", func() []domain.StatRow { return ChampionStats(t) })
}

func (e *Engine) Items(t *domain.Table, allow []string) []domain.StatRow {
	return memo(e, "items", t, setParam(allow), func() []domain.StatRow { return ItemStats(t, allow) })
}

func (e *Engine) CoreCombos(t *domain.Table, slots []int) []domain.StatRow {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = strconv.Itoa(s)
	}
	return memo(e, "core_combos", t, strings.Join(parts, ","), func() []domain.StatRow { return CoreComboStats(t, slots) })
}

func (e *Engine) Runes(t *domain.Table) []domain.StatRow {
	return memo(e, "runes", t, "", func() []domain.StatRow { return RuneStats(t) })
}

func (e *Engine) Spells(t *domain.Table) []domain.StatRow {
	return memo(e, "spells", t, "", func() []domain.StatRow { return SpellStats(t) })
}

func (e *Engine) Synergy(t *domain.Table, focal string, topN int) []domain.StatRow {
	if topN < 1 {
		topN = DefaultTopN
	}
	param := strconv.Quote(focal) + ":" + strconv.Itoa(topN)
	return memo(e, "synergy", t, param, func() []domain.StatRow { return TeammateSynergy(t, focal, topN) })
}

func (e *Engine) ChampionDetail(t *domain.Table, champion string) domain.ChampionDetail {
	return memo(e, "champion_detail", t, strconv.Quote(champion), func() domain.ChampionDetail { return ChampionDetail(t, champion) })
}

func (e *Engine) Overview(t *domain.Table) domain.Overview {
	return memo(e, "overview", t, "", func() domain.Overview { return Overview(t) })
}

func memo[T any](e *Engine, query string, t *domain.Table, param string, compute func() T) T {
	key := fmt.Sprintf("%s|%016x|%s", query, t.Version(), param)

	if v, ok := e.cache.Get(key); ok {
		e.rec.CacheHit(query)
		return v.(T)
	}
	e.rec.CacheMiss(query)

	v, _, _ := e.group.Do(key, func() (any, error) {
		start := time.Now()
		out := compute()
		d := time.Since(start)
		e.rec.ObserveQuery(query, d)
		e.cache.Set(key, out)
		e.logger.Debug().Str("query", query).Str("param", param).Dur("duration", d).Msg("query computed")
		return out, nil
	})
	return v.(T)
}

// setParam renders an unordered string set as a stable cache parameter.
func setParam(values []string) string {
	if len(values) == 0 {
		return ""
	}
	s := append([]string(nil), values...)
	sort.Strings(s)
	for i := range s {
		s[i] = strconv.Quote(s[i])
	}
	return strings.Join(s, ",")
}
