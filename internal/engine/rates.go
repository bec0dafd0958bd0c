package engine

import (
	"sort"
	"strings"

	"aram-stats/internal/domain"

	"github.com/shopspring/decimal"
)

// keySep joins multi-part group keys inside the accumulator map. It never
// appears in the emitted rows.
const keySep = "\x00"

type counter struct {
	key   []string
	total int
	wins  int
}

// grouper accumulates (key, outcome) observations. Empty key parts are the
// "nothing picked" sentinel and are dropped before grouping.
type grouper struct {
	groups map[string]*counter
}

func newGrouper() *grouper {
	return &grouper{groups: make(map[string]*counter)}
}

func (g *grouper) add(win bool, key ...string) {
	for _, k := range key {
		if k == "" {
			return
		}
	}
	id := strings.Join(key, keySep)
	c, ok := g.groups[id]
	if !ok {
		c = &counter{key: append([]string(nil), key...)}
		g.groups[id] = c
	}
	c.total++
	if win {
		c.wins++
	}
}

// rows emits one StatRow per group ordered by win rate descending. Groups
// are enumerated in ascending key order first so ties keep that order.
// matches > 0 adds a pick rate against that many distinct matches.
func (g *grouper) rows(matches int) []domain.StatRow {
	counters := make([]*counter, 0, len(g.groups))
	for _, c := range g.groups {
		counters = append(counters, c)
	}
	sort.Slice(counters, func(i, j int) bool { return lessKey(counters[i].key, counters[j].key) })

	out := make([]domain.StatRow, len(counters))
	for i, c := range counters {
		out[i] = domain.StatRow{
			Key:     c.key,
			Total:   c.total,
			Wins:    c.wins,
			WinRate: Rate(c.wins, c.total),
		}
		if matches > 0 {
			pr := Rate(c.total, matches)
			out[i].PickRate = &pr
		}
	}
	sortByWinRate(out)
	return out
}

func lessKey(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func sortByWinRate(rows []domain.StatRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].WinRate > rows[j].WinRate })
}

// Rate returns num/den*100 rounded half to even at two decimals, or 0 when
// den is 0. The float quotient is rounded, so 1/800 gives 0.12.
func Rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	r, _ := decimal.NewFromFloat(float64(num) / float64(den) * 100).
		RoundBank(2).
		Float64()
	return r
}
