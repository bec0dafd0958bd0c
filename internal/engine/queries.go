// Package engine computes win-rate and pick-rate tables from a normalized
// participant table. The package-level query functions are pure; Engine adds
// memoization and metrics on top of them.
package engine

import (
	"math"
	"sort"
	"strings"

	"aram-stats/internal/domain"
)

const (
	DefaultTopN     = 3
	ComboSeparator  = "|"
	OverviewTopSize = 20
)

// DefaultCoreSlots are the equipment columns that seed core item combos.
var DefaultCoreSlots = []string{"item0", "item1", "item2"}

// ChampionStats is the champion leaderboard.
func ChampionStats(t *domain.Table) []domain.StatRow {
	g := newGrouper()
	for i := 0; i < t.Len(); i++ {
		p := t.Row(i)
		g.add(p.Win, p.Champion)
	}
	return g.rows(t.DistinctMatches())
}

// ItemStats melts every equipment slot into one (match, outcome, item)
// observation per non-empty slot. A participant holding the same item in two
// slots counts twice. A non-empty allow list keeps only the named items.
func ItemStats(t *domain.Table, allow []string) []domain.StatRow {
	var keep map[string]struct{}
	if len(allow) > 0 {
		keep = make(map[string]struct{}, len(allow))
		for _, a := range allow {
			keep[a] = struct{}{}
		}
	}

	g := newGrouper()
	for i := 0; i < t.Len(); i++ {
		p := t.Row(i)
		for _, item := range p.Items {
			if item == "" {
				continue
			}
			if keep != nil {
				if _, ok := keep[item]; !ok {
					continue
				}
			}
			g.add(p.Win, item)
		}
	}
	return g.rows(t.DistinctMatches())
}

// RuneStats groups by the ordered (primary, secondary) pair; (A,B) and (B,A)
// are different groups.
func RuneStats(t *domain.Table) []domain.StatRow {
	g := newGrouper()
	for i := 0; i < t.Len(); i++ {
		p := t.Row(i)
		g.add(p.Win, p.RunePrimary, p.RuneSecondary)
	}
	return g.rows(0)
}

// SpellStats groups by the ordered pair of summoner spells.
func SpellStats(t *domain.Table) []domain.StatRow {
	g := newGrouper()
	for i := 0; i < t.Len(); i++ {
		p := t.Row(i)
		g.add(p.Win, p.Spells[0], p.Spells[1])
	}
	return g.rows(0)
}

// ComboKey builds the order-independent identity of a set of slot values:
// non-empty values sorted and joined with "|". It returns "" when every
// value is empty.
func ComboKey(values []string) string {
	items := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	if len(items) == 0 {
		return ""
	}
	sort.Strings(items)
	return strings.Join(items, ComboSeparator)
}

// CoreComboStats groups rows by the combo key of the given slot indices.
// Rows with no item in any of those slots are skipped; partially filled
// slots still make a (shorter) combo. Out of range indices are ignored.
func CoreComboStats(t *domain.Table, slots []int) []domain.StatRow {
	g := newGrouper()
	values := make([]string, 0, len(slots))
	for i := 0; i < t.Len(); i++ {
		p := t.Row(i)
		values = values[:0]
		for _, s := range slots {
			if s >= 0 && s < len(p.Items) {
				values = append(values, p.Items[s])
			}
		}
		g.add(p.Win, ComboKey(values))
	}
	return g.rows(t.DistinctMatches())
}

type teamKey struct {
	match string
	team  string
}

// TeammateSynergy reports, for every champion that shared a team with focal
// in some match, how often the focal champion won alongside it. Partners
// with the same champion label as focal are never reported. Wins are read
// from the focal side. The result is cut to the best topN rows.
func TeammateSynergy(t *domain.Table, focal string, topN int) []domain.StatRow {
	if topN < 1 {
		topN = DefaultTopN
	}

	teams := make(map[teamKey][]int)
	var focalRows []int
	for i := 0; i < t.Len(); i++ {
		p := t.Row(i)
		k := teamKey{p.MatchID, p.TeamID}
		teams[k] = append(teams[k], i)
		if p.Champion == focal {
			focalRows = append(focalRows, i)
		}
	}
	if len(focalRows) == 0 {
		return []domain.StatRow{}
	}

	g := newGrouper()
	for _, i := range focalRows {
		self := t.Row(i)
		for _, j := range teams[teamKey{self.MatchID, self.TeamID}] {
			mate := t.Row(j)
			if mate.Champion == self.Champion {
				continue
			}
			g.add(self.Win, mate.Champion)
		}
	}

	rows := g.rows(0)
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

// ChampionDetail summarizes one champion and its item stats. Item pick rates
// are computed against the champion's own distinct matches.
func ChampionDetail(t *domain.Table, champion string) domain.ChampionDetail {
	sub := t.Filter(func(p *domain.Participant) bool { return p.Champion == champion })

	d := domain.ChampionDetail{
		Champion:        champion,
		Games:           sub.Len(),
		AvgKDA:          math.NaN(),
		AvgDamagePerMin: math.NaN(),
	}

	var kda, dpm float64
	var dpmRows int
	for i := 0; i < sub.Len(); i++ {
		p := sub.Row(i)
		if p.Win {
			d.Wins++
		}
		kda += p.KDA()
		if v := p.DamagePerMinute(); !math.IsNaN(v) {
			dpm += v
			dpmRows++
		}
	}
	if d.Games > 0 {
		d.WinRate = Rate(d.Wins, d.Games)
		d.AvgKDA = kda / float64(d.Games)
	}
	if dpmRows > 0 {
		d.AvgDamagePerMin = dpm / float64(dpmRows)
	}
	d.Items = ItemStats(sub, nil)
	return d
}

// Overview summarizes the dataset and its top champions.
func Overview(t *domain.Table) domain.Overview {
	top := ChampionStats(t)
	if len(top) > OverviewTopSize {
		top = top[:OverviewTopSize]
	}
	return domain.Overview{
		Matches:      t.DistinctMatches(),
		Players:      t.DistinctPlayers(),
		Rows:         t.Len(),
		TopChampions: top,
		TableVersion: t.Version(),
	}
}
