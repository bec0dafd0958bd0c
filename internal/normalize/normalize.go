// Package normalize turns loosely shaped participant tables into the strict
// domain.Table every aggregation runs against. Column presence is resolved
// here once; nothing downstream checks for optional columns again.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"aram-stats/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// ErrMissingColumn is returned when a required identity column is absent.
var ErrMissingColumn = errors.New("required column missing")

var (
	matchIDAliases  = []string{"matchId", "match_id"}
	championAliases = []string{"champion", "championName", "champion_name"}
	teamIDAliases   = []string{"teamId", "team_id"}
	playerAliases   = []string{"summonerName", "player_id", "puuid"}
	outcomeAliases  = []string{"win", "outcome"}
	spell1Aliases   = []string{"spell1", "spell_1", "summoner1"}
	spell2Aliases   = []string{"spell2", "spell_2", "summoner2"}
	runeCoreAliases = []string{"rune_core", "rune_primary"}
	runeSubAliases  = []string{"rune_sub", "rune_secondary"}
	durationAliases = []string{"game_duration", "gameDuration", "duration"}
)

var itemColumnRe = regexp.MustCompile(`(?i)^item_?(\d+)$`)

// pandas-style missing-value tokens that appear in exported CSVs.
var nullTokens = map[string]struct{}{
	"nan": {}, "null": {}, "none": {}, "<na>": {}, "n/a": {}, "#n/a": {}, "na": {},
}

var truthy = map[string]struct{}{
	"1": {}, "true": {}, "t": {}, "yes": {},
}

type Normalizer struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

type slotColumn struct {
	name  string
	index int
	order int
}

// columns is the resolved schema of one raw table: an index per canonical
// field, -1 when the field is absent.
type columns struct {
	matchID        int
	champion       int
	teamID         int
	player         int
	gameName       int
	tagLine        int
	outcome        int
	spell1         int
	spell2         int
	runeCore       int
	runeSub        int
	runeShards     int
	teamChamps     int
	enemyChamps    int
	kills          int
	deaths         int
	assists        int
	gold           int
	damageTotal    int
	damageMagic    int
	damagePhysical int
	damageTrue     int
	duration       int
	slots          []slotColumn
}

// Normalize converts raw into a domain.Table. raw is not modified.
func (n *Normalizer) Normalize(raw *domain.RawTable) (*domain.Table, error) {
	cols, err := resolve(raw.Columns)
	if err != nil {
		return nil, err
	}

	slotNames := make([]string, len(cols.slots))
	for i, s := range cols.slots {
		slotNames[i] = s.name
	}

	rows := make([]domain.Participant, len(raw.Rows))
	for i := range raw.Rows {
		cell := func(j int) string {
			if j < 0 {
				return ""
			}
			return raw.Cell(i, j)
		}

		p := &rows[i]
		p.MatchID = Label(cell(cols.matchID))
		p.Champion = Label(cell(cols.champion))
		p.TeamID = Label(cell(cols.teamID))
		p.PlayerID = Label(cell(cols.player))
		if p.PlayerID == "" && cols.gameName >= 0 {
			p.PlayerID = riotID(Label(cell(cols.gameName)), Label(cell(cols.tagLine)))
		}
		p.Win = Outcome(cell(cols.outcome))

		p.Items = make([]string, len(cols.slots))
		for k, s := range cols.slots {
			p.Items[k] = Label(cell(s.index))
		}
		p.Spells = [2]string{Label(cell(cols.spell1)), Label(cell(cols.spell2))}
		p.RunePrimary = Label(cell(cols.runeCore))
		p.RuneSecondary = Label(cell(cols.runeSub))
		p.RuneShards = Label(cell(cols.runeShards))

		p.Teammates = ParseList(cell(cols.teamChamps))
		p.Enemies = ParseList(cell(cols.enemyChamps))

		p.Kills = number(cell(cols.kills), 0)
		p.Deaths = number(cell(cols.deaths), 0)
		p.Assists = number(cell(cols.assists), 0)
		p.Gold = number(cell(cols.gold), 0)
		p.DamageTotal = number(cell(cols.damageTotal), 0)
		p.DamageMagic = number(cell(cols.damageMagic), 0)
		p.DamagePhysical = number(cell(cols.damagePhysical), 0)
		p.DamageTrue = number(cell(cols.damageTrue), 0)
		p.Duration = number(cell(cols.duration), math.NaN())
	}

	table := domain.NewTable(rows, slotNames)

	n.logger.Info().
		Int("rows", table.Len()).
		Int("matches", table.DistinctMatches()).
		Int("item_slots", table.SlotCount()).
		Bool("has_team", cols.teamID >= 0).
		Bool("has_outcome", cols.outcome >= 0).
		Msg("table normalized")

	return table, nil
}

func resolve(header []string) (*columns, error) {
	lookup := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := lookup[key]; !dup {
			lookup[key] = i
		}
	}
	find := func(aliases ...string) int {
		for _, a := range aliases {
			if i, ok := lookup[strings.ToLower(a)]; ok {
				return i
			}
		}
		return -1
	}

	c := &columns{
		matchID:        find(matchIDAliases...),
		champion:       find(championAliases...),
		teamID:         find(teamIDAliases...),
		player:         find(playerAliases...),
		gameName:       find("riotIdGameName"),
		tagLine:        find("riotIdTagline"),
		outcome:        find(outcomeAliases...),
		spell1:         find(spell1Aliases...),
		spell2:         find(spell2Aliases...),
		runeCore:       find(runeCoreAliases...),
		runeSub:        find(runeSubAliases...),
		runeShards:     find("rune_shards"),
		teamChamps:     find("team_champs"),
		enemyChamps:    find("enemy_champs"),
		kills:          find("kills"),
		deaths:         find("deaths"),
		assists:        find("assists"),
		gold:           find("gold", "goldEarned"),
		damageTotal:    find("damage_total"),
		damageMagic:    find("damage_magic"),
		damagePhysical: find("damage_physical"),
		damageTrue:     find("damage_true"),
		duration:       find(durationAliases...),
	}
	if c.matchID < 0 {
		return nil, fmt.Errorf("%w: match_id", ErrMissingColumn)
	}
	if c.champion < 0 {
		return nil, fmt.Errorf("%w: champion", ErrMissingColumn)
	}

	for i, h := range header {
		m := itemColumnRe.FindStringSubmatch(strings.TrimSpace(h))
		if m == nil {
			continue
		}
		order, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		c.slots = append(c.slots, slotColumn{name: strings.TrimSpace(h), index: i, order: order})
	}
	sort.SliceStable(c.slots, func(a, b int) bool { return c.slots[a].order < c.slots[b].order })

	return c, nil
}

// Label cleans a categorical value: trims it, maps missing-value tokens to
// "" and NFC-normalizes the rest.
func Label(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, ok := nullTokens[strings.ToLower(s)]; ok {
		return ""
	}
	return norm.NFC.String(s)
}

// Outcome folds a textual win flag into a bool. Only "1", "true", "t", "yes"
// (any case) and numerals equal to 1 are true; anything else is false.
func Outcome(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := truthy[s]; ok {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 1
}

func number(s string, fallback float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func riotID(name, tag string) string {
	if name == "" || tag == "" {
		return name
	}
	return name + "#" + tag
}
