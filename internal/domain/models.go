package domain

import (
	"math"
	"strings"
	"time"
)

// RawTable is a loosely shaped table as read from a source, before
// normalization. Cells are kept as text; a short row is padded with "".
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the value at row i, column j or "" when the row is short.
func (r *RawTable) Cell(i, j int) string {
	if j < 0 || j >= len(r.Rows[i]) {
		return ""
	}
	return r.Rows[i][j]
}

// Participant is one player's participation in one match.
type Participant struct {
	MatchID  string
	TeamID   string
	PlayerID string
	Champion string
	Win      bool

	Items  []string // equipment slots in column order; "" = empty slot
	Spells [2]string

	RunePrimary   string
	RuneSecondary string
	RuneShards    string

	Teammates []string
	Enemies   []string

	Kills          float64
	Deaths         float64
	Assists        float64
	Gold           float64
	DamageTotal    float64
	DamageMagic    float64
	DamagePhysical float64
	DamageTrue     float64
	Duration       float64 // seconds, NaN when unknown
}

func (p *Participant) KDA() float64 {
	return (p.Kills + p.Assists) / math.Max(p.Deaths, 1)
}

// DamagePerMinute is NaN when the game duration is unknown.
func (p *Participant) DamagePerMinute() float64 {
	if math.IsNaN(p.Duration) || p.Duration <= 0 {
		return math.NaN()
	}
	return p.DamageTotal / (p.Duration / 60)
}

// StatRow is one group of a derived statistics table.
type StatRow struct {
	Key      []string
	Total    int
	Wins     int
	WinRate  float64
	PickRate *float64
}

func (r StatRow) Label() string {
	return strings.Join(r.Key, " / ")
}

// ChampionDetail is the drill-down view for a single champion.
type ChampionDetail struct {
	Champion        string
	Games           int
	Wins            int
	WinRate         float64
	AvgKDA          float64
	AvgDamagePerMin float64 // NaN when no row has a known duration
	Items           []StatRow
}

type Overview struct {
	Matches      int
	Players      int
	Rows         int
	TopChampions []StatRow
	DatasetID    string
	TableVersion uint64
}

// Dataset describes a raw table stored in the local database.
type Dataset struct {
	ID        string
	Name      string
	Source    string
	Columns   []string
	RowCount  int
	Checksum  string
	CreatedAt time.Time
}
