package server

import (
	"math"
	"time"

	"aram-stats/internal/domain"
	"aram-stats/internal/service"
)

type Empty struct{}

type StatRow struct {
	Key      []string `json:"key"`
	Label    string   `json:"label"`
	Total    int      `json:"total"`
	Wins     int      `json:"wins"`
	WinRate  float64  `json:"win_rate"`
	PickRate *float64 `json:"pick_rate,omitempty"`
}

type StatsResponse struct {
	Rows []StatRow `json:"rows"`
}

type ItemStatsRequest struct {
	Allow []string `json:"allow"`
	Boots bool     `json:"boots"`
}

type CoreComboRequest struct {
	Slots []string `json:"slots"`
}

type SynergyRequest struct {
	Champion string `json:"champion"`
	TopN     int    `json:"top_n"`
}

type ChampionRequest struct {
	Champion string `json:"champion"`
}

type ChampionsResponse struct {
	Champions []string `json:"champions"`
}

type ChampionDetailResponse struct {
	Champion        string    `json:"champion"`
	Games           int       `json:"games"`
	Wins            int       `json:"wins"`
	WinRate         float64   `json:"win_rate"`
	AvgKDA          *float64  `json:"avg_kda"`
	AvgDamagePerMin *float64  `json:"avg_damage_per_min"`
	Items           []StatRow `json:"items"`
}

type OverviewResponse struct {
	Matches      int       `json:"matches"`
	Players      int       `json:"players"`
	Rows         int       `json:"rows"`
	DatasetID    string    `json:"dataset_id,omitempty"`
	TableVersion string    `json:"table_version"`
	TopChampions []StatRow `json:"top_champions"`
}

type DashboardResponse struct {
	Overview   OverviewResponse `json:"overview"`
	Champions  []StatRow        `json:"champions"`
	Boots      []StatRow        `json:"boots"`
	CoreCombos []StatRow        `json:"core_combos"`
	Runes      []StatRow        `json:"runes"`
	Spells     []StatRow        `json:"spells"`
}

type RowsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type Participant struct {
	MatchID         string   `json:"match_id"`
	TeamID          string   `json:"team_id"`
	PlayerID        string   `json:"player_id"`
	Champion        string   `json:"champion"`
	Win             bool     `json:"win"`
	Items           []string `json:"items"`
	Spells          []string `json:"spells"`
	RunePrimary     string   `json:"rune_primary"`
	RuneSecondary   string   `json:"rune_secondary"`
	RuneShards      string   `json:"rune_shards"`
	Teammates       []string `json:"teammates"`
	Enemies         []string `json:"enemies"`
	Kills           float64  `json:"kills"`
	Deaths          float64  `json:"deaths"`
	Assists         float64  `json:"assists"`
	Gold            float64  `json:"gold"`
	DamageTotal     float64  `json:"damage_total"`
	KDA             float64  `json:"kda"`
	DamagePerMinute *float64 `json:"damage_per_minute"`
	DurationSeconds *float64 `json:"duration_seconds"`
}

type RowsResponse struct {
	Total int           `json:"total"`
	Rows  []Participant `json:"rows"`
}

type Dataset struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Source    string   `json:"source"`
	Columns   []string `json:"columns"`
	RowCount  int      `json:"row_count"`
	Checksum  string   `json:"checksum"`
	CreatedAt string   `json:"created_at"`
}

type DatasetsResponse struct {
	Datasets []Dataset `json:"datasets"`
}

// ImportRequest stores either a location under DATA_DIR or
// SOURCE_URL_PREFIXES, or inline CSV text.
type ImportRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	CSV      string `json:"csv"`
}

type ImportResponse struct {
	Dataset Dataset `json:"dataset"`
	Created bool    `json:"created"`
}

// LoadRequest selects exactly one source for the active table. Postgres
// always runs the configured PG_QUERY.
type LoadRequest struct {
	DatasetID string `json:"dataset_id"`
	Location  string `json:"location"`
	Postgres  bool   `json:"postgres"`
}

type DatasetRequest struct {
	DatasetID string `json:"dataset_id"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toStatRows(rows []domain.StatRow) []StatRow {
	out := make([]StatRow, len(rows))
	for i, r := range rows {
		out[i] = StatRow{
			Key:      r.Key,
			Label:    r.Label(),
			Total:    r.Total,
			Wins:     r.Wins,
			WinRate:  r.WinRate,
			PickRate: r.PickRate,
		}
	}
	return out
}

func toOverview(ov domain.Overview) OverviewResponse {
	return OverviewResponse{
		Matches:      ov.Matches,
		Players:      ov.Players,
		Rows:         ov.Rows,
		DatasetID:    ov.DatasetID,
		TableVersion: formatVersion(ov.TableVersion),
		TopChampions: toStatRows(ov.TopChampions),
	}
}

func toDetail(d domain.ChampionDetail) *ChampionDetailResponse {
	return &ChampionDetailResponse{
		Champion:        d.Champion,
		Games:           d.Games,
		Wins:            d.Wins,
		WinRate:         d.WinRate,
		AvgKDA:          finite(d.AvgKDA),
		AvgDamagePerMin: finite(d.AvgDamagePerMin),
		Items:           toStatRows(d.Items),
	}
}

func toDashboard(d *service.Dashboard) *DashboardResponse {
	return &DashboardResponse{
		Overview:   toOverview(d.Overview),
		Champions:  toStatRows(d.Champions),
		Boots:      toStatRows(d.Boots),
		CoreCombos: toStatRows(d.CoreCombos),
		Runes:      toStatRows(d.Runes),
		Spells:     toStatRows(d.Spells),
	}
}

func toParticipant(p domain.Participant) Participant {
	return Participant{
		MatchID:         p.MatchID,
		TeamID:          p.TeamID,
		PlayerID:        p.PlayerID,
		Champion:        p.Champion,
		Win:             p.Win,
		Items:           p.Items,
		Spells:          p.Spells[:],
		RunePrimary:     p.RunePrimary,
		RuneSecondary:   p.RuneSecondary,
		RuneShards:      p.RuneShards,
		Teammates:       p.Teammates,
		Enemies:         p.Enemies,
		Kills:           p.Kills,
		Deaths:          p.Deaths,
		Assists:         p.Assists,
		Gold:            p.Gold,
		DamageTotal:     p.DamageTotal,
		KDA:             p.KDA(),
		DamagePerMinute: finite(p.DamagePerMinute()),
		DurationSeconds: finite(p.Duration),
	}
}

func toDataset(ds domain.Dataset) Dataset {
	return Dataset{
		ID:        ds.ID,
		Name:      ds.Name,
		Source:    ds.Source,
		Columns:   ds.Columns,
		RowCount:  ds.RowCount,
		Checksum:  ds.Checksum,
		CreatedAt: ds.CreatedAt.Format(time.RFC3339),
	}
}
