package normalize

import (
	"errors"
	"math"
	"testing"

	"aram-stats/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"True", true},
		{"TRUE", true},
		{" t ", true},
		{"yes", true},
		{"1.0", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"y", false},
		{"", false},
		{"nan", false},
		{"garbage", false},
		{"2", false},
	}
	for _, tt := range tests {
		if got := Outcome(tt.in); got != tt.want {
			t.Errorf("Outcome(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"json", `["Ahri", "Lux"]`, []string{"Ahri", "Lux"}},
		{"python literal", `['Ahri', "Kai'Sa", 'Lux']`, []string{"Ahri", "Kai'Sa", "Lux"}},
		{"empty literal", `[]`, []string{}},
		{"pipe", "Ahri|Lux | Zed", []string{"Ahri", "Lux", "Zed"}},
		{"comma", "Ahri, Lux", []string{"Ahri", "Lux"}},
		{"pipe wins over comma", "A,B|C", []string{"A,B", "C"}},
		{"bare token", "  Ahri ", []string{"Ahri"}},
		{"broken literal falls back to comma", "[Ahri, Lux]", []string{"[Ahri", "Lux]"}},
		{"missing", "", nil},
		{"nan", "NaN", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseList(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	// labels written with decomposed jamo must match the composed form
	composed := "마법사의 신발"
	decomposed := norm.NFD.String(composed)
	if decomposed == composed {
		t.Fatal("expected NFD form to differ")
	}

	if got := Label(decomposed); got != composed {
		t.Errorf("Label(decomposed): got %q, want %q", got, composed)
	}
	if got := Label("  Zhonya's Hourglass "); got != "Zhonya's Hourglass" {
		t.Errorf("Label trim: got %q", got)
	}
	if got := Label("nan"); got != "" {
		t.Errorf("Label(nan): got %q, want empty", got)
	}
}

func TestNormalize_FullSchema(t *testing.T) {
	raw := &domain.RawTable{
		Columns: []string{"\ufeffmatchId", "summonerName", "teamId", "champion", "win", "kills", "deaths", "assists",
			"damage_total", "item1", "item0", "item2", "spell1", "spell2", "rune_core", "rune_sub", "team_champs"},
		Rows: [][]string{
			{"M1", "p1", "100", "Ahri", "True", "10", "2", "5", "30000", " 라바돈 ", "", "nan", "Flash", "Mark", "Electrocute", "Sorcery", "['Lux', 'Zed']"},
			{"M1", "p2", "100", "Lux", "0", "1", "0", "20", "12000", "X", "Y"},
		},
	}

	table, err := New(zerolog.Nop()).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if diff := cmp.Diff([]string{"item0", "item1", "item2"}, table.SlotNames()); diff != "" {
		t.Errorf("slot names mismatch (-want +got):\n%s", diff)
	}
	if table.Len() != 2 || table.DistinctMatches() != 1 {
		t.Fatalf("got %d rows / %d matches, want 2 / 1", table.Len(), table.DistinctMatches())
	}

	p := table.Row(0)
	if p.MatchID != "M1" || p.PlayerID != "p1" || p.TeamID != "100" || p.Champion != "Ahri" || !p.Win {
		t.Errorf("identity fields: %+v", p)
	}
	if diff := cmp.Diff([]string{"", "라바돈", ""}, p.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if p.Spells != [2]string{"Flash", "Mark"} {
		t.Errorf("spells: got %v", p.Spells)
	}
	if p.RunePrimary != "Electrocute" || p.RuneSecondary != "Sorcery" {
		t.Errorf("runes: got %q/%q", p.RunePrimary, p.RuneSecondary)
	}
	if diff := cmp.Diff([]string{"Lux", "Zed"}, p.Teammates); diff != "" {
		t.Errorf("teammates mismatch (-want +got):\n%s", diff)
	}
	if got := p.KDA(); got != 7.5 {
		t.Errorf("KDA: got %v, want 7.5", got)
	}
	if !math.IsNaN(p.DamagePerMinute()) {
		t.Errorf("DamagePerMinute without duration: got %v, want NaN", p.DamagePerMinute())
	}

	// short row: missing trailing cells fall back to defaults
	q := table.Row(1)
	if q.Win {
		t.Errorf("row 1 should be a loss")
	}
	if diff := cmp.Diff([]string{"Y", "X", ""}, q.Items); diff != "" {
		t.Errorf("row 1 items mismatch (-want +got):\n%s", diff)
	}
	if q.Spells != [2]string{"", ""} {
		t.Errorf("row 1 spells: got %v", q.Spells)
	}
	if got := q.KDA(); got != 21 {
		t.Errorf("KDA with zero deaths: got %v, want 21", got)
	}

	// input untouched
	if raw.Rows[0][9] != " 라바돈 " {
		t.Errorf("raw table was modified: %q", raw.Rows[0][9])
	}
}

func TestNormalize_OptionalColumnsDefaulted(t *testing.T) {
	raw := &domain.RawTable{
		Columns: []string{"match_id", "champion_name", "riotIdGameName", "riotIdTagline", "game_duration", "damage_total"},
		Rows: [][]string{
			{"M1", "Ahri", "Faker", "KR1", "1200", "20000"},
		},
	}

	table, err := New(zerolog.Nop()).Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	p := table.Row(0)
	if p.TeamID != "" || p.Win || len(p.Items) != 0 {
		t.Errorf("defaults: team=%q win=%v slots=%d", p.TeamID, p.Win, len(p.Items))
	}
	if p.PlayerID != "Faker#KR1" {
		t.Errorf("player id: got %q, want Faker#KR1", p.PlayerID)
	}
	if got := p.DamagePerMinute(); got != 1000 {
		t.Errorf("DamagePerMinute: got %v, want 1000", got)
	}
	if p.Teammates != nil {
		t.Errorf("teammates: got %v, want nil", p.Teammates)
	}
}

func TestNormalize_MissingRequiredColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{"no match id", []string{"champion", "win"}},
		{"no champion", []string{"matchId", "win"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(zerolog.Nop()).Normalize(&domain.RawTable{Columns: tt.columns})
			if !errors.Is(err, ErrMissingColumn) {
				t.Errorf("got %v, want ErrMissingColumn", err)
			}
		})
	}
}
