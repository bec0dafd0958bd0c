package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const participantsCSV = `matchId,teamId,champion,win,item0,item1,item2,spell1,spell2,rune_core,rune_sub
M1,T1,A,True,X,,Y,Flash,Mark,Electrocute,Domination
M1,T1,B,True,Y,X,,Flash,Mark,Electrocute,Domination
M1,T2,C,False,Z,,,Mark,Flash,Aery,Sorcery
M2,T1,A,False,X,Y,,Flash,Mark,Aery,Sorcery
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "participants.csv")
	if err := os.WriteFile(path, []byte(participantsCSV), 0644); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	t.Setenv("DATA_PATH", path)
	t.Setenv("DB_PATH", filepath.Join(dir, "aram.db"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("BOOTS", "X")
	t.Setenv("CORE_SLOTS", "")
	t.Setenv("CACHE_MAX_ENTRIES", "")
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRun_ReportViews(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		args  []string
		wants []string
	}{
		{[]string{"report", "champions"}, []string{"CHAMPION", "PICK%", "B ", "100.00"}},
		{[]string{"report", "combos"}, []string{"X|Y", "66.67"}},
		{[]string{"report", "boots"}, []string{"BOOTS", "X "}},
		{[]string{"report", "-allow", "Z", "items"}, []string{"Z "}},
		{[]string{"report", "runes"}, []string{"Electrocute / Domination", "Aery / Sorcery"}},
		{[]string{"report", "-champion", "A", "synergy"}, []string{"TEAMMATE", "B "}},
		{[]string{"report", "-champion", "A", "detail"}, []string{"games", "avg damage/min  -"}},
		{[]string{"report", "overview"}, []string{"matches", "players"}},
		{[]string{"report", "-limit", "1", "rows"}, []string{"1 of 4 rows"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, errOut, code := runCLI(t, tt.args...)
			if code != 0 {
				t.Fatalf("exit %d: %s", code, errOut)
			}
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRun_ImportAndReportDataset(t *testing.T) {
	path := setupEnv(t)

	out, errOut, code := runCLI(t, "import", "-name", "sample", path)
	if code != 0 {
		t.Fatalf("import exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "stored sample (4 rows) as ") {
		t.Fatalf("import output: %q", out)
	}
	id := strings.TrimSpace(strings.TrimPrefix(out, "stored sample (4 rows) as "))

	out, _, _ = runCLI(t, "import", path)
	if !strings.Contains(out, "already stored as "+id) {
		t.Errorf("second import output: %q", out)
	}

	out, _, code = runCLI(t, "datasets")
	if code != 0 || !strings.Contains(out, id) {
		t.Errorf("datasets output (exit %d): %q", code, out)
	}

	out, errOut, code = runCLI(t, "report", "-dataset", id, "overview")
	if code != 0 {
		t.Fatalf("report exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, id) {
		t.Errorf("overview should name the dataset:\n%s", out)
	}

	if _, _, code := runCLI(t, "delete", id); code != 0 {
		t.Errorf("delete exit %d", code)
	}
}

func TestRun_Errors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"unknown view", []string{"report", "matchups"}, 1},
		{"unknown slot", []string{"report", "-slots", "item9", "combos"}, 1},
		{"synergy without champion", []string{"report", "synergy"}, 1},
		{"missing dataset", []string{"report", "-dataset", "nope", "champions"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, code := runCLI(t, tt.args...); code != tt.code {
				t.Errorf("exit: got %d, want %d", code, tt.code)
			}
		})
	}
}
