package source

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

const sampleCSV = "\ufeffmatchId,teamId,champion,win,item0,team_champs\n" +
	"M1,100,Ahri,True,Rod,\"['Lux', 'Zed']\"\n" +
	"M1,100,Lux,True\n"

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if diff := cmp.Diff([]string{"matchId", "teamId", "champion", "win", "item0", "team_champs"}, table.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(table.Rows))
	}
	if got := table.Rows[0][5]; got != "['Lux', 'Zed']" {
		t.Errorf("quoted cell: got %q", got)
	}
	if got := table.Cell(1, 5); got != "" {
		t.Errorf("short row cell: got %q, want empty", got)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("got %v, want ErrEmptyInput", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "participants.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0644); err != nil {
		t.Fatalf("Failed to write sample CSV: %v", err)
	}

	table, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Errorf("rows: got %d, want 2", len(table.Rows))
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestIsURL(t *testing.T) {
	for in, want := range map[string]bool{
		"https://example.com/a.csv": true,
		"HTTP://example.com/a.csv":  true,
		"./data/a.csv":              false,
		"/abs/https.csv":            false,
	} {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plain.csv":
			w.Write([]byte(sampleCSV))
		case "/gzip.csv":
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			gz.Write([]byte(sampleCSV))
			gz.Close()
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, path := range []string{"/plain.csv", "/gzip.csv"} {
		table, err := f.Fetch(ctx, srv.URL+path)
		if err != nil {
			t.Fatalf("Fetch(%s) failed: %v", path, err)
		}
		if len(table.Rows) != 2 || table.Columns[0] != "matchId" {
			t.Errorf("Fetch(%s): got %d rows, columns %v", path, len(table.Rows), table.Columns)
		}
	}

	if _, err := f.Fetch(ctx, srv.URL+"/missing.csv"); err == nil {
		t.Errorf("expected error for 404")
	}
}

func TestPostgres_Query(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := NewPostgres(ctx, dbURL, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPostgres failed: %v", err)
	}
	defer pg.Close()

	table, err := pg.Query(ctx, `SELECT 'M1' AS "matchId", 'Ahri' AS champion, true AS win, NULL::text AS item0, ARRAY['Lux','Zed'] AS team_champs`)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	want := []string{"M1", "Ahri", "true", "", `["Lux","Zed"]`}
	if diff := cmp.Diff(want, table.Rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}
