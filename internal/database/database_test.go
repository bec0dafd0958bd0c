package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aram.db")

	db, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"datasets", "dataset_rows"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	// Settings must hold on every pooled connection, not just the first.
	conns := make([]*sql.Conn, 3)
	for i := range conns {
		conn, err := db.Conn(context.Background())
		if err != nil {
			t.Fatalf("Conn #%d failed: %v", i+1, err)
		}
		defer conn.Close()
		conns[i] = conn
	}
	for i, conn := range conns {
		var fk, busy int
		if err := conn.QueryRowContext(context.Background(), `PRAGMA foreign_keys`).Scan(&fk); err != nil || fk != 1 {
			t.Errorf("conn #%d foreign_keys: got %d, err %v", i+1, fk, err)
		}
		if err := conn.QueryRowContext(context.Background(), `PRAGMA busy_timeout`).Scan(&busy); err != nil || busy != 5000 {
			t.Errorf("conn #%d busy_timeout: got %d, err %v", i+1, busy, err)
		}
	}

	var journal string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&journal); err != nil || journal != "wal" {
		t.Errorf("journal_mode: got %q, err %v", journal, err)
	}
}

func TestDSN(t *testing.T) {
	got := dsn("/var/lib/aram/aram.db")
	want := "file:/var/lib/aram/aram.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
	if got != want {
		t.Errorf("dsn: got %q, want %q", got, want)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aram.db")

	for i := 0; i < 2; i++ {
		db, err := Open(path, zerolog.Nop())
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i+1, err)
		}
		db.Close()
	}
}
