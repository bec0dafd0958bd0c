package database

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"

	"aram-stats/internal/config"
	"aram-stats/internal/constants"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// connPragmas are applied by the driver to every pooled connection.
// Dataset deletes rely on foreign_keys for the row cascade.
var connPragmas = []struct {
	param string
	value string
}{
	{"_foreign_keys", "on"},
	{"_busy_timeout", "5000"},
	{"_journal_mode", "WAL"},
	{"_synchronous", "NORMAL"},
}

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	return Open(cfg.DBPath, logger)
}

// Open connects to the dataset store at path and applies pending
// migrations.
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	logger.Info().Str("path", path).Msg("opening dataset store")

	store, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset store: %w", err)
	}

	store.SetMaxOpenConns(constants.DBMaxOpenConns)
	store.SetMaxIdleConns(constants.DBMaxIdleConns)
	store.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	store.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	if err := checkStore(store, logger); err != nil {
		store.Close()
		return nil, err
	}
	if err := migrate(store, logger); err != nil {
		store.Close()
		logger.Error().Err(err).Msg("dataset store migration failed")
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Set(p.param, p.value)
	}
	return "file:" + path + "?" + q.Encode()
}

// checkStore reads back the settings the repository depends on.
func checkStore(store *sql.DB, logger zerolog.Logger) error {
	var fk int
	if err := store.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		return fmt.Errorf("failed to reach dataset store: %w", err)
	}
	if fk != 1 {
		return fmt.Errorf("dataset store has foreign keys disabled")
	}

	var journal string
	if err := store.QueryRow(`PRAGMA journal_mode`).Scan(&journal); err != nil {
		return fmt.Errorf("failed to read journal mode: %w", err)
	}
	logger.Debug().Str("journal_mode", journal).Msg("dataset store ready")
	return nil
}

func migrate(store *sql.DB, logger zerolog.Logger) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(store, "migrations"); err != nil {
		return err
	}

	version, err := goose.GetDBVersion(store)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info().Int64("schema_version", version).Msg("dataset store migrated")
	return nil
}
