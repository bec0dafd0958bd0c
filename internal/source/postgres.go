package source

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"aram-stats/internal/constants"
	"aram-stats/internal/domain"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Postgres reads participant tables from a Postgres database, e.g. the
// match collector's participants table.
type Postgres struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(ctx context.Context, dbURL string, logger zerolog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Query runs query and renders every value as text. NULL becomes "", arrays
// become JSON so list columns survive the trip through the normalizer.
func (p *Postgres) Query(ctx context.Context, query string) (*domain.RawTable, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	table := &domain.RawTable{Columns: make([]string, len(fields))}
	for i, f := range fields {
		table.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+1, err)
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = pgText(v)
		}
		table.Rows = append(table.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	p.logger.Info().Int("rows", len(table.Rows)).Int("columns", len(table.Columns)).Msg("participants loaded from postgres")
	return table, nil
}

func pgText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil || dv == nil {
			return ""
		}
		return pgText(dv)
	default:
		return fmt.Sprint(x)
	}
}
