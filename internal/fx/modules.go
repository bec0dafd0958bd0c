package fx

import (
	"database/sql"

	"aram-stats/internal/config"
	"aram-stats/internal/database"
	"aram-stats/internal/db"
	"aram-stats/internal/engine"
	"aram-stats/internal/logger"
	"aram-stats/internal/metrics"
	"aram-stats/internal/normalize"
	"aram-stats/internal/repository"
	"aram-stats/internal/server"
	"aram-stats/internal/service"
	"aram-stats/internal/source"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideEngine(cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) *engine.Engine {
	return engine.New(engine.NewCache(cfg.CacheMaxEntries), m, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(metrics.New),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewDatasetRepository),
	// sources
	fx.Provide(source.NewHTTPFetcher),
	// engine
	fx.Provide(normalize.New),
	fx.Provide(ProvideEngine),
	// svc
	fx.Provide(service.NewStatsService),
	// server
	fx.Provide(server.NewStatsServer),
)
