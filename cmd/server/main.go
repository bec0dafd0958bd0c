package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"aram-stats/internal/config"
	"aram-stats/internal/constants"
	fxmodules "aram-stats/internal/fx"
	"aram-stats/internal/metrics"
	"aram-stats/internal/middleware"
	"aram-stats/internal/server"
	"aram-stats/internal/service"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	statsServer *server.StatsServer,
	statsSvc *service.StatsService,
	m *metrics.Metrics,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	path, handler := statsServer.Handler()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	requestIDMiddleware := middleware.RequestID(logger)

	mux.Handle(path, requestIDMiddleware(c.Handler(handler)))
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := statsSvc.Active(); !ok {
			http.Error(w, "no dataset loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				// a missing startup table is not fatal; clients can load one
				if _, err := statsSvc.LoadStartup(context.Background()); err != nil {
					logger.Warn().Err(err).Msg("startup dataset not loaded")
				}
			}()
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
