package mirror

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/phuchgg/neon-rpg/internal/config"
	"github.com/phuchgg/neon-rpg/internal/logger"
	"github.com/phuchgg/neon-rpg/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Module wires the mirror server. Pair it with fx.Invoke(Run).
var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(NewDatabase),
	fx.Provide(fx.Annotate(storage.NewDocumentRepo, fx.As(new(Store)))),
	fx.Provide(NewServer),
)

// NewDatabase opens the mirror's own SQLite file and closes it on stop.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, log zerolog.Logger) (*sql.DB, error) {
	db, err := storage.Open(context.Background(), cfg.MirrorDBPath, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
	return db, nil
}

// Run starts the HTTP listener on the configured address.
func Run(lc fx.Lifecycle, srv *Server, cfg *config.Config, log zerolog.Logger) {
	httpSrv := &http.Server{
		Addr:              cfg.MirrorAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", httpSrv.Addr).Msg("mirror starting")
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal().Err(err).Msg("mirror failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down mirror")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("mirror shutdown failed")
				return err
			}
			log.Info().Msg("mirror stopped")
			return nil
		},
	})
}
