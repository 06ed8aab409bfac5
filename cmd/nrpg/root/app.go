package root

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/config"
	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/logger"
	"github.com/phuchgg/neon-rpg/internal/storage"
	nrpgsync "github.com/phuchgg/neon-rpg/internal/sync"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

var errSyncDisabled = errors.New("no remote configured (set NRPG_REMOTE_URL)")

// app is everything a command needs: config, logger, the local database and
// the engine loaded from it.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	db  *sql.DB
	svc *engine.Service
}

func openApp(ctx context.Context) (*app, func(), error) {
	boot := logger.NewConsole(os.Stderr, os.Getenv("NRPG_LOG_LEVEL"))
	cfg, err := config.Load(boot)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewConsole(os.Stderr, cfg.LogLevel)

	db, err := storage.Open(ctx, cfg.DBPath, log)
	if err != nil {
		return nil, nil, err
	}
	svc, err := engine.Open(ctx, storage.NewKVRepo(db), engine.WithLogger(log))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}
	return &app{cfg: cfg, log: log, db: db, svc: svc}, cleanup, nil
}

func (a *app) syncer() (*nrpgsync.Syncer, error) {
	if !a.cfg.SyncEnabled() {
		return nil, errSyncDisabled
	}
	remote := nrpgsync.NewHTTPRemote(a.cfg.RemoteURL, a.cfg.RemoteTimeout)
	return nrpgsync.New(a.svc, remote, a.cfg.PlayerID, a.log), nil
}

// afterMutation pushes to the remote when auto-push is on. A failed push is
// reported but never fails the command.
func (a *app) afterMutation(cmd *cobra.Command) {
	if !a.cfg.AutoPush || !a.cfg.SyncEnabled() {
		return
	}
	s, err := a.syncer()
	if err == nil {
		_, err = s.PushAll(cmd.Context())
	}
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn.Render(ui.IconWarn+" auto-push failed: "+err.Error()))
	}
}

// withApp opens the app for one command run.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd, a, args)
	}
}
