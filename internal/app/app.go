// Package app wires configuration, storage, session and presentation into
// the runnable diary client, and handles graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fine2025/petdiary/internal/cli"
	"github.com/fine2025/petdiary/internal/config"
	"github.com/fine2025/petdiary/internal/cryptox"
	"github.com/fine2025/petdiary/internal/logging"
	"github.com/fine2025/petdiary/internal/repository"
	"github.com/fine2025/petdiary/internal/session"
	"github.com/fine2025/petdiary/internal/storage"
	"github.com/fine2025/petdiary/internal/storage/blob"
	"github.com/fine2025/petdiary/internal/storage/postgres"
	"github.com/fine2025/petdiary/internal/storage/sqlite"
)

// signingSalt pins the key derivation so the same passphrase always yields
// the same token signing key across devices.
var signingSalt = []byte("petdiary/signing/v1")

type App struct {
	config *config.Config
	logger logging.Logger
	store  storage.Store
	ui     *cli.App
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(slogger)

	store, err := openStore(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	signingKey := cryptox.DeriveSigningKey([]byte(c.TokenPassphrase), signingSalt)
	gate := session.NewGate(c.AllowedEmails, signingKey)

	repo := repository.New(store, repository.Config{
		MaxPhotoDimension: c.MaxPhotoDimension,
		PhotoQuality:      c.PhotoQuality,
	}, logger)

	ui := cli.NewApp(c, repo, gate, logger)

	return &App{config: c, logger: logger, store: store, ui: ui}, nil
}

// openStore selects the record store adapter from configuration: a local
// sqlite file, or Postgres plus S3-compatible photo storage.
func openStore(ctx context.Context, c *config.Config, logger logging.Logger) (storage.Store, error) {
	switch c.Backend {
	case "sqlite":
		return sqlite.Open(ctx, c.DatabaseDSN)

	case "postgres":
		blobs, err := blob.NewS3Store(ctx, blob.Config{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return postgres.Open(ctx, c.DatabaseDSN, blobs, logger)

	default:
		return nil, fmt.Errorf("unknown backend %q (expected sqlite or postgres)", c.Backend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the interactive session and blocks until the user exits or a
// termination signal arrives. The store is closed on the way out.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting diary", "backend", app.config.Backend)

	app.initSignalHandler(cancelFunc)

	app.ui.Run(ctx)

	if err := app.store.Close(); err != nil {
		app.logger.Warn(ctx, "store close failed", "error", err)
	}
}
