package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/provnet/isp-admin/internal/api"
	"github.com/provnet/isp-admin/internal/core/ports"
	"github.com/provnet/isp-admin/internal/infrastructure/config"
	"github.com/provnet/isp-admin/internal/infrastructure/db/bolt"
	mongodb "github.com/provnet/isp-admin/internal/infrastructure/db/mongo"
	redisdb "github.com/provnet/isp-admin/internal/infrastructure/db/redis"
	"github.com/provnet/isp-admin/internal/syncstore"
	"github.com/provnet/isp-admin/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the back-office HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local cache store: required, the process is useless without it.
	if dir := filepath.Dir(cfg.Storage.LocalPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	local, err := bolt.Open(cfg.Storage.LocalPath, log)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer func() {
		if err := local.Close(); err != nil {
			log.Warn().Err(err).Msg("local store close failed")
		}
	}()

	// Remote store: best-effort, the service starts even when it is down.
	remote, err := newRemoteStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	conn := syncstore.NewConnectionManager(remote, cfg.Storage.ProbeTimeout, cfg.Storage.RetryInterval, log)
	bus := syncstore.NewChangeBus()
	storage := syncstore.New(local, remote, conn, bus, syncstore.Options{
		SetTimeout:   cfg.Storage.SetTimeout,
		FetchTimeout: cfg.Storage.FetchTimeout,
	}, log)
	storage.StartAutoReconnect(ctx)

	if connected := storage.CheckConnection(ctx); !connected {
		log.Warn().Str("backend", remote.Name()).Msg("starting in offline mode")
	}

	seeder := syncstore.NewSeeder(storage, cfg.Storage.SeedInterval, log)
	if _, err := seeder.Initialize(ctx); err != nil {
		// Without a seeded administrator nobody can log in.
		return fmt.Errorf("initialize default data: %w", err)
	}

	e := api.NewRouter(api.Deps{
		Storage:   storage,
		Local:     local,
		Remote:    remote,
		Seeder:    seeder,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("backend", remote.Name()).Msg("server starting")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func newRemoteStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.RemoteStore, error) {
	switch cfg.Storage.Backend {
	case "mongo":
		_, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return mongodb.NewStore(db, log), nil
	case "redis":
		client := redisdb.NewClient(redisdb.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		return redisdb.NewStore(client, log), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
