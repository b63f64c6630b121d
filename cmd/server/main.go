package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/kalitiri-backend/internal/auth"
	"github.com/DoyleJ11/kalitiri-backend/internal/config"
	"github.com/DoyleJ11/kalitiri-backend/internal/httpapi"
	"github.com/DoyleJ11/kalitiri-backend/internal/hub"
	"github.com/DoyleJ11/kalitiri-backend/internal/logger"
	"github.com/DoyleJ11/kalitiri-backend/internal/store"
	"github.com/DoyleJ11/kalitiri-backend/internal/table"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		log.Fatal(err)
	}
	defer lg.Sync()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	lg.Info("snapshot store ready", zap.String("driver", cfg.StoreDriver))

	// The hub outlives ctx so that shutdown can still persist every table.
	h := hub.NewHub(context.Background(), st, table.Options{
		Log:                   lg,
		CheckpointEveryTricks: cfg.CheckpointEveryTricks,
		CheckpointTimeout:     cfg.CheckpointTimeout,
	})

	v := auth.NewVerifier(cfg.JWTSecret)
	if !v.Enabled() {
		lg.Warn("JWT_SECRET is not set; players identify themselves by query parameter")
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:       h,
			Verifier:  v,
			Log:       lg,
			WSOrigins: cfg.WSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Stop tables first so open sockets see the close and the final
		// snapshots are written.
		herr := h.Shutdown(sctx)
		serr := srv.Shutdown(sctx)
		return errors.Join(herr, serr)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		ps, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return ps, ps.Close, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store.NewRedisStore(rdb, cfg.SnapshotTTL), func() { _ = rdb.Close() }, nil

	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}
