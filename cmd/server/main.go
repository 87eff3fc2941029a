package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"quant_dashboard/internal/app/di"
	"quant_dashboard/internal/app/router"
	i18nadapters "quant_dashboard/internal/feature/i18n/adapters"
	i18nhandler "quant_dashboard/internal/feature/i18n/transport/handler"
	mdhandler "quant_dashboard/internal/feature/marketdata/transport/handler"
	"quant_dashboard/internal/feature/marketdata/usecase"
	"quant_dashboard/internal/platform/config"
	infradb "quant_dashboard/internal/platform/db"
	"quant_dashboard/internal/platform/http/handler"
	"quant_dashboard/internal/platform/logging"
	infraredis "quant_dashboard/internal/platform/redis"
	"quant_dashboard/internal/platform/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.LoadServer()
	if err := logging.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	catalogue, err := config.LoadCatalogue(cfg.CataloguePath)
	if err != nil {
		slog.Error("failed to load catalogue", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db（任意）
	var db *gorm.DB
	if cfg.DBDriver != "" {
		db, err = infradb.OpenDB(infradb.Config{Driver: cfg.DBDriver, DSN: cfg.DBDSN, RunMigrations: cfg.RunMigrations})
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
	}

	// Redis（任意）
	rdb, err := infraredis.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Usecase
	providers := di.NewProviders(rdb, cfg.UpstreamTimeout)
	store := di.NewCandleRepository(db, rdb)
	marketUC := usecase.NewMarketDataUsecase(providers, store, catalogue.Exchanges, catalogue.Pairs)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Handler
	catalog, err := i18nadapters.LoadCatalog()
	if err != nil {
		slog.Error("failed to load message catalog", "error", err)
		os.Exit(1)
	}
	marketH := mdhandler.NewMarketHandler(marketUC)
	i18nH := i18nhandler.NewI18nHandler(catalog, catalogue.Timeframes, hub)

	r := router.NewRouter(router.Deps{
		Market:    marketH,
		I18n:      i18nH,
		Hub:       hub,
		Checks:    healthChecks(db, rdb),
		StaticDir: cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("dashboard server listening", "addr", cfg.BindAddr, "exchanges", catalogue.Exchanges)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// healthChecks は設定済みのバックエンドだけを /healthz の確認対象にします。
func healthChecks(db *gorm.DB, rdb *redisv9.Client) map[string]handler.Check {
	checks := map[string]handler.Check{}
	if db != nil {
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
