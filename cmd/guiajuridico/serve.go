package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/apiclient"
	"github.com/xela07ax/guia-juridico-web/internal/catalog"
	"github.com/xela07ax/guia-juridico-web/internal/clients"
	"github.com/xela07ax/guia-juridico-web/internal/infra"
	"github.com/xela07ax/guia-juridico-web/internal/profile"
	"github.com/xela07ax/guia-juridico-web/internal/session"
	"github.com/xela07ax/guia-juridico-web/internal/web/handler"
	"github.com/xela07ax/guia-juridico-web/internal/web/middleware"
	"github.com/xela07ax/guia-juridico-web/internal/web/server"
	"github.com/xela07ax/guia-juridico-web/internal/web/view"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the web front-end",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *infra.Config, logger *zap.Logger) error {
	// Контекст фоновых горутин: отменяется по SIGTERM
	appCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Хранилище клиентского состояния
	storage, closeStorage, err := newStorage(appCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := apiclient.NewMetrics(reg)

	// 3. Клиент бэкенда в конверте надежности
	api := apiclient.New(cfg.API, &http.Client{}, metrics, logger)

	decoder, err := session.NewTokenDecoder(cfg.Auth)
	if err != nil {
		return fmt.Errorf("token decoder: %w", err)
	}
	if !decoder.Verifying() {
		logger.Warn("jwt signature verification disabled, tokens are only decoded")
	}

	norm := catalog.NewNormalizer(catalog.NewAssets(cfg.App.AssetURL), cfg.Location(), time.Now)

	// 4. Клиенты по cookie
	registry := clients.NewRegistry(clients.Deps{
		Storage:    storage,
		AuthAPI:    api,
		Decoder:    decoder,
		Favorites:  api,
		Normalizer: norm,
		Now:        time.Now,
		IdleTTL:    cfg.Favorites.IdleTTL,
		Active:     metrics.ActiveClients,
		Reloads:    metrics.FavoritesReloads,
		Logger:     logger,
	})
	go registry.StartSweeper(appCtx, cfg.Favorites.SweepInterval)

	// 5. Страницы
	renderer, err := view.New(logger)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	h := handler.New(handler.Deps{
		View:      renderer,
		Catalog:   catalog.NewService(api, norm, logger),
		Profile:   profile.NewService(api, logger),
		AdminAPI:  api,
		Registrar: api,
		Logger:    logger,
	})
	web := server.NewWebServer(logger, registry, middleware.ClientStateConfig{
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.CookieSecure,
		MaxAge:     cfg.Auth.CookieMaxAge,
	}, h)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      web,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Экспортируем метрики для Prometheus на отдельном порту
	metricsSrv := &http.Server{
		Addr:    cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.MetricsPort),
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener failed", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web front-end started",
			zap.String("addr", srv.Addr),
			zap.String("api", cfg.API.BaseURL),
			zap.Bool("redis", cfg.Redis.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-appCtx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("web front-end stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	_ = metricsSrv.Shutdown(shutdownCtx)
	logger.Info("web front-end exited properly")
	return nil
}

// newStorage — Redis, если включен, иначе память процесса
func newStorage(ctx context.Context, cfg *infra.Config, logger *zap.Logger) (session.ClientStorage, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info("client state kept in memory")
		return session.NewMemoryStorage(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis unreachable: %w", err)
	}
	logger.Info("client state kept in redis", zap.String("addr", cfg.Redis.Addr))
	return session.NewRedisStorage(rdb, cfg.Auth.CookieMaxAge), func() { _ = rdb.Close() }, nil
}
