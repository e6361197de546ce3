package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sahara-storefront/internal/config"
	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/httpserver"
	"sahara-storefront/internal/httputil"
	"sahara-storefront/internal/logging"
	catalogrepo "sahara-storefront/internal/repository/catalog"
	cartrepo "sahara-storefront/internal/repository/cart"
	"sahara-storefront/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel, "storefront")
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}

	catalogRepo := catalogrepo.NewHTTP(httputil.New(httputil.Config{
		Service: "catalog",
		BaseURL: cfg.CatalogServiceURL,
		Timeout: cfg.ServiceTimeout,
		Logger:  logger,
	}), logger)
	cartRepo := cartrepo.NewHTTP(httputil.New(httputil.Config{
		Service: "cart",
		BaseURL: cfg.CartServiceURL,
		Timeout: cfg.ServiceTimeout,
		Logger:  logger,
	}), logger)

	sessions := session.NewRegistry(session.Deps{
		CatalogRepo:  catalogRepo,
		CartRepo:     cartRepo,
		FetchTimeout: cfg.ServiceTimeout,
		TTL:          cfg.SessionTTL,
		Logger:       logger,
	})
	defer sessions.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx, time.Minute)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Sessions:       sessions,
		Categories:     cfg.Categories,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		ReadyCheck: func(ctx context.Context) error {
			_, err := catalogRepo.List(ctx, domain.DefaultQuery())
			return err
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.WithError(err).Error("server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	} else {
		logger.Info("server stopped")
	}
}
