package main

import (
	"context"

	"github.com/joho/godotenv"

	"sahara-storefront/internal/config"
	"sahara-storefront/internal/httputil"
	"sahara-storefront/internal/logging"
	catalogrepo "sahara-storefront/internal/repository/catalog"
	"sahara-storefront/internal/seed"
	"sahara-storefront/internal/service/admin"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel, "seed")
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}

	repo := catalogrepo.NewHTTP(httputil.New(httputil.Config{
		Service: "catalog",
		BaseURL: cfg.CatalogServiceURL,
		Timeout: cfg.ServiceTimeout,
		Logger:  logger,
	}), logger)

	n, err := seed.Apply(context.Background(), admin.New(repo, nil, logger), logger)
	if err != nil {
		logger.WithError(err).Fatal("seed apply")
	}

	logger.WithField("created", n).Info("seed applied")
}
