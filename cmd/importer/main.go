package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sahara-storefront/internal/config"
	"sahara-storefront/internal/httputil"
	"sahara-storefront/internal/importer"
	"sahara-storefront/internal/logging"
	catalogrepo "sahara-storefront/internal/repository/catalog"
	"sahara-storefront/internal/service/admin"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to an item CSV (name,price,quantity,imageUrl[,category,color,tags])")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	logger := logging.New(cfg.LogLevel, "importer")
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}

	repo := catalogrepo.NewHTTP(httputil.New(httputil.Config{
		Service: "catalog",
		BaseURL: cfg.CatalogServiceURL,
		Timeout: cfg.ServiceTimeout,
		Logger:  logger,
	}), logger)

	f, err := os.Open(filePath)
	if err != nil {
		logger.WithError(err).Fatal("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, admin.New(repo, nil, logger), logger)

	start := time.Now()
	count, err := imp.Run(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("import failed")
	}

	fmt.Printf("Imported %d items into %s in %s\n", count, cfg.CatalogServiceURL, time.Since(start).Truncate(time.Millisecond))
}
