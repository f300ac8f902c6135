package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/service/catalog"

	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a product or category CSV file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	repos, err := repository.Postgres(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer repos.Close()

	// Writes must clear the product cache the API reads from.
	var catalogOpts []catalog.Option
	productCache, closeCache, err := cache.FromConfig(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	defer closeCache()
	if productCache != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(productCache))
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, catalog.New(repos.Products, repos.Categories, logger, catalogOpts...), logger)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d products and %d new categories from a %s file in %s\n", res.Products, res.Categories, res.Kind, time.Since(start).Truncate(time.Millisecond))
}
