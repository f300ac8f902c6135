package main

import (
	"context"
	"flag"
	"os"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/seed"
	"storefront/internal/service/catalog"
	"storefront/internal/service/user"

	"go.uber.org/zap"
)

func main() {
	var admin seed.Admin
	flag.StringVar(&admin.Name, "admin-name", "Admin", "Display name of the seeded admin")
	flag.StringVar(&admin.Email, "admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "Email of the seeded admin; empty skips the admin")
	flag.StringVar(&admin.Password, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "Password of the seeded admin")
	flag.Parse()

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

	catalogService := catalog.New(repos.Products, repos.Categories, logger, catalogOpts...)
	userService := user.New(repos.Users, repos.Tokens, cfg.TokenTTL, logger)

	if err := seed.Apply(ctx, catalogService, userService, admin, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	logger.Info("seed applied")
}
