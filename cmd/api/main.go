package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/dashboard"
	"storefront/internal/service/order"
	"storefront/internal/service/user"
	"storefront/internal/tracing"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, "storefront-api", cfg.JaegerEndpoint)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer repos.Close()

	var catalogOpts []catalog.Option
	productCache, closeCache, err := cache.FromConfig(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, product cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else if productCache != nil {
		catalogOpts = append(catalogOpts, catalog.WithCache(productCache))
	}
	defer closeCache()

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders)
		defer kp.Close()
		publisher = kp
	}

	catalogService := catalog.New(repos.Products, repos.Categories, logger, catalogOpts...)
	userService := user.New(repos.Users, repos.Tokens, cfg.TokenTTL, logger)
	orderService := order.New(repos.Orders, publisher, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.PingFunc(repos.Ping), httpserver.Deps{
		Auth:      userService,
		Catalog:   catalogService,
		Cart:      cart.New(repos.Carts, catalogService, logger),
		Checkout:  checkout.New(repos.Checkout, repos.Users, publisher, logger),
		Orders:    orderService,
		Dashboard: dashboard.New(repos.Categories, repos.Products, repos.Users, repos.Orders),
	}, httpserver.Options{CORSOrigins: cfg.CORSOrigins})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func openRepositories(ctx context.Context, cfg config.Config, logger *zap.Logger) (*repository.Set, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return repository.Memory(), nil
	}
	return repository.Postgres(ctx, cfg.DBConnString, logger)
}
