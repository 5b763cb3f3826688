package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/fast-order/internal/config"
	"github.com/Lixing-Zhang/fast-order/internal/fastorder"
	"github.com/Lixing-Zhang/fast-order/internal/handlers"
	"github.com/Lixing-Zhang/fast-order/internal/metrics"
	"github.com/Lixing-Zhang/fast-order/internal/middleware"
	"github.com/Lixing-Zhang/fast-order/internal/repository"
	"github.com/Lixing-Zhang/fast-order/internal/service"
	"github.com/Lixing-Zhang/fast-order/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewWithConfig(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting fast order server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("cart_store", cfg.Cart.Store),
	)

	ctx := context.Background()

	db, err := repository.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := repository.CloseDatabase(db); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	// Initialize repositories
	productRepo := repository.NewGormProductRepository(db)
	if err := productRepo.Upsert(ctx, repository.SeedProducts()); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	orderLogRepo := repository.NewGormOrderLogRepository(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	healthHandler := handlers.NewHealthHandler(log, version)
	healthHandler.AddCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	var carts repository.CartStore
	switch cfg.Cart.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()

		redisCarts := repository.NewRedisCartStore(client, "", cfg.Redis.TTL)
		if err := redisCarts.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		healthHandler.AddCheck("redis", redisCarts.Ping)
		carts = redisCarts
	default:
		carts = repository.NewInMemoryCartStore()
	}

	// Initialize services
	schema := fastorder.NewSchema(cfg.Form.Prefix, cfg.Form.ArticleRole, cfg.Form.QuantityRole)
	productService := service.NewProductService(productRepo)
	fastOrderService := service.NewFastOrderService(schema, productRepo, carts, orderLogRepo, m, log)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService, log)
	fastOrderHandler := handlers.NewFastOrderHandler(fastOrderService, cfg.Form.DefaultRows, log)
	cartHandler := handlers.NewCartHandler(fastOrderService, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log, m))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// shopper facing routes share the session cookie
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(false))

		r.Get("/fast-order", fastOrderHandler.GetForm)
		r.Group(func(r chi.Router) {
			if cfg.RateLimit.Enabled {
				limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
				r.Use(limiter.Handler)
			}
			r.Post("/fast-order", fastOrderHandler.Submit)
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/cart", cartHandler.GetCart)
			r.Get("/product", productHandler.ListProducts)
			r.Get("/product/{productNumber}", productHandler.GetProduct)
		})
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		log.Info("shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
