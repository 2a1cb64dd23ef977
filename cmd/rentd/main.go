// rentd is the car rental marketplace API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/rentloop/rentloop/pkg/auth"
	"github.com/rentloop/rentloop/pkg/bookings"
	"github.com/rentloop/rentloop/pkg/cars"
	"github.com/rentloop/rentloop/pkg/config"
	"github.com/rentloop/rentloop/pkg/httputil"
	"github.com/rentloop/rentloop/pkg/middleware"
	"github.com/rentloop/rentloop/pkg/observability"
	"github.com/rentloop/rentloop/pkg/seed"
	"github.com/rentloop/rentloop/pkg/users"
)

func main() {
	seedPath := flag.String("seed", "", "YAML car catalog to apply at startup")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger, *seedPath); err != nil {
		logger.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger, seedPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	userStore := users.NewSQLStore(db, metrics)
	carStore := cars.NewSQLStore(db, metrics)
	bookingStore := bookings.NewSQLStore(db, metrics)
	for _, ensure := range []func(context.Context) error{
		userStore.EnsureSchema, carStore.EnsureSchema, bookingStore.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}

	var listCache *cars.ListCache
	if cfg.Cache.RedisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisURL,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		listCache = cars.NewListCache(redisClient, cfg.Cache.TTL)
		logger.WithField("redis", cfg.Cache.RedisURL).Info("car list cache enabled")
	}

	imageStore, err := buildImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	issuer := auth.NewIssuer([]byte(cfg.Auth.TokenSecret))
	userService := users.NewService(userStore, logger)
	carService := cars.NewService(carStore, imageStore, listCache, logger, metrics)
	bookingService := bookings.NewService(bookingStore, carStore, logger, metrics)
	gate := middleware.NewAuthGate(issuer, userService, metrics)

	if seedPath != "" {
		file, err := seed.Load(seedPath)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, file, userService, carStore); err != nil {
			return err
		}
		logger.WithField("file", seedPath).Info("seed applied")
	}

	router := mux.NewRouter()
	users.NewHandlers(userService, issuer, metrics).RegisterRoutes(router, gate)
	cars.NewHandlers(carService).RegisterRoutes(router, gate)
	bookings.NewHandlers(bookingService).RegisterRoutes(router, gate)

	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(cfg.Server.AllowedOrigins),
	}
	if metrics != nil {
		chain = append(chain, metrics.HTTPMiddleware)
	}
	handler := httputil.Chain(router, chain...)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	sweeper := bookings.NewSweeper(bookingService, logger)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return healthServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildImageStore selects the image backend and wraps it in the read LRU
func buildImageStore(ctx context.Context, cfg *config.Config) (cars.ImageStore, error) {
	imageBase := cfg.Server.PublicBaseURL + "/images"

	var inner cars.ImageStore
	var err error
	switch cfg.Images.Type {
	case "s3":
		inner, err = cars.NewS3ImageStore(ctx, cars.S3Config{
			Endpoint:     cfg.Images.S3Endpoint,
			Region:       cfg.Images.S3Region,
			Bucket:       cfg.Images.S3Bucket,
			AccessKey:    cfg.Images.S3AccessKey,
			SecretKey:    cfg.Images.S3SecretKey,
			UsePathStyle: cfg.Images.S3UsePathStyle,
			BaseURL:      imageBase,
		})
	default:
		inner, err = cars.NewFilesystemImageStore(cfg.Images.FilesystemDir, imageBase)
	}
	if err != nil {
		return nil, err
	}

	return cars.NewCachedImageStore(inner, cfg.Images.LRUSize)
}
