package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/vbonduro/placeoffers/internal/auth"
	"github.com/vbonduro/placeoffers/internal/clock"
	"github.com/vbonduro/placeoffers/internal/config"
	"github.com/vbonduro/placeoffers/internal/db"
	"github.com/vbonduro/placeoffers/internal/imagestore"
	"github.com/vbonduro/placeoffers/internal/imagestore/local"
	"github.com/vbonduro/placeoffers/internal/imagestore/s3store"
	"github.com/vbonduro/placeoffers/internal/logging"
	"github.com/vbonduro/placeoffers/internal/service"
	"github.com/vbonduro/placeoffers/internal/store"
	"github.com/vbonduro/placeoffers/internal/store/pgstore"
	"github.com/vbonduro/placeoffers/internal/store/redisstore"
	"github.com/vbonduro/placeoffers/internal/tracing"
	"github.com/vbonduro/placeoffers/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Env, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPAddr, cfg.ServiceName)
	if err != nil {
		logger.Error("failed to initialize tracing", "endpoint", cfg.OTLPAddr, "error", err)
		return
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()
	if cfg.OTLPAddr != "" {
		logger.Info("exporting traces", "endpoint", cfg.OTLPAddr, "service", cfg.ServiceName)
	}

	places, closeStore, err := newPlaceRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open place store", "backend", cfg.StoreBackend, "error", err)
		return
	}
	defer closeStore()

	images, err := newImageStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize image store", "backend", cfg.ImageBackend, "error", err)
		return
	}

	users := auth.ContextSource{Fallback: cfg.DefaultUserID}
	placeService := service.NewPlaceService(
		places,
		images,
		imagestore.NewThumbnailer(cfg.ThumbnailMaxWidth, cfg.ThumbnailMaxHeight),
		users,
		clock.NewSystem(),
		logger,
	)
	if err := placeService.FetchPlaces(ctx); err != nil {
		logger.Warn("initial place fetch failed", "error", err)
	}

	server := web.NewServer(placeService, users, images, logger).HTTPServer(cfg.ListenAddr)

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ListenAddr, "store", cfg.StoreBackend, "images", cfg.ImageBackend)
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

// newPlaceRepository opens the configured backend. The returned func
// releases it.
func newPlaceRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.PlaceRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := pgstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewPlaceStore(pool), pool.Close, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return redisstore.NewPlaceStore(client), func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close redis client", "error", err)
			}
		}, nil

	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPlaceStore(database), func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}, nil
	}
}

func newImageStore(cfg *config.Config, logger *slog.Logger) (imagestore.Store, error) {
	if cfg.ImageBackend == config.ImagesS3 {
		logger.Info("using s3 image backend", "bucket", cfg.S3.Bucket, "endpoint", cfg.S3.Endpoint)
		return s3store.New(s3store.Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicURL:       cfg.S3.PublicURL,
		}, logger), nil
	}
	logger.Info("using local image backend", "path", cfg.ImageLocalPath)
	return local.NewLocalImageStore(cfg.ImageLocalPath, cfg.ImageBaseURL)
}
