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

	"go.uber.org/zap"

	"github.com/kailas-cloud/schoolkeuze/internal/config"
	dbRedis "github.com/kailas-cloud/schoolkeuze/internal/db/redis"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/schoolkeuze/internal/logger"
	"github.com/kailas-cloud/schoolkeuze/internal/metrics"
	"github.com/kailas-cloud/schoolkeuze/internal/repository/dataset"
	"github.com/kailas-cloud/schoolkeuze/internal/repository/geocache"
	schoolrepo "github.com/kailas-cloud/schoolkeuze/internal/repository/school"
	chiTransport "github.com/kailas-cloud/schoolkeuze/internal/transport/chi"
	"github.com/kailas-cloud/schoolkeuze/internal/transport/nominatim"
	geocodeuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/geocode"
	healthuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/health"
	schooluc "github.com/kailas-cloud/schoolkeuze/internal/usecase/school"
	searchuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/search"
	"github.com/kailas-cloud/schoolkeuze/internal/version"
)

// catalog is what both providers offer the API: full scans, counts and id lookups.
type catalog interface {
	searchuc.Provider
	schooluc.Repository
	healthuc.Catalog
}

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting schoolkeuze API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("dataset", cfg.Dataset.Path),
	)

	metrics.RegisterSearchMetrics()
	metrics.RegisterGeocodeMetrics()

	policy, err := level.ParsePolicy(cfg.Search.LevelPolicy)
	if err != nil {
		logger.Fatal("Invalid level policy", zap.Error(err))
	}

	ctx := context.Background()

	// Pass nil interfaces (not typed nil pointers) when Redis is not configured.
	var (
		schools  catalog
		pinger   healthuc.DBPinger
		geoCache *dbRedis.Store
	)
	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")

		repo := schoolrepo.New(store, cfg.Storage.KeyPrefix)
		if err := repo.EnsureIndex(ctx); err != nil {
			logger.Fatal("Failed to ensure school index", zap.Error(err))
		}
		schools, pinger, geoCache = repo, store, store
	default:
		schools = dataset.NewCache(cfg.Dataset.Path, cfg.Dataset.DefaultCity)
	}

	geocodeSvc := geocodeuc.New(buildGeocoder(cfg.Geocoder, geoCache, cfg.Storage.KeyPrefix, logger))

	searchSvc := searchuc.New(searchuc.Instrument(schools, logger), geocodeSvc, searchuc.Config{
		Policy:          policy,
		FetchMultiplier: cfg.Search.FetchMultiplier,
		MaxCandidates:   cfg.Search.MaxCandidates,
	})
	schoolSvc := schooluc.New(schools)
	healthSvc := healthuc.New(pinger, schools)

	server := chiTransport.NewServer(
		searchSvc, schoolSvc, geocodeSvc, healthSvc,
		query.Limits{DefaultTake: cfg.Search.DefaultTake, MaxTake: cfg.Search.MaxTake},
		logger,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(chiTransport.Options{APIKeys: cfg.Auth.APIKeys}),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildGeocoder assembles Nominatim -> Redis cache. Returns a nil interface when disabled.
func buildGeocoder(
	cfg config.GeocoderConfig,
	store *dbRedis.Store,
	prefix string,
	logger *zap.Logger,
) geocodeuc.Geocoder {
	if !cfg.Enabled {
		logger.Info("Geocoding disabled")
		return nil
	}

	var g geocodeuc.Geocoder = nominatim.New(&nominatim.Config{
		BaseURL:           cfg.BaseURL,
		UserAgent:         cfg.UserAgent,
		Suffix:            cfg.Suffix,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Timeout:           time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:            logger,
	})
	if store != nil {
		g = geocache.New(g, store, prefix, time.Duration(cfg.CacheTTLHours)*time.Hour, metrics.GeocodeCacheTotal, logger)
	}
	return g
}
