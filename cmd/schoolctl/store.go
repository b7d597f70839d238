package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/schoolkeuze/internal/config"
	dbRedis "github.com/kailas-cloud/schoolkeuze/internal/db/redis"
	"github.com/kailas-cloud/schoolkeuze/internal/repository/dataset"
	schoolrepo "github.com/kailas-cloud/schoolkeuze/internal/repository/school"
	searchuc "github.com/kailas-cloud/schoolkeuze/internal/usecase/search"
)

func datasetPath(override string) string {
	if override != "" {
		return override
	}
	return cfg.Dataset.Path
}

func connectRedis(ctx context.Context, c config.DatabaseConfig) (*dbRedis.Store, error) {
	if len(c.Addrs) == 0 {
		return nil, fmt.Errorf("database.addrs is required")
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    c.Addrs,
		Username: c.Username,
		Password: c.Password,
		DB:       c.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(c.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// openProvider returns the configured school provider and a cleanup func.
func openProvider(ctx context.Context, path string) (searchuc.Provider, func(), error) {
	if cfg.Database.Driver != config.DriverRedis {
		return dataset.NewCache(datasetPath(path), cfg.Dataset.DefaultCity), func() {}, nil
	}
	store, err := connectRedis(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return schoolrepo.New(store, cfg.Storage.KeyPrefix), store.Close, nil
}
