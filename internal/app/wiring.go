// Package app builds the shared components both entry points run on.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cv-creator/internal/adapter/repository"
	"cv-creator/internal/config"
	"cv-creator/internal/i18n"
	"cv-creator/internal/infrastructure/migration"
	"cv-creator/internal/usecase"
	"cv-creator/internal/versions"
	infra "cv-creator/pkg/infrastructure"
)

// Backend is a version store backend that holds a connection.
type Backend interface {
	versions.Backend
	Close() error
}

// OpenBackend connects the configured store backend. Postgres gets its
// migrations applied first.
func OpenBackend(ctx context.Context, cfg config.StoreConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return repository.NewMemoryBlobs(), nil
	case config.BackendSQLite:
		b, err := repository.OpenSQLiteBlobs(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BackendPostgres:
		pool, err := infra.NewVersionsPool(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect versions db: %w", err)
		}
		if err := migration.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return repository.NewPostgresBlobs(pool), nil
	case config.BackendRedis:
		client, err := infra.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisBlobs(client), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// NewProcessor wires the PDF printer, its verifier and the optional
// remote label source.
func NewProcessor(cfg *config.Config) *usecase.Processor {
	opts := []usecase.ProcessorOption{usecase.WithPDFVerifier(infra.VerifyPDF)}
	if cfg.LabelsServiceURL != "" {
		src := i18n.NewRemoteSource(&http.Client{Timeout: 90 * time.Second}, cfg.LabelsServiceURL)
		opts = append(opts, usecase.WithLabelSource(src))
		slog.Info("app: remote labels enabled", "url", cfg.LabelsServiceURL)
	}
	return usecase.NewProcessor(infra.NewChromedpRenderer(cfg.ChromePath), opts...)
}
