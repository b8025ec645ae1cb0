package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "cv-creator/internal/adapter/http"
	"cv-creator/internal/app"
	"cv-creator/internal/config"
	"cv-creator/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.Address()),
		slog.String("store_backend", cfg.Store.Backend),
		slog.String("default_locale", cfg.DefaultLocale),
		slog.Duration("autosave_interval", cfg.AutosaveInterval))

	backend, err := app.OpenBackend(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer backend.Close()

	registry := usecase.NewRegistry(app.NewProcessor(cfg), backend, usecase.RegistryConfig{
		Defaults: cfg.SessionDefaults(),
		Debounce: cfg.AutosaveDebounce,
		Interval: cfg.AutosaveInterval,
	})

	srv := fiber.New(fiber.Config{
		BodyLimit:             8 << 20,
		DisableStartupMessage: true,
	})
	httpadapter.NewHandler(registry).Register(srv)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return registry.Run(gCtx) })

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Address()))
		if err := srv.Listen(cfg.Address()); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")
		if err := srv.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped successfully")
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
