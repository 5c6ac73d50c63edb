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

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/internal/geocode"
	"github.com/iwvelando/auto-loan-calc/internal/rates"
	"github.com/iwvelando/auto-loan-calc/internal/server"
	"github.com/iwvelando/auto-loan-calc/internal/store"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calculator HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath := root.configPath
			if configPath == "" {
				configPath = constants.DefaultServerConfigFile
			}
			cfg, err := server.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			return runServe(cmd.Context(), cfg, root.logLevel)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

func runServe(ctx context.Context, cfg *server.Config, logLevel string) error {
	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	repo, closeRepo, err := openRepository(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeRepo()

	cache, closeCache, err := openCache(ctx, logger, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer closeCache()

	provider := rates.NewProvider(logger, cache)
	if err := provider.Load(ctx); err != nil {
		logger.Warn("could not restore county rates, using defaults",
			zap.String("op", "main.serve"),
			zap.Error(err),
		)
	}
	if cfg.RatesFile != "" {
		if _, err := provider.LoadFile(ctx, cfg.RatesFile); err != nil {
			return err
		}
	}

	var primary geocode.Geocoder
	if !cfg.Geocoder.Disabled {
		nominatim := geocode.NewNominatimClient(logger, cfg.Geocoder.URL, cfg.Geocoder.UserAgent, 0)
		primary = geocode.NewCachingGeocoder(logger, nominatim, cache, cfg.Geocoder.CacheTTL())
	}

	var limiter *server.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = server.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window())
		defer limiter.Stop()
	}

	handler := server.NewHandler(logger,
		server.Deps{
			Repo:     repo,
			Rates:    provider,
			Geocoder: geocode.NewFallbackGeocoder(logger, primary),
		},
		server.Options{
			MaxUploadSize: cfg.UploadSizeBytes(),
			Version:       version,
			Calc:          calculator.Options{},
			Limiter:       limiter,
		},
	)

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("listening on %s", cfg.Address),
			zap.String("op", "main.serve"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
		logger.Info("shutting down server", zap.String("op", "main.serve"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	logger.Info("server exited", zap.String("op", "main.serve"))
	return nil
}

// openRepository uses PostgreSQL when databaseURL is set and an in-memory
// repository otherwise.
func openRepository(ctx context.Context, logger *zap.Logger, databaseURL string) (store.Repository, func(), error) {
	if databaseURL == "" {
		logger.Info("no database configured, records are kept in memory",
			zap.String("op", "main.openRepository"),
		)
		return store.NewMemoryRepository(), func() {}, nil
	}

	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}
	repo := store.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repo, pool.Close, nil
}
