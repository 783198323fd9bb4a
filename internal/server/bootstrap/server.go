package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"userdata/internal/config"
	"userdata/internal/logging"
	"userdata/internal/observability"
	serverHTTP "userdata/internal/server/http"
	"userdata/internal/userdata"
	"userdata/internal/users"
)

// Run starts the HTTP server and blocks until ctx is canceled or the server
// fails.
func Run(ctx context.Context, cfg config.Config, observabilityConfigPath string) error {
	logger := logging.NewComponentLogger("Main")
	degraded := NewDegraded()

	var (
		obs               *observability.Observability
		stopObservability func()
		registry          users.Registry
		storage           *userdata.Storage
	)
	defer func() {
		if stopObservability != nil {
			stopObservability()
		}
	}()

	stages := []Stage{
		{
			Name: "observability", Optional: true,
			Start: func() error {
				var cleanup func()
				var err error
				obs, cleanup, err = InitObservability(observabilityConfigPath, logger)
				if err != nil {
					return err
				}
				logger = logging.FromObservability(obs.Logger, "Main")
				stopObservability = cleanup
				return nil
			},
		},
		{
			Name: "registry",
			Start: func() error {
				var err error
				registry, err = users.Initialize(cfg.UserDirectory, cfg.MultiUser, logger)
				return err
			},
		},
		{
			Name: "storage",
			Start: func() error {
				var err error
				storage, err = userdata.New(cfg.UserDirectory)
				return err
			},
		},
	}

	if err := RunStages(stages, degraded, logger); err != nil {
		return err
	}

	LogServerConfiguration(logger, cfg, storage, registry)
	if names := degraded.Names(); len(names) > 0 {
		logger.Warn("[Bootstrap] Server starting without: %v", names)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := serverHTTP.NewRouter(serverHTTP.RouterDeps{
		Storage:        storage,
		Registry:       registry,
		Observability:  obs,
		Logger:         logger,
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.AllowedOrigins,
		Degraded:       degraded,
		StartedAt:      time.Now(),
	})

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return Serve(ctx, server, cfg.ShutdownTimeout, logger)
}

// Serve runs server until ctx is done, then shuts it down within timeout.
func Serve(ctx context.Context, server *http.Server, timeout time.Duration, logger logging.Logger) error {
	logger = logging.OrNop(logger)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// LogServerConfiguration logs the effective settings at startup.
func LogServerConfiguration(logger logging.Logger, cfg config.Config, storage *userdata.Storage, registry users.Registry) {
	logger = logging.OrNop(logger)
	mode := "single-user"
	if cfg.MultiUser {
		mode = "multi-user"
	}
	logger.Info("=== Server Configuration ===")
	logger.Info("Listen: %s", cfg.Listen)
	logger.Info("Environment: %s", cfg.Environment)
	logger.Info("User directory: %s", storage.Root())
	logger.Info("Mode: %s (%d users)", mode, registry.Len())
	if cfg.ConfigFile != "" {
		logger.Info("Config file: %s", cfg.ConfigFile)
	}
	if len(cfg.AllowedOrigins) > 0 {
		logger.Info("Allowed origins: %v", cfg.AllowedOrigins)
	}
	logger.Info("===========================")
}
