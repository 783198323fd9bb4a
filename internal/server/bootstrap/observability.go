package bootstrap

import (
	"context"
	"time"

	"userdata/internal/logging"
	"userdata/internal/observability"
)

// InitObservability initializes observability from configPath and returns a
// cleanup hook. On error the server runs without it.
func InitObservability(configPath string, logger logging.Logger) (*observability.Observability, func(), error) {
	obs, err := observability.New(configPath)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(ctx); err != nil {
			logging.OrNop(logger).Warn("Observability shutdown error: %v", err)
		}
	}
	return obs, cleanup, nil
}
