package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/localnerve/ops-portal/internal/config"
	"github.com/localnerve/ops-portal/internal/store"
	"github.com/localnerve/ops-portal/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Store        string            `json:"store"`
	Server       string            `json:"server,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every probe passed.
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

func (r *HealthCheckResult) fail(format string, args ...any) {
	r.Status = "unhealthy"
	msg := fmt.Sprintf(format, args...)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
}

// HealthCheck pings the store and, when serverURL is set, probes the running server.
func HealthCheck(ctx context.Context, cfg *config.Config, s store.Store, serverURL string) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	if err := s.Ping(ctx); err != nil {
		result.Store = "unreachable"
		result.Details["store_error"] = err.Error()
		result.fail("Store ping failed: %v", err)
		slog.Error("Health check failed - store ping", slog.Any("error", err))
	} else {
		result.Store = "ok"
		result.Details["store_type"] = cfg.StoreType
		if cfg.StoreType == config.StoreFile {
			result.Details["data_dir"] = cfg.DataDir
		} else {
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	if serverURL != "" {
		if err := utils.ProbeHTTP(serverURL, 2*time.Second); err != nil {
			result.Server = "unreachable"
			result.Details["server_error"] = err.Error()
			result.fail("Server probe failed: %v", err)
			slog.Error("Health check failed - server probe", slog.Any("error", err))
		} else {
			result.Server = "ok"
			result.Details["server_url"] = serverURL
		}
	}

	if result.Healthy() {
		slog.Info("Health check passed - all systems operational")
	}
	return result
}
