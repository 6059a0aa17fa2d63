// Package http wires domain modules into the gin router.
package http

import (
	"context"

	"telemarketing_backend/internal/events"
	"telemarketing_backend/platform/config"
	"telemarketing_backend/platform/logger"
)

// RouterConfig is the part of the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is a dependency pinged by GET /api/health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled by cmd/api and handed to router.New.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   map[string]HealthChecker
	EventBus events.Bus
	Modules  []Module
}

// CheckHealth pings every dependency and reports each as "ok" or "down".
// healthy is false when any is down.
func (a *App) CheckHealth(ctx context.Context) (results map[string]string, healthy bool) {
	results = make(map[string]string, len(a.Health))
	healthy = true
	for name, check := range a.Health {
		if err := check.Ping(ctx); err != nil {
			a.Logger.Warn("health check failed", "dependency", name, "error", err)
			results[name] = "down"
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}
