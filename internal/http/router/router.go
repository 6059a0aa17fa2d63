package router

import (
	"context"
	"net/http"
	"time"

	apphttp "telemarketing_backend/internal/http"
	"telemarketing_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const healthTimeout = 2 * time.Second

// New builds the gin engine: shared middleware, health endpoint, and the routes
// of every module in app.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(cors.New(corsConfig(app.Config)))

	globalLimiter := httpkit.NewIPRateLimiter(rate.Limit(20), 40, app.Logger)
	engine.Use(globalLimiter.RateLimit())

	engine.GET("/api/health", healthHandler(app))

	protected := engine.Group("/api/v1")
	protected.Use(httpkit.AuthRequired(app.Config), httpkit.RequestContext())

	routerCtx := &apphttp.RouterContext{
		Protected:         protected,
		UploadRateLimiter: httpkit.NewUploadRateLimiter(app.Logger),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("module registered", "module", module.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return corsCfg
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		results, healthy := app.CheckHealth(ctx)
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": results})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": results})
	}
}
