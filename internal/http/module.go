package http

import (
	"telemarketing_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what modules may mount routes on.
type RouterContext struct {
	// Protected is /api/v1 behind authentication.
	Protected *gin.RouterGroup
	// UploadRateLimiter throttles file uploads per client.
	UploadRateLimiter *httpkit.UploadRateLimiter
}
