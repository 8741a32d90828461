package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/shared/config"
	"resume-scorer/internal/shared/metrics"
	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/server/respond"
)

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps lists the handlers mounted under /api/v1. Nil handlers are
// skipped.
type RouterDeps struct {
	Config   config.Config
	Handlers []RouteRegistrar
	// Health reports readiness details. A nil func answers {"ok": true}.
	Health func(ctx context.Context) any
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		var body any = gin.H{"ok": true}
		if deps.Health != nil {
			body = deps.Health(c.Request.Context())
		}
		respond.JSON(c, http.StatusOK, body)
	})
	registerMeRoutes(api)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
