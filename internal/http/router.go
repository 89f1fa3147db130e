// Package http assembles the gin engine from the module handlers.
package http

import (
	"context"
	"net/http"
	"strings"

	householdhandler "agencyhub_backend/internal/household/handler"
	lifecyclehandler "agencyhub_backend/internal/lifecycle/handler"
	uploadhandler "agencyhub_backend/internal/upload/handler"
	"agencyhub_backend/platform/config"
	"agencyhub_backend/platform/httpkit"
	"agencyhub_backend/platform/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HealthChecker verifies a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the wired handlers and infrastructure the router mounts.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Health     HealthChecker
	Uploads    *uploadhandler.Handler
	Lifecycle  *lifecyclehandler.Handler
	Households *householdhandler.Handler
}

// New builds the HTTP engine: middleware, health endpoint, and the /api/v1
// route group.
func New(deps Deps) *gin.Engine {
	if !strings.EqualFold(deps.Config.Env, "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(deps.Logger))

	corsConfig := cors.DefaultConfig()
	if len(deps.Config.CORSAllowedOrigins) == 1 && deps.Config.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.Config.CORSAllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")
	engine.Use(cors.New(corsConfig))

	engine.GET("/healthz", func(c *gin.Context) {
		if err := deps.Health.Ping(c.Request.Context()); err != nil {
			httpkit.Error(c, http.StatusServiceUnavailable, "database unreachable", nil)
			return
		}
		httpkit.OK(c, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	deps.Uploads.RegisterRoutes(api)
	deps.Lifecycle.RegisterRoutes(api)
	deps.Households.RegisterRoutes(api)

	return engine
}
