// Package api serves the read-only status endpoints.
package api

import (
	"fmt"
	"net/http"

	"wanwatch/internal/api/middleware"
	"wanwatch/internal/api/response"
	av1 "wanwatch/internal/api/v1"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router handles all routing logic
type Router struct {
	engine *gin.Engine
	api    *av1.API
	logger *zap.Logger
}

// NewRouter creates and configures a new router
func NewRouter(monitor av1.StatusProvider, debug bool, logger *zap.Logger) *Router {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		engine: gin.New(),
		api:    av1.NewAPI(monitor, logger),
		logger: logger,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// setupMiddleware configures all middleware
func (r *Router) setupMiddleware() {
	m := middleware.New(r.logger)

	r.engine.Use(m.RequestID())
	r.engine.Use(m.Logger())
	r.engine.Use(m.Recovery())
	r.engine.Use(m.Secure())
	r.engine.Use(m.NoCache())
}

// setupRoutes configures the root health route and the v1 group
func (r *Router) setupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		health := r.api.Health()
		code := http.StatusOK
		if !health.Healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"healthy": health.Healthy})
	})

	r.api.RegisterRoutes(r.engine.Group("/api/v1"))

	r.engine.NoRoute(func(c *gin.Context) {
		response.New(c, r.logger).NotFound(fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
}
