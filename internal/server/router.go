package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentstation/fieldeval/internal/server/handlers"
	"github.com/agentstation/fieldeval/internal/server/middleware"
)

// setupRouter creates the gin engine with routes and middleware.
func (s *Server) setupRouter() *gin.Engine {
	if s.config.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(s.logger))
	if s.config.CORSEnabled {
		router.Use(middleware.CORS(s.config.CORSOrigins))
	}
	if s.config.RateLimit > 0 {
		router.Use(middleware.RateLimit(middleware.NewRateLimiter(s.config.RateLimit), s.logger))
	}
	if s.config.AuthEnabled {
		auth := middleware.DefaultAuthConfig()
		auth.APIKey = s.config.APIKey
		auth.HeaderName = s.config.AuthHeader
		auth.PublicPaths = append(auth.PublicPaths, s.config.PathPrefix+"/health")
		router.Use(middleware.Auth(auth, s.logger))
	}

	h := handlers.New(s.reconciler, s.cache, s.logger,
		handlers.WithRuns(s.runs),
		handlers.WithVersion(s.version),
		handlers.WithMaxBodyBytes(s.config.MaxBodyBytes),
		handlers.WithStartTime(s.startTime),
	)

	router.GET("/health", h.HandleHealth)
	router.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	v1 := router.Group(s.config.PathPrefix)
	{
		v1.GET("/health", h.HandleHealth)
		v1.POST("/reconcile", h.HandleReconcile)
		v1.GET("/stats", h.HandleStats)
		v1.GET("/runs", h.HandleListRuns)
		v1.GET("/runs/:id", h.HandleGetRun)
	}
	return router
}
