package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"contact-radar/internal/config"
	"contact-radar/internal/directory"
	"contact-radar/internal/jobs"
	"contact-radar/internal/logging"
	"contact-radar/internal/metrics"
)

const sessionName = "radar"

type Server struct {
	cfg     *config.Config
	dir     *directory.Directory
	jobs    *jobs.Store
	runner  *jobs.Runner
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(cfg *config.Config, dir *directory.Directory, store *jobs.Store, runner *jobs.Runner, m *metrics.Metrics, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		dir:     dir,
		jobs:    store,
		runner:  runner,
		metrics: m,
		logger:  logger,
	}
}

// Router wires every route; the caller owns the listener.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(s.logger))

	store := cookie.NewStore([]byte(s.cfg.Server.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 86400})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	if s.cfg.Server.RateLimitRPS > 0 {
		api.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst)))
	}
	{
		api.GET("/stats", s.stats)

		api.GET("/contacts", s.listContacts)
		api.GET("/contacts/grouped", s.groupedContacts)
		api.POST("/contacts", s.createContact)
		api.POST("/contacts/check-duplicate", s.checkDuplicate)
		api.GET("/contacts/:id", s.getContact)
		api.POST("/contacts/:id/favorite", s.setFavorite)

		api.GET("/organizations", s.listOrganizations)

		api.POST("/location", s.setLocation)
		api.GET("/nearest", s.nearest)
		api.GET("/nearby", s.nearby)

		api.POST("/jobs", s.startJob)
		api.GET("/jobs/:id", s.jobStatus)
		api.GET("/jobs/:id/logs", s.jobLogs)
		api.POST("/jobs/:id/cancel", s.cancelJob)
		api.GET("/jobs/:id/download", s.downloadJob)
	}
	return r
}

func rateLimit(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
