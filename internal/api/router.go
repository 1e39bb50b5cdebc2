// internal/api/router.go
package api

import (
	"strings"
	"time"

	"article-pipeline/internal/common/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	ServiceName  string
	JWTSecret    string
	AllowedRoles []string
	CORSOrigins  []string

	Generator Generator
	// Usage and History are optional; their routes are only registered
	// when set.
	Usage   UsageReader
	History HistoryReader
	Checks  map[string]HealthCheck
}

func NewRouter(cfg RouterConfig, log logger.Logger) *gin.Engine {
	log = log.With(map[string]interface{}{"component": "http"})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(corsMiddleware(cfg.CORSOrigins))
	router.Use(RequestLogger(log))

	h := &Handler{
		generator: cfg.Generator,
		usage:     cfg.Usage,
		history:   cfg.History,
		checks:    cfg.Checks,
		logger:    log,
	}

	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/generate-article")
	api.Use(RequireAuth(cfg.JWTSecret))
	{
		api.POST("", h.GenerateArticle)

		editors := api.Group("")
		editors.Use(RequireRole(cfg.AllowedRoles))
		if cfg.Usage != nil {
			editors.GET("/usage", h.Usage)
		}
		if cfg.History != nil {
			editors.GET("/history", h.History)
		}
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return cors.New(config)
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := map[string]interface{}{
			"method":     strings.ToUpper(c.Request.Method),
			"path":       path,
			"status":     status,
			"durationMs": time.Since(start).Milliseconds(),
		}
		if p := principalFrom(c); p.UserID != "" {
			fields["userId"] = p.UserID
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields)
		case status >= 400:
			log.Warn("HTTP request", fields)
		default:
			log.Info("HTTP request", fields)
		}
	}
}
