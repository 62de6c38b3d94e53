package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cr625/proethica-sub007/internal/infrastructure/monitoring/logging"
	"github.com/cr625/proethica-sub007/internal/interfaces/http/handlers"
	"github.com/cr625/proethica-sub007/internal/interfaces/http/middleware"
)

// RouterConfig aggregates everything the route tree needs.
type RouterConfig struct {
	RelevanceHandler *handlers.RelevanceHandler
	CitationHandler  *handlers.CitationHandler
	HealthHandler    *handlers.HealthHandler

	Logger  logging.Logger
	Metrics middleware.HTTPObserver

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string
	// MetricsPath mounts the Prometheus exposition endpoint; empty disables it.
	MetricsPath string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, "/healthz", "/readyz", cfg.MetricsPath))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsPath != "" {
		r.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api/v1")
	if h := cfg.RelevanceHandler; h != nil {
		api.POST("/relevance/assess", h.AssessPair)
		api.POST("/documents/:id/assess", h.AssessDocument)
		api.GET("/sections/:id/assessments", h.SectionAssessments)
	}
	if h := cfg.CitationHandler; h != nil {
		api.POST("/citations/find", h.FindCitations)
		api.POST("/citations/validate", h.ValidateCitations)
		api.POST("/citations/extract", h.ExtractCitations)
	}

	return r
}
