// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/api"
	"github.com/Bhavik2205/news-sentiment/internal/pipeline"
)

// Runner processes the news for a company.
type Runner interface {
	Run(ctx context.Context, company string, progress pipeline.ProgressFunc) (pipeline.RequestResult, error)
}

type NewsHandler struct {
	runner Runner
	logger *zap.SugaredLogger
}

func NewNewsHandler(runner Runner, logger *zap.SugaredLogger) *NewsHandler {
	return &NewsHandler{runner: runner, logger: logger}
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	company := strings.TrimSpace(c.Query("company"))
	if company == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Company name is required"})
		return
	}

	res, err := h.runner.Run(c.Request.Context(), company, nil)
	switch {
	case errors.Is(err, pipeline.ErrNoArticles):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No news articles found"})
		return
	case err != nil:
		h.logger.Errorw("News request failed", "company", company, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to process news"})
		return
	}

	c.JSON(http.StatusOK, api.FromResult(res))
}

func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Options configures the router.
type Options struct {
	StaticDir      string
	AllowedOrigins []string
}

// NewRouter wires /news, /static, /health and /metrics.
func NewRouter(runner Runner, opts Options, logger *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if len(opts.AllowedOrigins) > 0 {
		logger.Infow("CORS enabled", "origins", opts.AllowedOrigins)
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	news := NewNewsHandler(runner, logger)
	r.GET("/news", news.GetNews)
	r.GET("/health", GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(strings.TrimSuffix(api.StaticPrefix, "/"), opts.StaticDir)

	return r
}
