// Package ui serves the interactive form for looking up a company's news.
package ui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/api"
	"github.com/Bhavik2205/news-sentiment/internal/data"
	"github.com/Bhavik2205/news-sentiment/internal/pipeline"
)

//go:embed templates/index.html
var templates embed.FS

const (
	msgMissingCompany = "Please enter a company name."
	msgNoArticles     = "No news articles found for this company."
	msgNoneProcessed  = "No valid articles could be processed"
)

// Source produces the news for a company, either in-process or from a remote endpoint.
type Source interface {
	News(ctx context.Context, company string, progress pipeline.ProgressFunc) (api.NewsResponse, error)
}

type Runner interface {
	Run(ctx context.Context, company string, progress pipeline.ProgressFunc) (pipeline.RequestResult, error)
}

// LocalSource runs the pipeline in this process.
type LocalSource struct {
	runner Runner
}

func NewLocalSource(runner Runner) *LocalSource {
	return &LocalSource{runner: runner}
}

func (s *LocalSource) News(ctx context.Context, company string, progress pipeline.ProgressFunc) (api.NewsResponse, error) {
	res, err := s.runner.Run(ctx, company, progress)
	if err != nil {
		return api.NewsResponse{}, err
	}
	return api.FromResult(res), nil
}

// RemoteSource calls GET /news on a backend and makes audio links absolute.
type RemoteSource struct {
	client *api.Client
}

func NewRemoteSource(client *api.Client) *RemoteSource {
	return &RemoteSource{client: client}
}

// News ignores progress; the backend reports nothing until it is done.
func (s *RemoteSource) News(ctx context.Context, company string, _ pipeline.ProgressFunc) (api.NewsResponse, error) {
	news, err := s.client.FetchNews(ctx, company)
	if err != nil {
		return api.NewsResponse{}, err
	}
	for i := range news.Articles {
		if a := news.Articles[i].Audio; a != nil && strings.HasPrefix(*a, "/") {
			abs := s.client.BaseURL() + *a
			news.Articles[i].Audio = &abs
		}
	}
	return news, nil
}

type articleView struct {
	api.Article
	AudioURL string
}

type page struct {
	Company   string
	Debug     bool
	Warning   string
	Error     string
	DebugInfo []string
	Progress  []string
	Average   string
	Articles  []articleView
}

type Handler struct {
	source    Source
	staticDir string
	logger    *zap.SugaredLogger
}

func NewHandler(source Source, staticDir string, logger *zap.SugaredLogger) *Handler {
	return &Handler{source: source, staticDir: staticDir, logger: logger}
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", page{})
}

func (h *Handler) Submit(c *gin.Context) {
	p := page{
		Company: strings.TrimSpace(c.PostForm("company")),
		Debug:   c.PostForm("debug") != "",
	}

	if p.Company == "" {
		p.Warning = msgMissingCompany
		c.HTML(http.StatusOK, "index.html", p)
		return
	}

	progress := func(index, total int, ref data.ArticleRef) {
		p.Progress = append(p.Progress, fmt.Sprintf("Processed article %d/%d", index, total))
		if p.Debug {
			h.logger.Debugw("Processing article", "company", p.Company, "index", index, "total", total, "url", ref.Link)
		}
	}

	news, err := h.source.News(c.Request.Context(), p.Company, progress)
	switch {
	case errors.Is(err, pipeline.ErrNoArticles):
		p.Warning = msgNoArticles
	case err != nil:
		h.logger.Errorw("News lookup failed", "company", p.Company, "error", err)
		p.Error = err.Error()
		if p.Debug {
			p.DebugInfo = h.debugInfo(err)
		}
	case len(news.Articles) == 0:
		p.Warning = msgNoneProcessed
	default:
		if news.AverageSentiment != nil {
			p.Average = strconv.FormatFloat(*news.AverageSentiment, 'f', -1, 64)
		}
		for _, a := range news.Articles {
			v := articleView{Article: a}
			if a.Audio != nil {
				v.AudioURL = *a.Audio
			}
			p.Articles = append(p.Articles, v)
		}
	}

	c.HTML(http.StatusOK, "index.html", p)
}

func (h *Handler) debugInfo(err error) []string {
	info := []string{fmt.Sprintf("%+v", err)}

	if wd, wdErr := os.Getwd(); wdErr == nil {
		info = append(info, "Current directory: "+wd)
	}

	entries, dirErr := os.ReadDir(h.staticDir)
	if dirErr != nil {
		return append(info, "Static files: "+dirErr.Error())
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return append(info, "Static files: "+strings.Join(names, ", "))
}

// NewRouter serves the form and, when serveStatic is set, the generated audio.
func NewRouter(h *Handler, serveStatic bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.SetHTMLTemplate(template.Must(template.ParseFS(templates, "templates/index.html")))

	r.GET("/", h.Index)
	r.POST("/", h.Submit)
	if serveStatic {
		r.Static(strings.TrimSuffix(api.StaticPrefix, "/"), h.staticDir)
	}
	return r
}
