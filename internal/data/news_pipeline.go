package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Prometheus metrics
var (
	searchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_search_requests_total",
			Help: "Total number of search queries issued per provider",
		},
		[]string{"provider"},
	)
	searchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_search_errors_total",
			Help: "Total number of failed search queries per provider",
		},
		[]string{"provider"},
	)
	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "news_search_duration_seconds",
			Help:    "Duration of search queries per provider",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 0.1s to ~12.8s
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(searchRequests, searchErrors, searchDuration)
}

// ArticleRef is a discovered article before extraction. Link is the dedup key.
type ArticleRef struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Searcher runs one search query and returns the results it could parse.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]ArticleRef, error)
}

// Discoverer runs several query variants for a company and collects unique articles.
type Discoverer struct {
	searcher    Searcher
	maxArticles int
	queryDelay  time.Duration
	logger      *zap.SugaredLogger
}

// NewDiscoverer creates a Discoverer. maxArticles is clamped to [1, 10].
func NewDiscoverer(searcher Searcher, maxArticles int, queryDelay time.Duration, logger *zap.SugaredLogger) *Discoverer {
	if maxArticles <= 0 || maxArticles > 10 {
		maxArticles = 10
	}
	return &Discoverer{
		searcher:    searcher,
		maxArticles: maxArticles,
		queryDelay:  queryDelay,
		logger:      logger,
	}
}

// BuildQueries returns the ordered query variants for a company.
func BuildQueries(company string) []string {
	return []string{
		fmt.Sprintf("%s news", company),
		fmt.Sprintf("latest %s news", company),
		fmt.Sprintf("%s breaking news", company),
	}
}

// Discover searches for recent articles about company. A failing query is logged
// and contributes nothing; it never aborts the remaining queries.
func (d *Discoverer) Discover(ctx context.Context, company string) []ArticleRef {
	d.logger.Infow("Starting article discovery", "company", company, "provider", d.searcher.Name())

	name := d.searcher.Name()
	articles := make([]ArticleRef, 0, d.maxArticles)
	seen := make(map[string]struct{})

	for i, query := range BuildQueries(company) {
		if len(articles) >= d.maxArticles {
			break
		}

		if i > 0 && !wait(ctx, d.queryDelay) {
			d.logger.Warnw("Discovery interrupted", "company", company, "error", ctx.Err())
			break
		}

		start := time.Now()
		searchRequests.WithLabelValues(name).Inc()

		results, err := d.searcher.Search(ctx, query)
		duration := time.Since(start).Seconds()
		searchDuration.WithLabelValues(name).Observe(duration)

		if err != nil {
			searchErrors.WithLabelValues(name).Inc()
			d.logger.Errorw("Error fetching search results", "provider", name, "query", query, "error", err)
			continue
		}

		added := 0
		for _, r := range results {
			if r.Link == "" {
				continue
			}
			r.Title = strings.TrimSpace(r.Title)
			if _, found := seen[r.Link]; found {
				continue
			}
			seen[r.Link] = struct{}{}
			articles = append(articles, r)
			added++

			if len(articles) >= d.maxArticles {
				break
			}
		}

		d.logger.Infow("Search query complete", "provider", name, "query", query, "results", len(results), "added", added, "duration_sec", duration)
	}

	d.logger.Infow("Discovery complete", "company", company, "unique_articles_count", len(articles))

	return articles
}

// wait sleeps for d unless ctx is done first. It reports whether the full delay elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
