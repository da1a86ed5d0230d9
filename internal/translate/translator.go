// Package translate wraps the Google Translate mobile page.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/data"
)

// MaxChunkLength is the largest piece of text, in characters, sent in one request.
const MaxChunkLength = 5000

const resultSelector = "div.result-container"

var translationFallbacks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "news_translation_fallbacks_total",
		Help: "Translations that returned the original text after a failure",
	},
	[]string{"target"},
)

func init() {
	prometheus.MustRegister(translationFallbacks)
}

// Translator translates text and degrades to the original text on any failure.
type Translator struct {
	client  *http.Client
	baseURL string
	logger  *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Translator {
	return &Translator{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://translate.google.com/m",
		logger:  logger,
	}
}

// Translate auto-detects the source language and translates text to target.
func (t *Translator) Translate(ctx context.Context, text, target string) string {
	return t.TranslateFrom(ctx, text, "auto", target)
}

// TranslateFrom translates text from source to target. It never fails: on error
// the original text comes back unchanged.
func (t *Translator) TranslateFrom(ctx context.Context, text, source, target string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	var parts []string
	for _, chunk := range data.SplitChunks(text, MaxChunkLength) {
		translated, err := t.translateChunk(ctx, chunk, source, target)
		if err != nil {
			translationFallbacks.WithLabelValues(target).Inc()
			t.logger.Warnw("Translation failed", "source", source, "target", target, "error", err)
			return text
		}
		parts = append(parts, translated)
	}

	return strings.Join(parts, " ")
}

func (t *Translator) translateChunk(ctx context.Context, text, source, target string) (string, error) {
	params := url.Values{}
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse translate page: %w", err)
	}

	result := doc.Find(resultSelector).First()
	if result.Length() == 0 {
		return "", errors.New("no translation in response")
	}

	translated := strings.TrimSpace(result.Text())
	if translated == "" {
		return "", errors.New("empty translation in response")
	}
	return translated, nil
}
