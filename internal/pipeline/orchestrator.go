// Package pipeline runs discovery and the per-article processing chain for one request.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/data"
	"github.com/Bhavik2205/news-sentiment/internal/model"
	"github.com/Bhavik2205/news-sentiment/internal/speech"
)

var (
	// ErrMissingCompany is returned before any work is done when the company name is blank.
	ErrMissingCompany = errors.New("company name is required")
	// ErrNoArticles means discovery found nothing for the company.
	ErrNoArticles = errors.New("no news articles found")
)

const (
	OutcomeProcessed   = "processed"
	OutcomeNoContent   = "no_content"
	OutcomeNoScore     = "no_score"
	OutcomeAudioFailed = "audio_failed"
)

var articleOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "news_articles_processed_total",
		Help: "Per-article pipeline outcomes",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(articleOutcomes)
}

type Discoverer interface {
	Discover(ctx context.Context, company string) []data.ArticleRef
}

type Extractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) model.Summary
}

type Scorer interface {
	Score(ctx context.Context, text string) (model.SentimentResult, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang, filename string) (string, error)
}

// ProgressFunc is told about each article before it is processed. index is 1-based.
type ProgressFunc func(index, total int, ref data.ArticleRef)

// ProcessedArticle is one article that made it through extraction and scoring.
type ProcessedArticle struct {
	Title     string
	Link      string
	Summary   string
	Sentiment model.SentimentResult
	// AudioFile is the file name inside the static-assets directory, empty when synthesis failed.
	AudioFile string
}

// RequestResult is everything produced for one company.
type RequestResult struct {
	RequestID string
	// AverageSentiment is nil when no article survived.
	AverageSentiment *float64
	Articles         []ProcessedArticle
}

// Options selects the languages used along the chain.
type Options struct {
	ProcessLanguage string
	AudioLanguage   string
}

type Orchestrator struct {
	discoverer  Discoverer
	extractor   Extractor
	translator  Translator
	summarizer  Summarizer
	scorer      Scorer
	synthesizer Synthesizer
	opts        Options
	logger      *zap.SugaredLogger
	newID       func() string
}

func NewOrchestrator(
	discoverer Discoverer,
	extractor Extractor,
	translator Translator,
	summarizer Summarizer,
	scorer Scorer,
	synthesizer Synthesizer,
	opts Options,
	logger *zap.SugaredLogger,
) *Orchestrator {
	if opts.ProcessLanguage == "" {
		opts.ProcessLanguage = "en"
	}
	if opts.AudioLanguage == "" {
		opts.AudioLanguage = "hi"
	}

	return &Orchestrator{
		discoverer:  discoverer,
		extractor:   extractor,
		translator:  translator,
		summarizer:  summarizer,
		scorer:      scorer,
		synthesizer: synthesizer,
		opts:        opts,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// Run discovers articles for company and processes them one at a time in discovery order.
// Articles that yield no content or no score are dropped; a failed synthesis keeps the
// article with no audio. progress may be nil.
func (o *Orchestrator) Run(ctx context.Context, company string, progress ProgressFunc) (RequestResult, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return RequestResult{}, ErrMissingCompany
	}

	refs := o.discoverer.Discover(ctx, company)
	if len(refs) == 0 {
		o.logger.Warnw("No articles discovered", "company", company)
		return RequestResult{}, ErrNoArticles
	}

	result := RequestResult{RequestID: o.newID()}
	o.logger.Infow("Processing articles", "company", company, "request_id", result.RequestID, "count", len(refs))

	total := 0
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return RequestResult{}, fmt.Errorf("request cancelled after %d articles: %w", i, err)
		}

		if progress != nil {
			progress(i+1, len(refs), ref)
		}

		article, ok := o.process(ctx, result.RequestID, i+1, ref)
		if !ok {
			continue
		}

		result.Articles = append(result.Articles, article)
		total += article.Sentiment.Score
	}

	if n := len(result.Articles); n > 0 {
		avg := math.Round(float64(total)/float64(n)*100) / 100
		result.AverageSentiment = &avg
	}

	o.logger.Infow("Request complete",
		"company", company,
		"request_id", result.RequestID,
		"discovered", len(refs),
		"processed", len(result.Articles),
	)

	return result, nil
}

func (o *Orchestrator) process(ctx context.Context, requestID string, index int, ref data.ArticleRef) (ProcessedArticle, bool) {
	raw, err := o.extractor.Extract(ctx, ref.Link)
	if err != nil {
		articleOutcomes.WithLabelValues(OutcomeNoContent).Inc()
		o.logger.Warnw("Skipping article", "index", index, "url", ref.Link, "error", err)
		return ProcessedArticle{}, false
	}

	translated := o.translator.Translate(ctx, raw, o.opts.ProcessLanguage)
	summary := o.summarizer.Summarize(ctx, translated)

	sentiment, err := o.scorer.Score(ctx, summary.Text)
	if err != nil {
		articleOutcomes.WithLabelValues(OutcomeNoScore).Inc()
		o.logger.Warnw("Skipping article", "index", index, "url", ref.Link, "error", err)
		return ProcessedArticle{}, false
	}

	article := ProcessedArticle{
		Title:     ref.Title,
		Link:      ref.Link,
		Summary:   summary.Text,
		Sentiment: sentiment,
	}

	spoken := o.translator.Translate(ctx, summary.Text, o.opts.AudioLanguage)
	filename := speech.FileName(requestID, index)
	if _, err := o.synthesizer.Synthesize(ctx, spoken, o.opts.AudioLanguage, filename); err != nil {
		articleOutcomes.WithLabelValues(OutcomeAudioFailed).Inc()
		o.logger.Warnw("Audio unavailable", "index", index, "url", ref.Link, "error", err)
	} else {
		article.AudioFile = filename
	}

	articleOutcomes.WithLabelValues(OutcomeProcessed).Inc()
	return article, true
}
