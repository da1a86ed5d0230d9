package model

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/data"
)

const (
	// MaxSummaryInput is the longest text, in characters, handed to a summarization model.
	MaxSummaryInput = 1024

	MinSummaryLength = 50
	MaxSummaryLength = 150
)

var summaryFallbacks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "news_summary_fallbacks_total",
		Help: "Summaries replaced by the truncated input after a provider failure",
	},
	[]string{"provider"},
)

func init() {
	prometheus.MustRegister(summaryFallbacks)
}

// SummaryProvider produces an abstractive summary of English text.
type SummaryProvider interface {
	Name() string
	Summarize(ctx context.Context, text string) (string, error)
}

// Summary is the outcome of summarizing one article.
type Summary struct {
	// Input is the text actually sent to the provider, after truncation.
	Input string
	Text  string
	// Degraded is set when the provider failed and Text is Input.
	Degraded bool
}

// Summarizer truncates input and falls back to the input itself when the provider fails.
type Summarizer struct {
	provider SummaryProvider
	logger   *zap.SugaredLogger
}

func NewSummarizer(provider SummaryProvider, logger *zap.SugaredLogger) *Summarizer {
	return &Summarizer{provider: provider, logger: logger}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) Summary {
	input := data.TruncateRunes(text, MaxSummaryInput)

	summary, err := s.provider.Summarize(ctx, input)
	if err != nil || summary == "" {
		summaryFallbacks.WithLabelValues(s.provider.Name()).Inc()
		s.logger.Warnw("Summarization failed, using truncated text", "provider", s.provider.Name(), "error", err)
		return Summary{Input: input, Text: input, Degraded: true}
	}

	return Summary{Input: input, Text: summary}
}
