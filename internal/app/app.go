// Package app assembles the pipeline from configuration for the binaries.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/config"
	"github.com/Bhavik2205/news-sentiment/internal/data"
	"github.com/Bhavik2205/news-sentiment/internal/model"
	"github.com/Bhavik2205/news-sentiment/internal/pipeline"
	"github.com/Bhavik2205/news-sentiment/internal/speech"
	"github.com/Bhavik2205/news-sentiment/internal/translate"
)

// Pipeline is a ready orchestrator plus the resources it holds.
type Pipeline struct {
	Orchestrator *pipeline.Orchestrator
	Store        *speech.Store
	closers      []func() error
}

// Close releases model sessions and clients.
func (p *Pipeline) Close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build loads every model and client once. The result is shared by all requests.
func Build(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Pipeline, error) {
	if err := cfg.ValidatePipeline(); err != nil {
		return nil, err
	}

	p := &Pipeline{}

	client := data.NewHTTPClient()

	var searcher data.Searcher
	switch cfg.Search.Provider {
	case "rss":
		searcher = data.NewRSSSearcher(client)
	default:
		searcher = data.NewGoogleSearcher(client)
	}

	hf := model.NewHFClient(cfg.HF.BaseURL, cfg.HF.APIToken)

	provider, err := newSummaryProvider(ctx, cfg, hf, p)
	if err != nil {
		p.Close()
		return nil, err
	}

	classifier, err := newClassifier(cfg, hf, p)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Store = speech.NewStore(cfg.Audio.StaticDir, cfg.Audio.TTL, logger)

	p.Orchestrator = pipeline.NewOrchestrator(
		data.NewDiscoverer(searcher, cfg.Search.MaxArticles, cfg.Search.QueryDelay, logger),
		data.NewExtractor(client, logger),
		translate.New(logger),
		model.NewSummarizer(provider, logger),
		model.NewScorer(classifier, logger),
		speech.NewSynthesizer(p.Store, logger),
		pipeline.Options{
			ProcessLanguage: cfg.Audio.ProcessLanguage,
			AudioLanguage:   cfg.Audio.Language,
		},
		logger,
	)

	logger.Infow("Pipeline ready",
		"search", searcher.Name(),
		"summarizer", provider.Name(),
		"sentiment", cfg.Sentiment.Provider,
		"static_dir", cfg.Audio.StaticDir,
	)

	return p, nil
}

// StartJanitor evicts expired audio from the store in the background until the
// returned stop function is called. A non-positive ttl starts nothing.
func (p *Pipeline) StartJanitor(ttl time.Duration) (stop func()) {
	if ttl <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	go p.Store.Janitor(speech.JanitorInterval(ttl), done)

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func newSummaryProvider(ctx context.Context, cfg *config.Config, hf *model.HFClient, p *Pipeline) (model.SummaryProvider, error) {
	s := cfg.Summarizer
	switch s.Provider {
	case "openai":
		return model.NewOpenAISummarizer(s.OpenAIAPIKey, s.OpenAIModel, s.OpenAIBaseURL)
	case "anthropic":
		return model.NewAnthropicSummarizer(s.AnthropicAPIKey, s.AnthropicModel)
	case "gemini":
		g, err := model.NewGeminiSummarizer(ctx, s.GeminiAPIKey, s.GeminiModel)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, g.Close)
		return g, nil
	default:
		return model.NewHFSummarizer(hf, s.HFModel), nil
	}
}

func newClassifier(cfg *config.Config, hf *model.HFClient, p *Pipeline) (model.Classifier, error) {
	s := cfg.Sentiment
	if s.Provider != "onnx" {
		return model.NewHFClassifier(hf, s.HFModel), nil
	}

	c, err := model.NewONNXClassifier(s.ONNXDLLPath, s.ONNXModelPath, s.ONNXVocabPath, model.MaxScore)
	if err != nil {
		return nil, fmt.Errorf("failed to load sentiment model: %w", err)
	}
	p.closers = append(p.closers, c.Close)
	return c, nil
}
