package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/data"
	"github.com/Bhavik2205/news-sentiment/internal/model"
	"github.com/Bhavik2205/news-sentiment/internal/speech"
)

type fakeDiscoverer struct {
	refs  []data.ArticleRef
	calls int
}

func (f *fakeDiscoverer) Discover(ctx context.Context, company string) []data.ArticleRef {
	f.calls++
	return f.refs
}

type fakeExtractor struct {
	failing map[string]bool
}

func (f *fakeExtractor) Extract(ctx context.Context, link string) (string, error) {
	if f.failing[link] {
		return "", data.ErrNoContent
	}
	return "text of " + link, nil
}

type fakeTranslator struct {
	targets []string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target string) string {
	f.targets = append(f.targets, target)
	return text
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(ctx context.Context, text string) model.Summary {
	return model.Summary{Input: text, Text: "summary: " + text}
}

// fakeScorer scores by the link embedded in the summary.
type fakeScorer struct {
	scores map[string]int
}

func (f *fakeScorer) Score(ctx context.Context, text string) (model.SentimentResult, error) {
	score, ok := f.scores[text]
	if !ok {
		return model.SentimentResult{}, model.ErrNoScore
	}
	label, _ := model.LabelFor(score)
	return model.SentimentResult{Score: score, Label: label}, nil
}

type fakeSynthesizer struct {
	failing map[string]bool
	files   []string
	langs   []string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, lang, filename string) (string, error) {
	f.files = append(f.files, filename)
	f.langs = append(f.langs, lang)
	if f.failing[text] {
		return "", speech.ErrSynthesis
	}
	return "static/" + filename, nil
}

func refs(n int) []data.ArticleRef {
	out := make([]data.ArticleRef, n)
	for i := range out {
		out[i] = data.ArticleRef{Title: fmt.Sprintf("Title %d", i+1), Link: fmt.Sprintf("https://news.example/%d", i+1)}
	}
	return out
}

func summaryOf(link string) string {
	return "summary: text of " + link
}

type fixture struct {
	discoverer  *fakeDiscoverer
	extractor   *fakeExtractor
	translator  *fakeTranslator
	scorer      *fakeScorer
	synthesizer *fakeSynthesizer
	orch        *Orchestrator
}

func newFixture(discovered []data.ArticleRef) *fixture {
	f := &fixture{
		discoverer:  &fakeDiscoverer{refs: discovered},
		extractor:   &fakeExtractor{failing: map[string]bool{}},
		translator:  &fakeTranslator{},
		scorer:      &fakeScorer{scores: map[string]int{}},
		synthesizer: &fakeSynthesizer{failing: map[string]bool{}},
	}
	for i, ref := range discovered {
		f.scores(ref.Link, i%5+1)
	}
	f.orch = NewOrchestrator(f.discoverer, f.extractor, f.translator, fakeSummarizer{}, f.scorer, f.synthesizer,
		Options{ProcessLanguage: "en", AudioLanguage: "hi"}, zap.NewNop().Sugar())
	f.orch.newID = func() string { return "req" }
	return f
}

func (f *fixture) scores(link string, score int) {
	f.scorer.scores[summaryOf(link)] = score
}

func TestRun_AverageMatchesIncludedArticles(t *testing.T) {
	f := newFixture(refs(3))
	f.scores("https://news.example/1", 5)
	f.scores("https://news.example/2", 4)
	f.scores("https://news.example/3", 4)

	res, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(res.Articles))
	assert.Equal(t, 4.33, *res.AverageSentiment)
}

func TestRun_SkipsExtractionFailure(t *testing.T) {
	f := newFixture(refs(3))
	f.extractor.failing["https://news.example/2"] = true

	res, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(res.Articles))
	assert.Equal(t, "Title 1", res.Articles[0].Title)
	assert.Equal(t, "Title 3", res.Articles[1].Title)
}

func TestRun_SkipsUnscoredArticle(t *testing.T) {
	f := newFixture(refs(2))
	delete(f.scorer.scores, summaryOf("https://news.example/1"))
	f.scores("https://news.example/2", 2)

	res, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(res.Articles))
	assert.Equal(t, 2.0, *res.AverageSentiment)
	assert.Equal(t, model.Negative, res.Articles[0].Sentiment.Label)
}

func TestRun_NoSurvivorsHasNilAverage(t *testing.T) {
	f := newFixture(refs(2))
	f.extractor.failing["https://news.example/1"] = true
	f.extractor.failing["https://news.example/2"] = true

	res, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(res.Articles))
	assert.Equal(t, true, res.AverageSentiment == nil)
}

func TestRun_NoArticles(t *testing.T) {
	f := newFixture(nil)

	res, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, true, errors.Is(err, ErrNoArticles))
	assert.Equal(t, 0, len(res.Articles))
	assert.Equal(t, 0, len(f.synthesizer.files))
}

func TestRun_MissingCompanySkipsDiscovery(t *testing.T) {
	f := newFixture(refs(1))

	_, err := f.orch.Run(context.Background(), "   ", nil)

	assert.Equal(t, true, errors.Is(err, ErrMissingCompany))
	assert.Equal(t, 0, f.discoverer.calls)
}

func TestRun_SynthesisFailureKeepsArticle(t *testing.T) {
	f := newFixture(refs(2))
	f.synthesizer.failing[summaryOf("https://news.example/1")] = true

	res, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(res.Articles))
	assert.Equal(t, "", res.Articles[0].AudioFile)
	assert.Equal(t, "news_summary_req_2.mp3", res.Articles[1].AudioFile)
}

func TestRun_ScoresAndLabelsStayInRange(t *testing.T) {
	f := newFixture(refs(10))

	res, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 10, len(res.Articles))
	for _, a := range res.Articles {
		label, ok := model.LabelFor(a.Sentiment.Score)
		assert.Equal(t, true, ok)
		assert.Equal(t, label, a.Sentiment.Label)
	}
}

func TestRun_AudioNamesAndLanguages(t *testing.T) {
	f := newFixture(refs(2))
	f.extractor.failing["https://news.example/1"] = true

	_, err := f.orch.Run(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	// Index follows discovery order, so the surviving article keeps n=2.
	assert.Equal(t, []string{"news_summary_req_2.mp3"}, f.synthesizer.files)
	assert.Equal(t, []string{"hi"}, f.synthesizer.langs)
	assert.Equal(t, []string{"en", "hi"}, f.translator.targets)
}

func TestRun_ReportsProgress(t *testing.T) {
	f := newFixture(refs(3))

	var seen []string
	_, err := f.orch.Run(context.Background(), "Acme", func(index, total int, ref data.ArticleRef) {
		seen = append(seen, fmt.Sprintf("%d/%d %s", index, total, ref.Title))
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"1/3 Title 1", "2/3 Title 2", "3/3 Title 3"}, seen)
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(refs(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orch.Run(ctx, "Acme", nil)

	assert.Equal(t, true, errors.Is(err, context.Canceled))
}
