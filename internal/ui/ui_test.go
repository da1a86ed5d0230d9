package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/api"
	"github.com/Bhavik2205/news-sentiment/internal/data"
	"github.com/Bhavik2205/news-sentiment/internal/model"
	"github.com/Bhavik2205/news-sentiment/internal/pipeline"
)

type fakeRunner struct {
	res   pipeline.RequestResult
	err   error
	calls int
}

func (f *fakeRunner) Run(ctx context.Context, company string, progress pipeline.ProgressFunc) (pipeline.RequestResult, error) {
	f.calls++
	for i, a := range f.res.Articles {
		if progress != nil {
			progress(i+1, len(f.res.Articles), data.ArticleRef{Title: a.Title, Link: a.Link})
		}
	}
	return f.res, f.err
}

func newTestRouter(t *testing.T, runner Runner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewLocalSource(runner), t.TempDir(), zap.NewNop().Sugar())
	return NewRouter(h, true)
}

func submit(r http.Handler, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	r := newTestRouter(t, &fakeRunner{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "Enter the company name:"))
}

func TestSubmit_MissingCompany(t *testing.T) {
	runner := &fakeRunner{}
	r := newTestRouter(t, runner)

	w := submit(r, url.Values{"company": {" "}})

	assert.Equal(t, true, strings.Contains(w.Body.String(), msgMissingCompany))
	assert.Equal(t, 0, runner.calls)
}

func TestSubmit_NoArticles(t *testing.T) {
	r := newTestRouter(t, &fakeRunner{err: pipeline.ErrNoArticles})

	w := submit(r, url.Values{"company": {"Nobody"}})

	assert.Equal(t, true, strings.Contains(w.Body.String(), msgNoArticles))
	assert.Equal(t, false, strings.Contains(w.Body.String(), "<summary>Acme"))
}

func TestSubmit_NoneProcessed(t *testing.T) {
	r := newTestRouter(t, &fakeRunner{})

	w := submit(r, url.Values{"company": {"Acme"}})

	assert.Equal(t, true, strings.Contains(w.Body.String(), msgNoneProcessed))
}

func TestSubmit_RendersArticles(t *testing.T) {
	avg := 4.33
	runner := &fakeRunner{res: pipeline.RequestResult{
		AverageSentiment: &avg,
		Articles: []pipeline.ProcessedArticle{
			{Title: "Acme soars", Link: "https://a", Summary: "up", Sentiment: model.SentimentResult{Score: 5, Label: model.VeryPositive}, AudioFile: "news_summary_x_1.mp3"},
			{Title: "Acme dips", Link: "https://b", Summary: "down", Sentiment: model.SentimentResult{Score: 2, Label: model.Negative}},
		},
	}}
	r := newTestRouter(t, runner)

	body := submit(r, url.Values{"company": {"Acme"}}).Body.String()

	assert.Equal(t, true, strings.Contains(body, "Average Sentiment: 4.33/5"))
	assert.Equal(t, true, strings.Contains(body, "Processed article 2/2"))
	assert.Equal(t, true, strings.Contains(body, "5/5 (Very Positive)"))
	assert.Equal(t, true, strings.Contains(body, `src="/static/news_summary_x_1.mp3"`))
	assert.Equal(t, true, strings.Contains(body, "Audio generation failed"))
}

func TestSubmit_DebugShowsDetail(t *testing.T) {
	r := newTestRouter(t, &fakeRunner{err: errors.New("search blocked")})

	body := submit(r, url.Values{"company": {"Acme"}, "debug": {"1"}}).Body.String()

	assert.Equal(t, true, strings.Contains(body, "An error occurred: search blocked"))
	assert.Equal(t, true, strings.Contains(body, "Static files:"))
}

func TestRemoteSource_AbsoluteAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"average_sentiment":3,"articles":[{"title":"A","link":"https://a","summary":"s","sentiment_score":3,"sentiment_label":"Neutral","audio":"/static/a.mp3"},{"title":"B","link":"https://b","summary":"t","sentiment_score":3,"sentiment_label":"Neutral","audio":null}]}`))
	}))
	defer srv.Close()

	news, err := NewRemoteSource(api.NewClient(srv.URL)).News(context.Background(), "Acme", nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, srv.URL+"/static/a.mp3", *news.Articles[0].Audio)
	assert.Equal(t, true, news.Articles[1].Audio == nil)
}
