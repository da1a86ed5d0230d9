package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/api"
	"github.com/Bhavik2205/news-sentiment/internal/model"
	"github.com/Bhavik2205/news-sentiment/internal/pipeline"
)

type fakeRunner struct {
	res       pipeline.RequestResult
	err       error
	companies []string
}

func (f *fakeRunner) Run(ctx context.Context, company string, progress pipeline.ProgressFunc) (pipeline.RequestResult, error) {
	f.companies = append(f.companies, company)
	return f.res, f.err
}

func newTestRouter(t *testing.T, runner Runner) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	return NewRouter(runner, Options{StaticDir: dir, AllowedOrigins: []string{"http://localhost:8501"}}, zap.NewNop().Sugar()), dir
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGetNews_MissingCompany(t *testing.T) {
	runner := &fakeRunner{}
	r, _ := newTestRouter(t, runner)

	w := get(r, "/news")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, len(runner.companies))
}

func TestGetNews_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRunner{err: pipeline.ErrNoArticles})

	w := get(r, "/news?company=Nobody")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var res api.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "No news articles found", res.Error)
}

func TestGetNews_InternalError(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRunner{err: errors.New("boom")})

	w := get(r, "/news?company=Acme")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetNews_OK(t *testing.T) {
	avg := 4.5
	runner := &fakeRunner{res: pipeline.RequestResult{
		AverageSentiment: &avg,
		Articles: []pipeline.ProcessedArticle{
			{Title: "Acme soars", Link: "https://a", Summary: "up", Sentiment: model.SentimentResult{Score: 5, Label: model.VeryPositive}, AudioFile: "news_summary_x_1.mp3"},
			{Title: "Acme steady", Link: "https://b", Summary: "flat", Sentiment: model.SentimentResult{Score: 4, Label: model.Positive}},
		},
	}}
	r, _ := newTestRouter(t, runner)

	w := get(r, "/news?company=Acme")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Acme"}, runner.companies)

	var res api.NewsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 4.5, *res.AverageSentiment)
	assert.Equal(t, 2, len(res.Articles))
	assert.Equal(t, "Very Positive", res.Articles[0].SentimentLabel)
	assert.Equal(t, "/static/news_summary_x_1.mp3", *res.Articles[0].Audio)
	assert.Equal(t, true, res.Articles[1].Audio == nil)
}

func TestStatic_ServesAudio(t *testing.T) {
	r, dir := newTestRouter(t, &fakeRunner{})
	os.WriteFile(filepath.Join(dir, "news_summary_x_1.mp3"), []byte("ID3"), 0o644)

	w := get(r, "/static/news_summary_x_1.mp3")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ID3", w.Body.String())
}

func TestGetHealth(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRunner{})

	w := get(r, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"status":"healthy"}`, w.Body.String())
}

func TestMetrics(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRunner{})

	w := get(r, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
}
