package speech

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"go.uber.org/zap"
)

func newTestSynthesizer(t *testing.T, handler http.HandlerFunc) (*Synthesizer, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := filepath.Join(t.TempDir(), "static")
	s := NewSynthesizer(NewStore(dir, time.Hour, zap.NewNop().Sugar()), zap.NewNop().Sugar())
	s.baseURL = srv.URL
	return s, dir
}

func TestSynthesize_WritesFile(t *testing.T) {
	var langs []string
	s, dir := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		langs = append(langs, r.URL.Query().Get("tl"))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3"))
	})

	path, err := s.Synthesize(context.Background(), "एक्मे के शेयर बढ़े", "hi", "news_summary_req_1.mp3")

	assert.Equal(t, nil, err)
	assert.Equal(t, filepath.Join(dir, "news_summary_req_1.mp3"), path)
	assert.Equal(t, []string{"hi"}, langs)

	audio, err := os.ReadFile(path)
	assert.Equal(t, nil, err)
	assert.Equal(t, "ID3", string(audio))
}

func TestSynthesize_ConcatenatesSegments(t *testing.T) {
	calls := 0
	s, _ := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("seg"))
	})

	text := strings.Repeat("shares ", 40) // 280 characters
	path, err := s.Synthesize(context.Background(), text, "hi", "long.mp3")

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, calls)

	audio, _ := os.ReadFile(path)
	assert.Equal(t, "segsegseg", string(audio))
}

func TestSynthesize_ServiceError(t *testing.T) {
	s, dir := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	path, err := s.Synthesize(context.Background(), "summary", "hi", "fail.mp3")

	assert.Equal(t, true, errors.Is(err, ErrSynthesis))
	assert.Equal(t, "", path)

	_, statErr := os.Stat(filepath.Join(dir, "fail.mp3"))
	assert.Equal(t, true, os.IsNotExist(statErr))
}

func TestSynthesize_EmptyText(t *testing.T) {
	s, _ := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	_, err := s.Synthesize(context.Background(), " ", "hi", "empty.mp3")

	assert.Equal(t, true, errors.Is(err, ErrSynthesis))
}
