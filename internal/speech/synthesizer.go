// Package speech turns summaries into MP3 files under the static-assets directory.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Bhavik2205/news-sentiment/internal/data"
)

// ErrSynthesis means no audio could be produced for the text.
var ErrSynthesis = errors.New("speech synthesis failed")

// maxSegmentLength is the most characters the TTS endpoint accepts per request.
const maxSegmentLength = 100

// Synthesizer converts text in a spoken language to MP3 audio via the Google Translate TTS endpoint.
type Synthesizer struct {
	client  *http.Client
	baseURL string
	store   *Store
	logger  *zap.SugaredLogger
}

func NewSynthesizer(store *Store, logger *zap.SugaredLogger) *Synthesizer {
	return &Synthesizer{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://translate.google.com/translate_tts",
		store:   store,
		logger:  logger,
	}
}

// Synthesize renders text in language lang and saves it as filename in the store.
// It returns the path of the written file.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang, filename string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text", ErrSynthesis)
	}

	segments := data.SplitChunks(data.NormalizeWhitespace(text), maxSegmentLength)

	var audio bytes.Buffer
	for i, segment := range segments {
		if err := s.fetchSegment(ctx, &audio, segment, lang, i, len(segments)); err != nil {
			s.logger.Errorw("TTS failed", "file", filename, "lang", lang, "segment", i, "error", err)
			return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
		}
	}

	path, err := s.store.Save(filename, audio.Bytes())
	if err != nil {
		s.logger.Errorw("Failed to save speech", "file", filename, "error", err)
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}

	s.logger.Infow("Speech saved", "file", filename, "bytes", audio.Len())
	return path, nil
}

func (s *Synthesizer) fetchSegment(ctx context.Context, w io.Writer, text, lang string, idx, total int) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", text)
	params.Set("total", strconv.Itoa(total))
	params.Set("idx", strconv.Itoa(idx))
	params.Set("textlen", strconv.Itoa(data.CharCount(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts status %d", resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}
	if n == 0 {
		return errors.New("empty audio response")
	}
	return nil
}
