package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrNoContent means the article could not be fetched or had too little text to use.
var ErrNoContent = errors.New("no article content")

// MinContentLength is the shortest extracted text, in characters, worth summarizing.
const MinContentLength = 50

// Extractor fetches article pages and reduces them to paragraph text.
type Extractor struct {
	client *http.Client
	logger *zap.SugaredLogger
}

func NewExtractor(client *http.Client, logger *zap.SugaredLogger) *Extractor {
	return &Extractor{client: client, logger: logger}
}

// Extract returns the space-joined text of every <p> on the page at link.
// Any failure, including text shorter than MinContentLength, yields ErrNoContent.
func (e *Extractor) Extract(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		e.logger.Warnw("Invalid article URL", "url", link, "error", err)
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warnw("Article request failed", "url", link, "error", err)
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Warnw("Unable to fetch article", "url", link, "status_code", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrNoContent, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.logger.Warnw("Failed to parse article page", "url", link, "error", err)
		return "", fmt.Errorf("%w: %v", ErrNoContent, err)
	}

	paragraphs := doc.Find("p").Map(func(_ int, p *goquery.Selection) string {
		return p.Text()
	})
	text := strings.Join(paragraphs, " ")

	if CharCount(text) < MinContentLength {
		e.logger.Debugw("Article text too short", "url", link, "length", CharCount(text))
		return "", fmt.Errorf("%w: %d characters", ErrNoContent, CharCount(text))
	}

	return text, nil
}
