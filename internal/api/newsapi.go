// Package api holds the wire format of GET /news and a client for it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Bhavik2205/news-sentiment/internal/pipeline"
)

// StaticPrefix is the URL path generated audio is served under.
const StaticPrefix = "/static/"

type Article struct {
	Title          string  `json:"title"`
	Link           string  `json:"link"`
	Summary        string  `json:"summary"`
	SentimentScore int     `json:"sentiment_score"`
	SentimentLabel string  `json:"sentiment_label"`
	Audio          *string `json:"audio"`
}

type NewsResponse struct {
	AverageSentiment *float64  `json:"average_sentiment"`
	Articles         []Article `json:"articles"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FromResult converts a pipeline result to its wire form. Audio is nil when synthesis failed.
func FromResult(res pipeline.RequestResult) NewsResponse {
	out := NewsResponse{
		AverageSentiment: res.AverageSentiment,
		Articles:         make([]Article, 0, len(res.Articles)),
	}
	for _, a := range res.Articles {
		article := Article{
			Title:          a.Title,
			Link:           a.Link,
			Summary:        a.Summary,
			SentimentScore: a.Sentiment.Score,
			SentimentLabel: string(a.Sentiment.Label),
		}
		if a.AudioFile != "" {
			path := StaticPrefix + a.AudioFile
			article.Audio = &path
		}
		out.Articles = append(out.Articles, article)
	}
	return out
}

// Client calls a remote /news endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL. Processing a company can take minutes, so the timeout is generous.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Minute},
	}
}

// BaseURL is the backend address, used to make audio paths absolute.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchNews returns the processed news for company. A 404 maps to pipeline.ErrNoArticles
// and a 400 to pipeline.ErrMissingCompany.
func (c *Client) FetchNews(ctx context.Context, company string) (NewsResponse, error) {
	endpoint := fmt.Sprintf("%s/news?company=%s", c.baseURL, url.QueryEscape(company))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return NewsResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return NewsResponse{}, fmt.Errorf("news request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewsResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return NewsResponse{}, pipeline.ErrNoArticles
	case http.StatusBadRequest:
		return NewsResponse{}, pipeline.ErrMissingCompany
	default:
		var e ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return NewsResponse{}, fmt.Errorf("backend returned %d: %s", resp.StatusCode, e.Error)
		}
		return NewsResponse{}, errors.New("backend returned " + resp.Status)
	}

	var news NewsResponse
	if err := json.Unmarshal(body, &news); err != nil {
		return NewsResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return news, nil
}
