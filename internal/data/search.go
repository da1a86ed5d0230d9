package data

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// ErrUnexpectedStatusCode indicates an HTTP response with a non-success status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const userAgent = "Mozilla/5.0"

// googleTitleSelector matches the title element Google places inside each news result anchor.
const googleTitleSelector = "div.BNeawe.vvjwJb.AP7Wnd"

// NewHTTPClient returns the client used for outbound page fetches.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// GoogleSearcher scrapes the Google News results page.
type GoogleSearcher struct {
	client  *http.Client
	baseURL string
}

func NewGoogleSearcher(client *http.Client) *GoogleSearcher {
	return &GoogleSearcher{client: client, baseURL: "https://www.google.com"}
}

func (s *GoogleSearcher) Name() string {
	return "google"
}

// Search fetches the news tab for query and parses (title, link) pairs from its anchors.
func (s *GoogleSearcher) Search(ctx context.Context, query string) ([]ArticleRef, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&tbm=nws", s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	var results []ArticleRef
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		link, ok := a.Attr("href")
		if !ok || link == "" {
			return
		}

		titleTag := a.Find(googleTitleSelector).First()
		if titleTag.Length() == 0 {
			return
		}

		if strings.HasPrefix(link, "/url?") {
			link = s.baseURL + link
		}

		results = append(results, ArticleRef{
			Title: strings.TrimSpace(titleTag.Text()),
			Link:  link,
		})
	})

	return results, nil
}

// RSSSearcher queries the Google News RSS search feed.
type RSSSearcher struct {
	parser  *gofeed.Parser
	baseURL string
}

func NewRSSSearcher(client *http.Client) *RSSSearcher {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &RSSSearcher{parser: parser, baseURL: "https://news.google.com/rss/search"}
}

func (s *RSSSearcher) Name() string {
	return "rss"
}

func (s *RSSSearcher) Search(ctx context.Context, query string) ([]ArticleRef, error) {
	feedURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", s.baseURL, url.QueryEscape(query))

	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("rss search failed: %w", err)
	}

	results := make([]ArticleRef, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		results = append(results, ArticleRef{
			Title: strings.TrimSpace(item.Title),
			Link:  item.Link,
		})
	}

	return results, nil
}
