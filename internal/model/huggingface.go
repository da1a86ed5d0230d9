package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// HFClient calls the hosted inference API for a model.
type HFClient struct {
	client  *http.Client
	baseURL string
	token   string
}

func NewHFClient(baseURL, token string) *HFClient {
	return &HFClient{
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

func (c *HFClient) infer(ctx context.Context, model string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference API status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w, content: %s", err, string(raw))
	}
	return nil
}

// HFSummarizer summarizes with a hosted seq2seq model such as facebook/bart-large-cnn.
type HFSummarizer struct {
	client *HFClient
	model  string
}

func NewHFSummarizer(client *HFClient, model string) *HFSummarizer {
	return &HFSummarizer{client: client, model: model}
}

func (s *HFSummarizer) Name() string {
	return "huggingface:" + s.model
}

func (s *HFSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	payload := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"min_length": MinSummaryLength,
			"max_length": MaxSummaryLength,
			"do_sample":  false,
		},
	}

	var resp []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := s.client.infer(ctx, s.model, payload, &resp); err != nil {
		return "", err
	}

	if len(resp) == 0 || strings.TrimSpace(resp[0].SummaryText) == "" {
		return "", fmt.Errorf("no summary in response")
	}
	return strings.TrimSpace(resp[0].SummaryText), nil
}

type hfLabelScore struct {
	Label string  `json:"label"`
	Score float32 `json:"score"`
}

// HFClassifier classifies with a hosted text classification model whose labels
// carry the class number, e.g. "1 star" ... "5 stars" or "LABEL_0" ... "LABEL_4".
type HFClassifier struct {
	client *HFClient
	model  string
}

func NewHFClassifier(client *HFClient, model string) *HFClassifier {
	return &HFClassifier{client: client, model: model}
}

func (c *HFClassifier) Classify(ctx context.Context, text string) (int, float32, error) {
	var raw json.RawMessage
	if err := c.client.infer(ctx, c.model, map[string]any{"inputs": text}, &raw); err != nil {
		return 0, 0, err
	}

	// The API answers either [[...]] (batched) or [...].
	var scores []hfLabelScore
	var nested [][]hfLabelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		scores = nested[0]
	} else if err := json.Unmarshal(raw, &scores); err != nil {
		return 0, 0, fmt.Errorf("unexpected classification response: %s", string(raw))
	}

	if len(scores) == 0 {
		return 0, 0, fmt.Errorf("empty classification response")
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	class, err := classFromLabel(best.Label)
	if err != nil {
		return 0, 0, err
	}
	return class, best.Score, nil
}

// classFromLabel turns "4 stars" into class 3 and "LABEL_3" into class 3.
func classFromLabel(label string) (int, error) {
	if rest, ok := strings.CutPrefix(label, "LABEL_"); ok {
		return strconv.Atoi(rest)
	}

	digits := strings.TrimLeftFunc(label, unicode.IsSpace)
	end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, fmt.Errorf("label %q has no class number", label)
	}
	if end > 0 {
		digits = digits[:end]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("label %q has no class number: %w", label, err)
	}
	return n - 1, nil
}
