package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/api/option"
)

var summaryPrompt = fmt.Sprintf(`You are a news editor. Summarize the news article you are given.

Rules:
1. Between %d and %d words
2. Neutral tone, keep names, numbers and dates
3. Output the summary only, no headings or preamble`, MinSummaryLength, MaxSummaryLength)

// OpenAISummarizer summarizes with an OpenAI-compatible chat completion endpoint.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, model, baseURL string) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if model == "" {
		return nil, errors.New("openai model is required")
	}
	opts := []openaioption.RequestOption{openaioption.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAISummarizer{client: &client, model: model}, nil
}

func (s *OpenAISummarizer) Name() string {
	return "openai:" + s.model
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summaryPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// AnthropicSummarizer summarizes with the Messages API.
type AnthropicSummarizer struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicSummarizer(apiKey, model string) (*AnthropicSummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key missing")
	}
	client := anthropic.NewClient(anthropicoption.WithAPIKey(apiKey))
	return &AnthropicSummarizer{client: &client, model: anthropic.Model(model)}, nil
}

func (s *AnthropicSummarizer) Name() string {
	return "anthropic:" + string(s.model)
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       s.model,
		MaxTokens:   1024,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: summaryPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	return strings.TrimSpace(resp.Content[0].Text), nil
}

// GeminiSummarizer summarizes with a Gemini generative model.
type GeminiSummarizer struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key missing")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(0)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(summaryPrompt)}}

	return &GeminiSummarizer{client: client, model: m, modelName: model}, nil
}

func (s *GeminiSummarizer) Name() string {
	return "gemini:" + s.modelName
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no response from gemini")
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases the underlying gemini client.
func (s *GeminiSummarizer) Close() error {
	return s.client.Close()
}
