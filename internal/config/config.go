// Package config loads runtime settings from an optional YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MaxArticles is the hard cap on discovered articles per request.
const MaxArticles = 10

var (
	ErrInvalidSearchProvider     = errors.New("search.provider must be one of: google, rss")
	ErrInvalidSummarizerProvider = errors.New("summarizer.provider must be one of: huggingface, openai, anthropic, gemini")
	ErrInvalidSentimentProvider  = errors.New("sentiment.provider must be one of: onnx, huggingface")
	ErrInvalidMaxArticles        = errors.New("search.max_articles must be between 1 and 10")
	ErrInvalidQueryDelay         = errors.New("search.query_delay must be non-negative")
	ErrInvalidUIMode             = errors.New("ui.mode must be one of: local, remote")
	ErrMissingStaticDir          = errors.New("audio.static_dir is required")
	ErrMissingONNXModel          = errors.New("sentiment.onnx_model_path and sentiment.onnx_vocab_path are required for the onnx provider")
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Search     SearchConfig     `yaml:"search"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Sentiment  SentimentConfig  `yaml:"sentiment"`
	Audio      AudioConfig      `yaml:"audio"`
	UI         UIConfig         `yaml:"ui"`
	Logging    LoggingConfig    `yaml:"logging"`
	HF         HFConfig         `yaml:"huggingface"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	FrontendURL string `yaml:"frontend_url"`
}

type SearchConfig struct {
	Provider    string        `yaml:"provider"`
	QueryDelay  time.Duration `yaml:"query_delay"`
	MaxArticles int           `yaml:"max_articles"`
}

// SummarizerConfig selects the summarization backend and carries its credentials.
type SummarizerConfig struct {
	Provider        string `yaml:"provider"`
	HFModel         string `yaml:"hf_model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiModel     string `yaml:"gemini_model"`
}

type SentimentConfig struct {
	Provider      string `yaml:"provider"`
	HFModel       string `yaml:"hf_model"`
	ONNXDLLPath   string `yaml:"onnx_dll_path"`
	ONNXModelPath string `yaml:"onnx_model_path"`
	ONNXVocabPath string `yaml:"onnx_vocab_path"`
}

type AudioConfig struct {
	StaticDir       string        `yaml:"static_dir"`
	Language        string        `yaml:"language"`
	ProcessLanguage string        `yaml:"process_language"`
	TTL             time.Duration `yaml:"ttl"`
}

type UIConfig struct {
	Addr       string `yaml:"addr"`
	Mode       string `yaml:"mode"`
	BackendURL string `yaml:"backend_url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HFConfig struct {
	APIToken string `yaml:"api_token"`
	BaseURL  string `yaml:"base_url"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":7860"},
		Search: SearchConfig{
			Provider:    "google",
			QueryDelay:  2 * time.Second,
			MaxArticles: MaxArticles,
		},
		Summarizer: SummarizerConfig{
			Provider:       "huggingface",
			HFModel:        "facebook/bart-large-cnn",
			OpenAIModel:    "gpt-4o-mini",
			AnthropicModel: "claude-haiku-4-5",
			GeminiModel:    "gemini-1.5-flash",
		},
		Sentiment: SentimentConfig{
			Provider: "onnx",
			HFModel:  "nlptown/bert-base-multilingual-uncased-sentiment",
		},
		Audio: AudioConfig{
			StaticDir:       "static",
			Language:        "hi",
			ProcessLanguage: "en",
			TTL:             time.Hour,
		},
		UI: UIConfig{
			Addr:       ":8501",
			Mode:       "local",
			BackendURL: "http://127.0.0.1:7860",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		HF:      HFConfig{BaseURL: "https://router.huggingface.co/hf-inference/models"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if any),
// then .env, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "API_ADDR")
	setString(&c.Server.FrontendURL, "FRONTEND_URL")

	setString(&c.Search.Provider, "SEARCH_PROVIDER")
	if err := setDuration(&c.Search.QueryDelay, "SEARCH_QUERY_DELAY"); err != nil {
		return err
	}
	if err := setInt(&c.Search.MaxArticles, "MAX_ARTICLES"); err != nil {
		return err
	}

	setString(&c.Summarizer.Provider, "SUMMARIZER_PROVIDER")
	setString(&c.Summarizer.HFModel, "HF_SUMMARY_MODEL")
	setString(&c.Summarizer.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.Summarizer.OpenAIModel, "OPENAI_MODEL")
	setString(&c.Summarizer.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.Summarizer.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.Summarizer.AnthropicModel, "ANTHROPIC_MODEL")
	setString(&c.Summarizer.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.Summarizer.GeminiModel, "GEMINI_MODEL")

	setString(&c.Sentiment.Provider, "SENTIMENT_PROVIDER")
	setString(&c.Sentiment.HFModel, "HF_SENTIMENT_MODEL")
	setString(&c.Sentiment.ONNXDLLPath, "ONNX_DLL_PATH")
	setString(&c.Sentiment.ONNXModelPath, "ONNX_MODEL_PATH")
	setString(&c.Sentiment.ONNXVocabPath, "ONNX_VOCAB_PATH")

	setString(&c.Audio.StaticDir, "STATIC_DIR")
	setString(&c.Audio.Language, "AUDIO_LANGUAGE")
	setString(&c.Audio.ProcessLanguage, "PROCESS_LANGUAGE")
	if err := setDuration(&c.Audio.TTL, "AUDIO_TTL"); err != nil {
		return err
	}

	setString(&c.UI.Addr, "UI_ADDR")
	setString(&c.UI.Mode, "UI_MODE")
	setString(&c.UI.BackendURL, "BACKEND_URL")

	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	setString(&c.HF.APIToken, "HF_API_TOKEN")
	setString(&c.HF.BaseURL, "HF_BASE_URL")

	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Search.Provider {
	case "google", "rss":
	default:
		return ErrInvalidSearchProvider
	}

	if c.Search.MaxArticles < 1 || c.Search.MaxArticles > MaxArticles {
		return ErrInvalidMaxArticles
	}

	if c.Search.QueryDelay < 0 {
		return ErrInvalidQueryDelay
	}

	switch c.Summarizer.Provider {
	case "huggingface", "openai", "anthropic", "gemini":
	default:
		return ErrInvalidSummarizerProvider
	}

	switch c.Sentiment.Provider {
	case "onnx", "huggingface":
	default:
		return ErrInvalidSentimentProvider
	}

	if c.Audio.StaticDir == "" {
		return ErrMissingStaticDir
	}

	switch c.UI.Mode {
	case "local", "remote":
	default:
		return ErrInvalidUIMode
	}

	return nil
}

// ValidatePipeline checks what is only needed by processes that run the pipeline
// themselves. A remote-mode UI never loads a model and skips it.
func (c *Config) ValidatePipeline() error {
	if c.Sentiment.Provider == "onnx" && (c.Sentiment.ONNXModelPath == "" || c.Sentiment.ONNXVocabPath == "") {
		return ErrMissingONNXModel
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
