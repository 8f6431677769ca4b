package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Provider represents an AI provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
	ProviderOllama Provider = "ollama"
)

// ConnectorOptions contains options for creating a connector
type ConnectorOptions struct {
	Provider    Provider `json:"provider"`
	APIKey      string   `json:"api_key"`
	BaseURL     string   `json:"base_url,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// OptionsFromConfig builds connector options from a provider's raw config
// section. Missing model names get per-provider defaults.
func OptionsFromConfig(name string, raw map[string]interface{}) ConnectorOptions {
	opts := ConnectorOptions{Provider: Provider(name), Temperature: 0.2}
	if v, ok := raw["api_key"].(string); ok {
		opts.APIKey = v
	}
	if v, ok := raw["base_url"].(string); ok {
		opts.BaseURL = v
	}
	if v, ok := raw["model"].(string); ok {
		opts.Model = v
	}
	if v, ok := raw["temperature"].(float64); ok {
		opts.Temperature = v
	}
	switch v := raw["max_tokens"].(type) {
	case int:
		opts.MaxTokens = v
	case int64:
		opts.MaxTokens = int(v)
	case float64:
		opts.MaxTokens = int(v)
	}
	if opts.Model == "" {
		switch opts.Provider {
		case ProviderOpenAI:
			opts.Model = "gpt-4o-mini"
		case ProviderGemini:
			opts.Model = "gemini-2.5-flash"
		case ProviderClaude:
			opts.Model = "claude-3-5-haiku-latest"
		case ProviderOllama:
			opts.Model = "llama3"
		}
	}
	return opts
}

// Connector represents a connection to an AI provider
type Connector struct {
	provider Provider
	llm      llms.Model
	options  ConnectorOptions
	limiter  *rate.Limiter
}

// NewConnector creates a new connector for the specified provider
func NewConnector(ctx context.Context, options ConnectorOptions) (*Connector, error) {
	var model llms.Model
	var err error

	log.Debug().
		Str("provider", string(options.Provider)).
		Str("model", options.Model).
		Float64("temperature", options.Temperature).
		Msg("creating AI connector")

	switch options.Provider {
	case ProviderOpenAI:
		model, err = createOpenAIModel(options)
	case ProviderGemini:
		model, err = createGeminiModel(ctx, options)
	case ProviderClaude:
		model, err = createAnthropicModel(options)
	case ProviderOllama:
		model, err = createOllamaModel(options)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", options.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", options.Provider, err)
	}

	return &Connector{
		provider: options.Provider,
		llm:      model,
		options:  options,
		limiter:  rate.NewLimiter(rate.Every(1*time.Second), 2),
	}, nil
}

func createOpenAIModel(options ConnectorOptions) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(options.Model),
		openai.WithToken(options.APIKey),
	}
	if options.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(options.BaseURL))
	}
	return openai.New(opts...)
}

func createGeminiModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	return googleai.New(ctx, googleai.WithAPIKey(options.APIKey))
}

func createAnthropicModel(options ConnectorOptions) (llms.Model, error) {
	return anthropic.New(
		anthropic.WithToken(options.APIKey),
		anthropic.WithModel(options.Model),
	)
}

func createOllamaModel(options ConnectorOptions) (llms.Model, error) {
	if options.BaseURL == "" {
		options.BaseURL = "http://localhost:11434"
	}
	return ollama.New(
		ollama.WithServerURL(options.BaseURL),
		ollama.WithModel(options.Model),
	)
}

// Model returns the configured model name.
func (c *Connector) Model() string { return c.options.Model }

// Call calls the LLM with the given prompt and returns the response text.
func (c *Connector) Call(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	callOptions := []llms.CallOption{
		llms.WithTemperature(c.options.Temperature),
	}
	if c.options.MaxTokens > 0 {
		callOptions = append(callOptions, llms.WithMaxTokens(c.options.MaxTokens))
	}
	if c.provider == ProviderGemini {
		callOptions = append(callOptions, llms.WithModel(c.options.Model))
	}

	return llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, callOptions...)
}
