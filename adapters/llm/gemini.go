package llm

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/MAdityaRao/Resume-agent/domain/repositories"
)

const (
	defaultModel           = "gemini-2.0-flash"
	defaultTemperature     = 0.6
	defaultTopP            = 0.9
	defaultTopK            = 40
	defaultMaxOutputTokens = 256
	defaultTimeoutSeconds  = 30
)

// Config carries the Gemini provider settings.
type Config struct {
	APIKey          string
	Model           string
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int
	TimeoutSeconds  int
}

// ConfigFromEnv reads the Gemini settings from the environment.
func ConfigFromEnv() Config {
	return Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}
}

// ValidateConfig checks the provider settings.
func ValidateConfig(config Config) error {
	if config.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if config.Temperature < 0 || config.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", config.Temperature)
	}
	if config.TopP < 0 || config.TopP > 1 {
		return fmt.Errorf("topP must be between 0 and 1, got %f", config.TopP)
	}
	if config.TopK < 0 {
		return fmt.Errorf("topK must be positive, got %f", config.TopK)
	}
	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.TopP == 0 {
		c.TopP = defaultTopP
	}
	if c.TopK == 0 {
		c.TopK = defaultTopK
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = defaultMaxOutputTokens
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return c
}

// Gemini implements the LanguageModel interface using Google's Gemini API.
type Gemini struct {
	client *genai.Client
	config Config
	logger *zap.Logger
}

// NewGemini creates a Gemini language model from the given config.
func NewGemini(ctx context.Context, config Config, logger *zap.Logger) (*Gemini, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	config = config.withDefaults()
	logger.Info("Gemini language model ready", zap.String("model", config.Model))

	return &Gemini{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// NewChatSession opens a conversation seeded with instructions and history.
func (g *Gemini) NewChatSession(ctx context.Context, instructions string, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	return newChatSession(g.client, g.config, g.logger, instructions, history), nil
}
