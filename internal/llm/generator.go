package llm

import (
	"context"
	"fmt"

	"dataspark.io/insights-service/internal/config"
	"dataspark.io/insights-service/internal/dataset"
)

// Generator produces natural-language insight text from a dataset summary.
// Implementations cover interchangeable model backends; the choice is made
// once at startup via configuration.
type Generator interface {
	Name() string
	Generate(ctx context.Context, summary dataset.Summary) (string, error)
}

// NewGenerator builds the backend selected by cfg.Provider. The config is
// validated before this runs, so an unknown provider here is a programming
// error.
func NewGenerator(cfg config.Config) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiGenerator(cfg.GoogleAPIKey)
	case config.ProviderOllama:
		return NewOllamaGenerator(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.OpenAIAPIKey), nil
	case config.ProviderAnthropic:
		return NewAnthropicGenerator(cfg.AnthropicAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
