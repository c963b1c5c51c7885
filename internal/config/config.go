package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Provider names accepted for LLM_PROVIDER.
const (
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Provider        string
	GoogleAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaModel     string
	OllamaBaseURL   string
	DatabaseFile    string
	HTTPPort        string
	LogLevel        string
	GenerateTimeout int // seconds
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		Provider:        getEnv("LLM_PROVIDER", ProviderGemini),
		GoogleAPIKey:    getEnv("GOOGLE_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaModel:     getEnv("OLLAMA_MODEL", "qwen3:0.6b"),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		DatabaseFile:    getEnv("DATABASE_FILE", "insights_cache.db"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		GenerateTimeout: getEnvAsInt("GENERATE_TIMEOUT_SECONDS", 60),
	}

	if err := AppConfig.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
}

// Validate checks that the selected backend has the credentials it needs.
// A validation failure must keep the service from accepting traffic.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required when LLM_PROVIDER is %q", ProviderGemini)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER is %q", ProviderOpenAI)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER is %q", ProviderAnthropic)
		}
	case ProviderOllama:
		// Local runtime, no credentials needed.
	default:
		return fmt.Errorf("invalid LLM_PROVIDER: %q (must be gemini, ollama, openai or anthropic)", c.Provider)
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
