package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dataspark.io/insights-service/internal/dataset"
)

// OllamaGenerator is a minimal HTTP client for a locally running Ollama
// runtime, talking to its non-streaming /api/chat endpoint.
type OllamaGenerator struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewOllamaGenerator(baseURL, model string) *OllamaGenerator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaGenerator{
		// The per-request deadline comes from ctx; this is a hard backstop.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    baseURL,
		model:      model,
	}
}

func (g *OllamaGenerator) Name() string { return "ollama" }

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  map[string]any      `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

func (g *OllamaGenerator) Generate(ctx context.Context, summary dataset.Summary) (string, error) {
	payload, err := json.Marshal(ollamaChatRequest{
		Model: g.model,
		Messages: []ollamaChatMessage{
			{Role: "user", Content: insightsPrompt(summary)},
		},
		Stream:  false,
		Options: map[string]any{"temperature": 0.1},
	})
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama unreachable at %s: %w", g.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		var raw struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &raw)
		if raw.Error != "" {
			return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, raw.Error)
		}
		return "", fmt.Errorf("ollama returned %d", resp.StatusCode)
	}

	var oresp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&oresp); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if oresp.Message.Content == "" {
		return "", fmt.Errorf("ollama returned an empty response")
	}
	return oresp.Message.Content, nil
}
