package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/linkaudit/internal/config"
)

// NewClient builds the generation and embedding clients for the
// configured provider. A nil EmbedderClient means the provider cannot
// embed; callers must treat that as "semantic analysis unavailable",
// not as an error.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return c, nil, nil // Anthropic has no embeddings endpoint

	case "ollama":
		c, err := NewOllamaClient(cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
