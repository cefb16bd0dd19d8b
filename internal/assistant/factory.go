package assistant

import (
	"context"
	"fmt"

	"fortress-go/internal/config"
	"fortress-go/internal/fortress"
)

// NewAssistantFromConfig creates an Assistant based on the assistant config
// type. A gemini assistant without an API key degrades to Disabled so the
// rest of the application keeps working.
func NewAssistantFromConfig(ctx context.Context, cfg config.AssistantConfig, apiKey string, logger fortress.Logger) (fortress.Assistant, error) {
	switch cfg.Type {
	case "gemini", "":
		if apiKey == "" {
			logger.Warn("assistant disabled", "reason", "GEMINI_API_KEY not set")
			return Disabled{Reason: "GEMINI_API_KEY not set"}, nil
		}
		g, err := NewGemini(ctx, apiKey, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "none":
		return Disabled{Reason: "assistant disabled in config"}, nil
	default:
		return nil, fmt.Errorf("unknown assistant type: %q", cfg.Type)
	}
}
