package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ffaguiar/verbo/internal/domain"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
	maxTurns  int
}

// NewGeminiClient creates a ModelClient backed by the Gemini API,
// authenticated with an API key.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, maxTurns int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		maxTurns:  maxTurns,
	}, nil
}

// Generate implements domain.ModelClient. One synchronous call, no
// retries; transport failures and empty results map to ErrUpstream.
func (g *GeminiClient) Generate(
	ctx context.Context,
	history []domain.Turn,
	prompt domain.Prompt,
) (string, error) {
	contents := BuildContents(history, prompt, g.maxTurns)

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: 8192,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", domain.ErrUpstream, err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("%w: model returned no text", domain.ErrUpstream)
	}

	return text, nil
}
