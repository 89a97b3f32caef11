// Package report builds the narrative compliance report: it assembles a
// prompt from every prior validation result, sends it to a text-synthesis
// model and extracts the answer segment from the response. Synthesis failure
// is never fatal; callers always receive report text, possibly synthetic.
package report

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// Generator performs one prompt round-trip against a synthesis backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator talks to the Gemini API. The client is created on first
// use so a missing key surfaces as a per-run synthesis failure, not a
// startup failure.
type GeminiGenerator struct {
	apiKey string
	model  string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	return &GeminiGenerator{apiKey: apiKey, model: model}
}

func (g *GeminiGenerator) connect(ctx context.Context) error {
	g.once.Do(func() {
		if g.apiKey == "" {
			g.initErr = fmt.Errorf("synthesis API key is not configured")
			return
		}
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.apiKey})
	})
	return g.initErr
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.connect(ctx); err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", g.model)
	}
	return text, nil
}

var _ Generator = (*GeminiGenerator)(nil)
