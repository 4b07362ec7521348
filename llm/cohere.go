package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// Cohere implements Provider using the Cohere Chat API.
// SDK: github.com/cohere-ai/cohere-go/v2
type Cohere struct {
	client *cohereclient.Client
	model  string
}

// NewCohere creates a Cohere-backed provider.
func NewCohere(apiKey, model string) *Cohere {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &Cohere{client: client, model: model}
}

func (c *Cohere) Name() string { return "cohere" }

// Generate maps the system instruction onto the chat preamble and returns
// the response text.
func (c *Cohere) Generate(ctx context.Context, system, prompt string) (string, error) {
	temperature := 0.3
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Model:       &c.model,
		Message:     prompt,
		Preamble:    &system,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil || resp.Text == "" {
		return "", errors.New("cohere chat returned empty response")
	}
	return resp.Text, nil
}
