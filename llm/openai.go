package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// OpenAIChat implements Provider against an OpenAI-compatible chat
// completions endpoint. Groq and DeepSeek expose the same wire format, so
// one client serves all three.
// Endpoint: POST {baseURL}/chat/completions
// Request: {"model": ..., "messages": [{"role","content"}, ...], "temperature": ...}
// Response: {"choices": [{"message": {"content": "..."}}]}
type OpenAIChat struct {
	name        string
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	httpClient  *http.Client
}

// NewOpenAI creates a provider for api.openai.com.
func NewOpenAI(apiKey, model string) *OpenAIChat {
	return &OpenAIChat{
		name:        "openai",
		apiKey:      apiKey,
		model:       model,
		baseURL:     "https://api.openai.com/v1",
		temperature: 0.3,
	}
}

// NewGroq creates a provider for Groq's OpenAI-compatible API.
func NewGroq(apiKey, model string) *OpenAIChat {
	return &OpenAIChat{
		name:        "groq",
		apiKey:      apiKey,
		model:       model,
		baseURL:     "https://api.groq.com/openai/v1",
		temperature: 0.3,
	}
}

// NewDeepSeek creates a provider for DeepSeek's OpenAI-compatible API.
func NewDeepSeek(apiKey, model string) *OpenAIChat {
	return &OpenAIChat{
		name:        "deepseek",
		apiKey:      apiKey,
		model:       model,
		baseURL:     "https://api.deepseek.com/v1",
		temperature: 0.3,
	}
}

func (o *OpenAIChat) Name() string { return o.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a system + user message pair and returns the assistant's
// raw text.
func (o *OpenAIChat) Generate(ctx context.Context, system, prompt string) (string, error) {
	payload := chatRequest{
		Model:       o.model,
		Temperature: o.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	client := o.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request: %w", o.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s http %d: %s", o.name, resp.StatusCode, truncate(string(body), 200))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s decode: %w", o.name, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%s api error: %s", o.name, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New(o.name + " returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
