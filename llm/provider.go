package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	"reelscript/config"
)

// Provider abstracts a text-generation service invoked with a fixed
// instruction template and a variable payload. Implementations should
// return the raw response text; any failure means "try the next provider".
type Provider interface {
	Name() string
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ErrNoProviders is returned when a call is attempted with an empty
// provider list.
var ErrNoProviders = errors.New("no text-generation providers configured")

// ProvidersFromEnv builds the ordered fallback list from LLM_PROVIDERS
// (comma-separated, default "openai,groq"). Entries whose API key env var
// is unset are skipped so a partially configured host still works.
//
// Known entries: openai (OPENAI_API_KEY), groq (GROQ_API_KEY), deepseek
// (DEEPSEEK_API_KEY), cohere (COHERE_API_KEY).
func ProvidersFromEnv() []Provider {
	names := config.GetEnvList("LLM_PROVIDERS")
	if len(names) == 0 {
		names = []string{"openai", "groq"}
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(name) {
		case "openai":
			if key := os.Getenv("OPENAI_API_KEY"); key != "" {
				providers = append(providers, NewOpenAI(key, config.GetEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")))
			}
		case "groq":
			if key := os.Getenv("GROQ_API_KEY"); key != "" {
				providers = append(providers, NewGroq(key, config.GetEnvOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile")))
			}
		case "deepseek":
			if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
				providers = append(providers, NewDeepSeek(key, config.GetEnvOrDefault("DEEPSEEK_MODEL", "deepseek-chat")))
			}
		case "cohere":
			if key := os.Getenv("COHERE_API_KEY"); key != "" {
				providers = append(providers, NewCohere(key, config.GetEnvOrDefault("COHERE_MODEL", "command-r-08-2024")))
			}
		}
	}
	return providers
}
