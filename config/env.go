package config

import (
	"os"
	"strconv"
	"strings"
)

// GetEnvOrDefault returns the trimmed value of an environment variable,
// or fallback if it is unset or empty.
func GetEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt parses an integer environment variable, returning fallback on
// absence or parse failure.
func GetEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvBool parses a boolean environment variable, returning fallback on
// absence or parse failure.
func GetEnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvList splits a comma-separated environment variable into trimmed,
// non-empty entries.
func GetEnvList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
