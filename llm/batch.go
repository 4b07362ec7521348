package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// Batcher runs an ordered sequence of text items through a ranked provider
// list in fixed-size batches. Translation, vocabulary analysis, and
// title/appreciation generation all share this machinery; only the system
// instruction and result shape differ per use.
//
// Batches are issued sequentially, never in parallel, to stay inside
// provider rate limits. The output is merged back batch-by-batch and is
// always exactly as long as the input.
type Batcher[T any] struct {
	// Providers are tried strictly in order per batch; the first call that
	// succeeds and parses wins.
	Providers []Provider
	// BatchSize caps items per provider call.
	BatchSize int
	// System is the fixed instruction sent with every batch.
	System string
	// Timeout bounds each individual provider call.
	Timeout time.Duration
	// Label prefixes log lines, e.g. "Translator".
	Label string
}

// Parser decodes one raw provider response into per-item results. A
// returned error means the response was unusable and the next provider
// should be tried.
type Parser[T any] func(raw string) ([]T, error)

// Run partitions items into batches, resolves each batch through the
// provider list, and merges results back onto the input order. The result
// slice always has exactly len(items) entries: short parses are padded
// with zero values, long ones truncated, so downstream index-based merging
// can rely on 1:1 correspondence unconditionally.
func (b *Batcher[T]) Run(ctx context.Context, items []string) ([]T, error) {
	parse := func(raw string) ([]T, error) {
		var out []T
		if err := ParseArray(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return b.RunWith(ctx, items, parse)
}

// RunWith is Run with a caller-supplied response parser, for result shapes
// that are not a plain JSON array of T.
func (b *Batcher[T]) RunWith(ctx context.Context, items []string, parse Parser[T]) ([]T, error) {
	if len(items) == 0 {
		return []T{}, nil
	}

	size := b.BatchSize
	if size <= 0 {
		size = 20
	}

	results := make([]T, 0, len(items))
	batchNum := 0
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batch := items[start:end]
		batchNum++

		log.Printf("[%s] Processing batch %d (%d items)...", b.Label, batchNum, len(batch))

		parsed, err := b.resolveBatch(ctx, batch, parse)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", batchNum, err)
		}

		results = append(results, repairCardinality(parsed, len(batch), b.Label)...)
	}
	return results, nil
}

// resolveBatch tries each provider in order until one returns a parseable
// response. The batch payload is the JSON-encoded item array.
func (b *Batcher[T]) resolveBatch(ctx context.Context, batch []string, parse Parser[T]) ([]T, error) {
	prompt, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}

	raw, err := Generate(ctx, b.Providers, b.System, string(prompt), b.Timeout, b.Label, parseProbe(parse))
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

// parseProbe adapts a typed parser into the validation hook Generate uses
// to decide whether a provider's response is acceptable.
func parseProbe[T any](parse Parser[T]) func(string) error {
	return func(raw string) error {
		_, err := parse(raw)
		return err
	}
}

// Generate tries providers strictly in order and returns the first raw
// response that passes validate (nil validate accepts anything). When
// every provider fails or yields unparseable output, the aggregated error
// carries each attempt's failure.
func Generate(ctx context.Context, providers []Provider, system, prompt string, timeout time.Duration, label string, validate func(string) error) (string, error) {
	if len(providers) == 0 {
		return "", ErrNoProviders
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var attempts []error
	for _, p := range providers {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := p.Generate(callCtx, system, prompt)
		cancel()
		if err != nil {
			log.Printf("[%s] %s failed: %v, trying next...", label, p.Name(), err)
			attempts = append(attempts, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if validate != nil {
			if err := validate(raw); err != nil {
				log.Printf("[%s] %s response unparseable: %v, trying next...", label, p.Name(), err)
				attempts = append(attempts, fmt.Errorf("%s: %w", p.Name(), err))
				continue
			}
		}
		return raw, nil
	}
	return "", fmt.Errorf("all providers failed: %w", errors.Join(attempts...))
}

// repairCardinality pads with zero values or truncates so the parsed
// result length exactly equals the batch length.
func repairCardinality[T any](parsed []T, want int, label string) []T {
	if len(parsed) == want {
		return parsed
	}
	log.Printf("[%s] Warning: got %d results, expected %d. Adjusting...", label, len(parsed), want)
	if len(parsed) > want {
		return parsed[:want]
	}
	var zero T
	for len(parsed) < want {
		parsed = append(parsed, zero)
	}
	return parsed
}
