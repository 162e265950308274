package yagami

import (
	"context"
	"fmt"
	"strings"
)

// Generator exposes one blocking LLM text generation operation.
//
// Implementations should keep provider-specific transport details hidden
// behind this neutral interface. The full ordered turn sequence is sent on
// every call; no server-side session state is assumed.
type Generator interface {
	// Generate runs one generation request to completion.
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

// GeneratorRegistry resolves configured generators by stable provider name.
//
// Implementations must be concurrency-safe because handlers can resolve
// generators from multiple workers at the same time.
type GeneratorRegistry interface {
	// Resolve returns one configured generator by name.
	Resolve(provider string) (Generator, error)
}

// GenerateRequest describes one provider generation call.
type GenerateRequest struct {
	// Model identifies which provider model should be used.
	Model string
	// Turns is the ordered conversation context sent to the provider.
	Turns []Turn
	// MaxOutputTokens optionally bounds generated output token count.
	MaxOutputTokens int
	// Temperature optionally controls output randomness.
	Temperature float64
}

// Validate checks one generation request contract.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return fmt.Errorf("validate generate request: missing model")
	}
	if len(r.Turns) == 0 {
		return fmt.Errorf("validate generate request: missing turns")
	}
	for index, turn := range r.Turns {
		if err := turn.Validate(); err != nil {
			return fmt.Errorf("validate generate request turns[%d]: %w", index, err)
		}
	}
	if r.MaxOutputTokens < 0 {
		return fmt.Errorf("validate generate request: max_output_tokens must be >= 0")
	}
	if r.Temperature < 0 {
		return fmt.Errorf("validate generate request: temperature must be >= 0")
	}

	return nil
}

// GenerateResult carries the completed generation output.
type GenerateResult struct {
	// Text is the generated reply body.
	Text string
	// TokenCount reports total token usage when the provider exposes it.
	TokenCount int
}
