package llm

import (
	"context"
	"testing"

	"yagami/pkg/yagami"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, yagami.GenerateRequest) (yagami.GenerateResult, error) {
	return yagami.GenerateResult{Text: "ok"}, nil
}

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name       string
		generators map[string]yagami.Generator
		wantErr    bool
	}{
		{
			name:       "valid registry",
			generators: map[string]yagami.Generator{"openai": stubGenerator{}},
		},
		{
			name:    "empty registry",
			wantErr: true,
		},
		{
			name:       "empty key",
			generators: map[string]yagami.Generator{"  ": stubGenerator{}},
			wantErr:    true,
		},
		{
			name:       "nil generator",
			generators: map[string]yagami.Generator{"openai": nil},
			wantErr:    true,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRegistry(testCase.generators)
			if testCase.wantErr && err == nil {
				t.Fatal("expected constructor error")
			}
			if !testCase.wantErr && err != nil {
				t.Fatalf("unexpected constructor error: %v", err)
			}
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry, err := NewRegistry(map[string]yagami.Generator{"openai": stubGenerator{}})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if _, err := registry.Resolve("openai"); err != nil {
		t.Fatalf("resolve configured provider: %v", err)
	}
	if _, err := registry.Resolve(" openai "); err != nil {
		t.Fatalf("resolve with padding: %v", err)
	}
	if _, err := registry.Resolve("gemini"); err == nil {
		t.Fatal("expected error for unconfigured provider")
	}
	if _, err := registry.Resolve(""); err == nil {
		t.Fatal("expected error for empty provider key")
	}
}
