// Package gemini adapts the Google Gemini API to the neutral generator
// interface.
package gemini

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"yagami/pkg/yagami"

	"google.golang.org/genai"
)

const defaultAPIVersion = "v1beta"

// ProviderConfig configures one Gemini-backed provider instance.
type ProviderConfig struct {
	// APIKey is the credential used to authenticate requests.
	APIKey string
	// BaseURL optionally overrides the Gemini endpoint.
	BaseURL string
	// APIVersion optionally overrides Gemini API version.
	//
	// Zero defaults to v1beta.
	APIVersion string
}

// Provider is a yagami generator backed by the Gemini API.
type Provider struct {
	models geminiModelsClient
}

type geminiModelsClient interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// New builds one Gemini API provider instance.
func New(cfg ProviderConfig) (*Provider, error) {
	normalized, err := normalizeProviderConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("new gemini provider: %w", err)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  normalized.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    normalized.BaseURL,
			APIVersion: normalized.APIVersion,
		},
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	if client == nil || client.Models == nil {
		return nil, fmt.Errorf("new gemini client: models client is nil")
	}

	return &Provider{models: client.Models}, nil
}

// Generate runs one Gemini generation request to completion.
func (p *Provider) Generate(
	ctx context.Context,
	req yagami.GenerateRequest,
) (yagami.GenerateResult, error) {
	if p == nil {
		return yagami.GenerateResult{}, fmt.Errorf("gemini generate: nil provider")
	}
	if ctx == nil {
		return yagami.GenerateResult{}, fmt.Errorf("gemini generate: nil context")
	}
	if p.models == nil {
		return yagami.GenerateResult{}, fmt.Errorf("gemini generate: models client is nil")
	}
	if err := req.Validate(); err != nil {
		return yagami.GenerateResult{}, fmt.Errorf("gemini generate validate request: %w", err)
	}

	contents, config := mapGenerateRequest(req)

	response, err := p.models.GenerateContent(ctx, strings.TrimSpace(req.Model), contents, config)
	if err != nil {
		return yagami.GenerateResult{}, fmt.Errorf("gemini generate: %w", err)
	}
	if response == nil {
		return yagami.GenerateResult{}, fmt.Errorf("gemini generate: %w: nil response", yagami.ErrGenerationFailed)
	}

	text := strings.TrimSpace(response.Text())
	if text == "" {
		return yagami.GenerateResult{}, fmt.Errorf("gemini generate: %w", yagami.ErrEmptyReply)
	}

	tokenCount := 0
	if response.UsageMetadata != nil {
		tokenCount = int(response.UsageMetadata.TotalTokenCount)
	}

	return yagami.GenerateResult{Text: text, TokenCount: tokenCount}, nil
}

// mapGenerateRequest converts neutral turns into Gemini contents. The system
// turn travels as SystemInstruction; assistant turns use the model role.
func mapGenerateRequest(req yagami.GenerateRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}

	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, turn := range req.Turns {
		switch turn.Role {
		case yagami.RoleSystem:
			config.SystemInstruction = genai.NewContentFromText(turn.Content, genai.RoleUser)
		case yagami.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(turn.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(turn.Content, genai.RoleUser))
		}
	}

	return contents, config
}

func normalizeProviderConfig(cfg ProviderConfig) (ProviderConfig, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.APIVersion = strings.TrimSpace(cfg.APIVersion)

	if cfg.APIKey == "" {
		return ProviderConfig{}, fmt.Errorf("missing api_key")
	}
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return ProviderConfig{}, fmt.Errorf("parse base_url: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return ProviderConfig{}, fmt.Errorf("parse base_url: must include scheme and host")
		}
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}

	return cfg, nil
}

var _ yagami.Generator = (*Provider)(nil)
