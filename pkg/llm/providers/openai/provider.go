// Package openai adapts any OpenAI-compatible Chat Completions endpoint to
// the neutral generator interface. Groq's API is served through BaseURL.
package openai

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"yagami/pkg/yagami"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ProviderConfig configures one OpenAI-compatible provider instance.
type ProviderConfig struct {
	// APIKey is the credential used to authenticate requests.
	APIKey string
	// BaseURL optionally overrides the OpenAI endpoint.
	//
	// Point this at https://api.groq.com/openai/v1 for Groq.
	BaseURL string
	// Organization optionally sets the OpenAI organization header.
	Organization string
	// MaxRetries optionally overrides the SDK retry count.
	//
	// Nil keeps the SDK default behavior.
	MaxRetries *int
}

// Provider is a yagami generator backed by the Chat Completions API.
type Provider struct {
	chat chatCompletionClient
}

type chatCompletionClient interface {
	New(
		ctx context.Context,
		body openai.ChatCompletionNewParams,
		opts ...option.RequestOption,
	) (*openai.ChatCompletion, error)
}

// New builds one Chat Completions provider instance.
func New(cfg ProviderConfig) (*Provider, error) {
	normalized, err := normalizeProviderConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("new openai provider: %w", err)
	}

	options := make([]option.RequestOption, 0, 4)
	options = append(options, option.WithAPIKey(normalized.APIKey))
	if normalized.BaseURL != "" {
		options = append(options, option.WithBaseURL(normalized.BaseURL))
	}
	if normalized.Organization != "" {
		options = append(options, option.WithOrganization(normalized.Organization))
	}
	if normalized.MaxRetries != nil {
		options = append(options, option.WithMaxRetries(*normalized.MaxRetries))
	}

	client := openai.NewClient(options...)

	return &Provider{chat: &client.Chat.Completions}, nil
}

// Generate runs one Chat Completions request to completion.
func (p *Provider) Generate(
	ctx context.Context,
	req yagami.GenerateRequest,
) (yagami.GenerateResult, error) {
	if p == nil {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate: nil provider")
	}
	if ctx == nil {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate: nil context")
	}
	if p.chat == nil {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate: chat client is nil")
	}
	if err := req.Validate(); err != nil {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate validate request: %w", err)
	}

	params, err := mapGenerateRequest(req)
	if err != nil {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate map request: %w", err)
	}

	completion, err := p.chat.New(ctx, params)
	if err != nil {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate: %w: no choices", yagami.ErrGenerationFailed)
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return yagami.GenerateResult{}, fmt.Errorf("openai generate: %w", yagami.ErrEmptyReply)
	}

	return yagami.GenerateResult{
		Text:       text,
		TokenCount: int(completion.Usage.TotalTokens),
	}, nil
}

func mapGenerateRequest(req yagami.GenerateRequest) (openai.ChatCompletionNewParams, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns))
	for index, turn := range req.Turns {
		switch turn.Role {
		case yagami.RoleSystem:
			messages = append(messages, openai.SystemMessage(turn.Content))
		case yagami.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case yagami.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("turns[%d]: unsupported role %q", index, turn.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(strings.TrimSpace(req.Model)),
		Messages: messages,
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	return params, nil
}

func normalizeProviderConfig(cfg ProviderConfig) (ProviderConfig, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Organization = strings.TrimSpace(cfg.Organization)

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
	if cfg.MaxRetries != nil && *cfg.MaxRetries < 0 {
		return ProviderConfig{}, fmt.Errorf("max_retries must be >= 0")
	}

	return cfg, nil
}

var _ yagami.Generator = (*Provider)(nil)
