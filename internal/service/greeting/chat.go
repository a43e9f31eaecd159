package greeting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"facegreeter/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

// ChatProvider turns a prompt into a short reply.
type ChatProvider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewChatProvider builds the provider selected by CHAT_PROVIDER. It returns nil for "none"
// or when the provider has no API key, in which case greetings use the fallback text.
func NewChatProvider(ctx context.Context, cfg config.ChatConfig) (ChatProvider, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIChat(cfg), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		chat, err := NewGeminiChat(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return chat, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// OpenAIChat talks to any OpenAI compatible chat completion API (x.ai grok by default).
type OpenAIChat struct {
	client    openai.Client
	model     string
	maxTokens int64
}

func NewOpenAIChat(cfg config.ChatConfig) *OpenAIChat {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIChat{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
}

func (c *OpenAIChat) Name() string {
	return "openai:" + c.model
}

func (c *OpenAIChat) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from chat completion")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("empty response from chat completion")
	}
	return reply, nil
}

// GeminiChat uses the Gemini API.
type GeminiChat struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiChat(ctx context.Context, cfg config.ChatConfig) (*GeminiChat, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiChat{client: client, model: cfg.GeminiModel, maxTokens: int32(cfg.MaxTokens)}, nil
}

func (c *GeminiChat) Name() string {
	return "gemini:" + c.model
}

func (c *GeminiChat) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	reply := strings.TrimSpace(result.Text())
	if reply == "" {
		return "", errors.New("no response from Gemini")
	}
	return reply, nil
}
