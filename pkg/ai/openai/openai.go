package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/quka-ai/workbench/pkg/ai"
)

const (
	NAME = "openai"
	// NAME_ANTHROPIC talks to Anthropic through its OpenAI compatible endpoint.
	NAME_ANTHROPIC = "anthropic"

	ANTHROPIC_ENDPOINT      = "https://api.anthropic.com/v1"
	ANTHROPIC_DEFAULT_MODEL = "claude-sonnet-4-5"
)

type Driver struct {
	name   string
	client *openai.Client
	model  ai.ModelName
}

func NewClient(token, proxy string) *openai.Client {
	cfg := openai.DefaultConfig(token)
	if proxy != "" {
		cfg.BaseURL = proxy
	}

	return openai.NewClientWithConfig(cfg)
}

func New(token, proxy string, model ai.ModelName) *Driver {
	if model.ChatModel == "" {
		model.ChatModel = openai.GPT4oMini
	}

	return &Driver{
		name:   NAME,
		client: NewClient(token, proxy),
		model:  model,
	}
}

func NewAnthropic(token, proxy string, model ai.ModelName) *Driver {
	if proxy == "" {
		proxy = ANTHROPIC_ENDPOINT
	}
	if model.ChatModel == "" {
		model.ChatModel = ANTHROPIC_DEFAULT_MODEL
	}
	d := New(token, proxy, model)
	d.name = NAME_ANTHROPIC
	return d
}

func (s *Driver) Name() string {
	return s.name
}

func (s *Driver) Generate(ctx context.Context, prompt ai.Prompt) (ai.GenerateResult, error) {
	slog.Debug("Generate", slog.String("driver", s.name), slog.String("model", s.model.ChatModel))

	var result ai.GenerateResult
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model.ChatModel,
		MaxTokens: 4096,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt.Text,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("completion error: %w", err)
	}

	text, ok := ai.FirstText(lo.Map(resp.Choices, func(item openai.ChatCompletionChoice, _ int) string {
		return item.Message.Content
	})...)
	if !ok {
		return result, fmt.Errorf("completion error: empty response, choices: %d", len(resp.Choices))
	}

	result.Text = text
	result.Model = resp.Model
	result.Usage = &resp.Usage
	return result, nil
}
