package gemini

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/quka-ai/workbench/pkg/ai"
)

const (
	NAME = "gemini"

	DEFAULT_MODEL = "gemini-1.5-flash"
)

type Driver struct {
	client *genai.Client
	model  ai.ModelName
}

func New(ctx context.Context, token string, model ai.ModelName, opts ...option.ClientOption) (*Driver, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(token)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if model.ChatModel == "" {
		model.ChatModel = DEFAULT_MODEL
	}

	return &Driver{
		client: client,
		model:  model,
	}, nil
}

func (s *Driver) Name() string {
	return NAME
}

func (s *Driver) Close() error {
	return s.client.Close()
}

func (s *Driver) Generate(ctx context.Context, prompt ai.Prompt) (ai.GenerateResult, error) {
	slog.Debug("Generate", slog.String("driver", NAME), slog.String("model", s.model.ChatModel))

	var result ai.GenerateResult
	resp, err := s.client.GenerativeModel(s.model.ChatModel).GenerateContent(ctx, genai.Text(prompt.Text))
	if err != nil {
		return result, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return result, errors.New("empty response content")
	}

	if resp.Candidates[0].FinishReason != genai.FinishReasonStop {
		slog.Warn("Generate, ai finished without stop", slog.String("reason", resp.Candidates[0].FinishReason.String()))
	}

	var segments []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			segments = append(segments, string(txt))
		}
	}
	text, ok := ai.FirstText(segments...)
	if !ok {
		return result, errors.New("empty response content")
	}

	result.Text = text
	result.Model = s.model.ChatModel
	if resp.UsageMetadata != nil {
		result.Usage = &openai.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
}
