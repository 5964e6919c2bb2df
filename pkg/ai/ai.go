package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
)

type ModelName struct {
	ChatModel string `toml:"chat_model"`
}

// Generator answers a single prompt with a single text reply.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (GenerateResult, error)
	Name() string
}

// Prompt carries the raw user message next to the rendered text sent to a model.
type Prompt struct {
	Message string
	Text    string
}

type GenerateResult struct {
	Text  string
	Model string
	Usage *openai.Usage
}

// FirstText returns the first segment that carries any non-blank text.
func FirstText(segments ...string) (string, bool) {
	return lo.Find(segments, func(s string) bool {
		return strings.TrimSpace(s) != ""
	})
}

func NumTokens(messages []openai.ChatCompletionMessage, model string) (numTokens int, err error) {
	var tokensPerMessage, tokensPerName int
	switch model {
	case "gpt-3.5-turbo-0613",
		"gpt-3.5-turbo-16k-0613",
		"gpt-4-0314",
		"gpt-4-32k-0314",
		"gpt-4-0613",
		"gpt-4-32k-0613":
		tokensPerMessage = 3
		tokensPerName = 1
	case "gpt-3.5-turbo-0301":
		tokensPerMessage = 4 // every message follows <|start|>{role/name}\n{content}<|end|>\n
		tokensPerName = -1   // if there's a name, the role is omitted
	default:
		if strings.Contains(model, "gpt-4") {
			return NumTokens(messages, "gpt-4-0613")
		}
		return NumTokens(messages, "gpt-3.5-turbo-0613")
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		err = fmt.Errorf("encoding for model: %v", err)
		return
	}

	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		numTokens += len(tkm.Encode(message.Name, nil, nil))
		if message.Name != "" {
			numTokens += tokensPerName
		}
	}
	numTokens += 3 // every reply is primed with <|start|>assistant<|message|>
	return numTokens, nil
}

// IsOverLimit reports whether a single user message costs more than limit tokens.
// A limit of zero or less disables the check.
func IsOverLimit(message, model string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	n, err := NumTokens([]openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: message}}, model)
	if err != nil {
		return false, err
	}
	return n > limit, nil
}
