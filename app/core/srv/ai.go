package srv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/quka-ai/workbench/pkg/ai"
	"github.com/quka-ai/workbench/pkg/ai/echo"
	"github.com/quka-ai/workbench/pkg/ai/gemini"
	"github.com/quka-ai/workbench/pkg/ai/openai"
)

var ErrPromptTooLong = errors.New("message exceeds the prompt token limit")

type AIConfig struct {
	Driver   string `toml:"driver"` // anthropic, openai, gemini, echo
	Token    string `toml:"token"`
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
	// MaxPromptTokens rejects messages above this many tokens, 0 disables the check.
	MaxPromptTokens int `toml:"max_prompt_tokens"`
}

func (c *AIConfig) FromENV() {
	if v := os.Getenv("LLM_DRIVER"); v != "" {
		c.Driver = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("LLM_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.Model = v
	}
	if v, err := strconv.Atoi(os.Getenv("LLM_MAX_PROMPT_TOKENS")); err == nil {
		c.MaxPromptTokens = v
	}
}

type AI struct {
	driver          ai.Generator
	model           string
	maxPromptTokens int
}

func SetupAIDriver(ctx context.Context, cfg AIConfig) (ai.Generator, error) {
	model := ai.ModelName{ChatModel: cfg.Model}
	switch strings.ToLower(cfg.Driver) {
	case openai.NAME_ANTHROPIC, "":
		return openai.NewAnthropic(cfg.Token, cfg.Endpoint, model), nil
	case openai.NAME:
		return openai.New(cfg.Token, cfg.Endpoint, model), nil
	case gemini.NAME:
		return gemini.New(ctx, cfg.Token, model)
	case echo.NAME:
		return echo.New(), nil
	default:
		return nil, fmt.Errorf("unknown ai driver %q", cfg.Driver)
	}
}

func SetupAI(cfg AIConfig) (*AI, error) {
	d, err := SetupAIDriver(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	return NewAI(d, cfg.Model, cfg.MaxPromptTokens), nil
}

func NewAI(driver ai.Generator, model string, maxPromptTokens int) *AI {
	return &AI{
		driver:          driver,
		model:           model,
		maxPromptTokens: maxPromptTokens,
	}
}

func (a *AI) DriverName() string {
	return a.driver.Name()
}

// OverLimit reports whether message exceeds the configured prompt token budget.
func (a *AI) OverLimit(message string) (bool, error) {
	return ai.IsOverLimit(message, a.model, a.maxPromptTokens)
}

// WorkspaceChat answers message for a workspace that has no container behind it.
func (a *AI) WorkspaceChat(ctx context.Context, workspaceID, message string) (ai.GenerateResult, error) {
	if over, err := a.OverLimit(message); err != nil {
		return ai.GenerateResult{}, fmt.Errorf("count prompt tokens: %w", err)
	} else if over {
		return ai.GenerateResult{}, ErrPromptTooLong
	}

	return a.driver.Generate(ctx, ai.NewWorkspacePrompt(workspaceID, message))
}

func ApplyAI(cfg AIConfig) ApplyFunc {
	return func(s *Srv) {
		var err error
		if s.ai, err = SetupAI(cfg); err != nil {
			panic(err)
		}
	}
}

// WithAIDriver installs a ready made driver, used by the mock mode and tests.
func WithAIDriver(d ai.Generator) ApplyFunc {
	return func(s *Srv) {
		s.ai = NewAI(d, "", 0)
	}
}
