package echo

import (
	"context"
	"fmt"

	"github.com/quka-ai/workbench/pkg/ai"
)

const NAME = "echo"

// Driver echoes the user message without leaving the process. Used by the mock mode.
type Driver struct{}

func New() *Driver {
	return &Driver{}
}

func (*Driver) Name() string {
	return NAME
}

func (*Driver) Generate(_ context.Context, prompt ai.Prompt) (ai.GenerateResult, error) {
	return ai.GenerateResult{
		Text:  fmt.Sprintf("[mock] received: %s", prompt.Message),
		Model: NAME,
	}, nil
}
