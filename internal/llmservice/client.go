package llmservice

import "context"

// Fixed decoding parameters used for every completion call.
const (
	MaxTokens   = 2000
	Temperature = 1.0
	TopP        = 0.7
	TopK        = 50
)

// instructionTemplate wraps the composed prompt for instruct-tuned models.
const instructionTemplate = "<s>[INST]%s[/INST]"

// Completer is a synchronous text-completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
