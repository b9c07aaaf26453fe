package llmservice

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"doc-chat/internal/apperr"
	"doc-chat/internal/config"
)

// OpenAICompleter calls an OpenAI-compatible chat endpoint (OpenRouter,
// local gateways) with the same fixed decoding parameters as Bedrock.
type OpenAICompleter struct {
	llm *openai.LLM
}

func NewOpenAICompleter(llmCfg *config.LLMConfig) (*OpenAICompleter, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmCfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmCfg.Key, "Bearer ")),
		openai.WithModel(llmCfg.Model),
	)
	if err != nil {
		return nil, err
	}
	return &OpenAICompleter{llm: llm}, nil
}

func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	res, err := o.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(MaxTokens),
		llms.WithTemperature(Temperature),
		llms.WithTopP(TopP),
		llms.WithTopK(TopK),
	)
	if err != nil {
		return "", apperr.New(apperr.ServiceRejected, err)
	}
	if len(res.Choices) == 0 {
		return "", apperr.Newf(apperr.ServiceRejected, "completion returned no choices")
	}
	var completion strings.Builder
	for _, c := range res.Choices {
		completion.WriteString(c.Content)
	}
	return completion.String(), nil
}
