package embedding

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"doc-chat/internal/apperr"
	"doc-chat/internal/config"
)

// Embedder maps texts to fixed-dimension vectors. The dimension must match
// the vector store's configured dimension.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// LangchainEmbedder adapts a langchaingo embedder to the Embedder interface.
type LangchainEmbedder struct {
	impl      *embeddings.EmbedderImpl
	dimension int
}

// NewEmbedder creates an embedder over an OpenAI-compatible endpoint.
func NewEmbedder(llmCfg *config.LLMConfig, dimension int) (*LangchainEmbedder, error) {
	log.Debug().Interface("config", map[string]string{
		"base_url":        llmCfg.BaseURL,
		"embedding_model": llmCfg.Model,
	}).Msg("Creating embedder")

	llm, err := openai.New(
		openai.WithBaseURL(llmCfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmCfg.Key, "Bearer ")),
		openai.WithModel(llmCfg.Model),
	)
	if err != nil {
		return nil, apperr.New(apperr.EmbeddingFailure, err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, apperr.New(apperr.EmbeddingFailure, err)
	}
	return &LangchainEmbedder{impl: embedder, dimension: dimension}, nil
}

// NewOllamaEmbedder creates an embedder backed by a local Ollama server.
func NewOllamaEmbedder(llmCfg *config.LLMConfig, dimension int) (*LangchainEmbedder, error) {
	log.Debug().Interface("config", map[string]string{
		"base_url":        llmCfg.BaseURL,
		"embedding_model": llmCfg.Model,
	}).Msg("Creating ollama embedder")

	llm, err := ollama.New(
		ollama.WithServerURL(llmCfg.BaseURL),
		ollama.WithModel(llmCfg.Model),
	)
	if err != nil {
		return nil, apperr.New(apperr.EmbeddingFailure, err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, apperr.New(apperr.EmbeddingFailure, err)
	}
	return &LangchainEmbedder{impl: embedder, dimension: dimension}, nil
}

// EmbedTexts returns one vector per input text, each checked against the
// configured dimension.
func (e *LangchainEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, apperr.New(apperr.EmbeddingFailure, err)
	}
	for i, v := range vectors {
		if len(v) != e.dimension {
			return nil, apperr.Newf(apperr.EmbeddingFailure,
				"vector %d has dimension %d, store expects %d", i, len(v), e.dimension)
		}
	}
	return vectors, nil
}

func (e *LangchainEmbedder) Dimension() int { return e.dimension }
