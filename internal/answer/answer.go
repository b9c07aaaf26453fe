package answer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"doc-chat/internal/apperr"
	"doc-chat/internal/cache"
	"doc-chat/internal/llmservice"
	"doc-chat/internal/models"
)

// ContextRetriever is the retrieval side of the pipeline.
type ContextRetriever interface {
	Retrieve(ctx context.Context, fileName, query string) (string, error)
}

// Generator composes a prompt from retrieved context and forwards it to the
// completion service. Errors keep their pipeline stage tag.
type Generator struct {
	retriever ContextRetriever
	completer llmservice.Completer
}

func NewGenerator(retriever ContextRetriever, completer llmservice.Completer) *Generator {
	return &Generator{retriever: retriever, completer: completer}
}

func (g *Generator) Generate(ctx context.Context, documentName, question string) (string, error) {
	context, err := g.retriever.Retrieve(ctx, documentName, question)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(models.QuestionPromptTemplate, context, question)
	return g.completer.Complete(ctx, prompt)
}

// Service is the user-facing boundary: cached, and it never fails — on any
// error the user gets one of the two fallback messages instead.
type Service struct {
	gen   *Generator
	cache *cache.Cache
}

func NewService(gen *Generator, c *cache.Cache) *Service {
	return &Service{gen: gen, cache: c}
}

// Answer returns the answer for (documentName, question), serving repeats
// from the cache. Fallback messages are never cached, so a failed question
// is retried on the next ask.
func (s *Service) Answer(ctx context.Context, documentName, question string) string {
	result, err := s.cache.Do(cache.Key(documentName, question), func() (string, error) {
		return s.gen.Generate(ctx, documentName, question)
	})
	if err != nil {
		kind := apperr.KindOf(err)
		log.Error().Err(err).Str("kind", kind.String()).
			Str("document", documentName).Msg("Error generating answer")
		switch kind {
		case apperr.ServiceThrottled, apperr.ServiceRejected:
			return models.FallbackServiceMsg
		default:
			return models.FallbackGenericMsg
		}
	}
	return result
}
