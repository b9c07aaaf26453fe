package retriever

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"doc-chat/internal/apperr"
	"doc-chat/internal/embedding"
	"doc-chat/internal/vectorstore"
)

// Retriever assembles the context string for a question: embed the query,
// find the closest page of the selected document, then pull the surrounding
// page window.
type Retriever struct {
	embedder embedding.Embedder
	store    vectorstore.Store
}

func New(embedder embedding.Embedder, store vectorstore.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns the context text for the query, scoped to fileName.
// Zero search hits yield an empty string, not an error.
func (r *Retriever) Retrieve(ctx context.Context, fileName, query string) (string, error) {
	vectors, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return "", err
	}

	matches, err := r.store.Search(ctx, fileName, vectors[0], 1)
	if err != nil {
		return "", apperr.New(apperr.RetrievalFailure, err)
	}
	if len(matches) == 0 {
		log.Warn().Str("file_name", fileName).Msg("No matches for query, returning empty context")
		return "", nil
	}

	pageNum := matches[0].Page.PageNum
	pages, err := r.store.PageWindow(ctx, fileName, pageNum)
	if err != nil {
		return "", apperr.New(apperr.RetrievalFailure, err)
	}

	// Store return order is not guaranteed.
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNum < pages[j].PageNum })

	var context strings.Builder
	for _, page := range pages {
		if page.ImageURL != "" {
			fmt.Fprintf(&context, "Image URL: %s\n", page.ImageURL)
		} else if page.Content != "" {
			context.WriteString(page.Content)
			context.WriteString("\n")
		}
	}

	log.Debug().Str("file_name", fileName).Int64("page_num", pageNum).
		Int("window_pages", len(pages)).Msg("Assembled context")
	return context.String(), nil
}
