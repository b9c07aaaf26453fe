package vectorstore

import (
	"context"

	"doc-chat/internal/models"
)

// WindowRadius is how many neighboring pages are pulled on each side of the
// best match when assembling context.
const WindowRadius = 1

// Store indexes page embeddings and supports filtered nearest-neighbor
// search plus scalar-filtered page lookups. Implementations must scope every
// operation to a single document via its file name.
type Store interface {
	// Search returns the closest pages of the named document, best first.
	Search(ctx context.Context, fileName string, vector []float32, limit int) ([]models.Match, error)

	// PageWindow returns the pages of the named document with page number in
	// [center-WindowRadius, center+WindowRadius]. Missing neighbors are
	// simply absent; order is not guaranteed.
	PageWindow(ctx context.Context, fileName string, center int64) ([]models.Page, error)

	// Upsert stores page records with their embeddings.
	Upsert(ctx context.Context, pages []models.Page, vectors [][]float32) error

	Close() error
}
