package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"doc-chat/internal/models"
)

// Store is a brute-force in-process backend using squared L2 distance.
// It exists for tests and credential-free local runs.
type Store struct {
	mu      sync.RWMutex
	pages   []models.Page
	vectors [][]float32
}

func New() *Store { return &Store{} }

func (s *Store) Search(ctx context.Context, fileName string, vector []float32, limit int) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matches []models.Match
	for i, p := range s.pages {
		if p.FileName != fileName {
			continue
		}
		matches = append(matches, models.Match{Page: p, Score: sqL2(s.vectors[i], vector)})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score < matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) PageWindow(ctx context.Context, fileName string, center int64) ([]models.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pages []models.Page
	for _, p := range s.pages {
		if p.FileName == fileName && p.PageNum >= center-1 && p.PageNum <= center+1 {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

func (s *Store) Upsert(ctx context.Context, pages []models.Page, vectors [][]float32) error {
	if len(pages) != len(vectors) {
		return errors.New("pages and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, pages...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

func (s *Store) Close() error { return nil }

func sqL2(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
