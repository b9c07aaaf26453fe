package retriever

import (
	"context"
	"errors"
	"testing"

	"doc-chat/internal/apperr"
	"doc-chat/internal/models"
	"doc-chat/internal/vectorstore/memory"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return len(f.vector) }

// fakeStore returns canned responses, so tests control page order exactly.
type fakeStore struct {
	matches   []models.Match
	pages     []models.Page
	searchErr error
	windowErr error
}

func (f *fakeStore) Search(ctx context.Context, fileName string, vector []float32, limit int) ([]models.Match, error) {
	return f.matches, f.searchErr
}

func (f *fakeStore) PageWindow(ctx context.Context, fileName string, center int64) ([]models.Page, error) {
	return f.pages, f.windowErr
}

func (f *fakeStore) Upsert(ctx context.Context, pages []models.Page, vectors [][]float32) error {
	return nil
}

func (f *fakeStore) Close() error { return nil }

func TestRetrieveSortsPagesByNumber(t *testing.T) {
	store := &fakeStore{
		matches: []models.Match{{Page: models.Page{FileName: "doc.pdf", PageNum: 5, Content: "B"}}},
		// Deliberately out of order.
		pages: []models.Page{
			{FileName: "doc.pdf", PageNum: 6, Content: "C"},
			{FileName: "doc.pdf", PageNum: 4, Content: "A"},
			{FileName: "doc.pdf", PageNum: 5, Content: "B"},
		},
	}
	r := New(&fakeEmbedder{vector: []float32{1, 0}}, store)

	got, err := r.Retrieve(context.Background(), "doc.pdf", "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A\nB\nC\n" {
		t.Errorf("got %q, want %q", got, "A\nB\nC\n")
	}
}

func TestRetrieveImageURLTakesPrecedence(t *testing.T) {
	store := &fakeStore{
		matches: []models.Match{{Page: models.Page{FileName: "doc.pdf", PageNum: 2}}},
		pages: []models.Page{
			{FileName: "doc.pdf", PageNum: 1, Content: "text before"},
			{FileName: "doc.pdf", PageNum: 2, Content: "ignored", ImageURL: "https://example.com/fig.png"},
		},
	}
	r := New(&fakeEmbedder{vector: []float32{1}}, store)

	got, err := r.Retrieve(context.Background(), "doc.pdf", "show me the figure")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "text before\nImage URL: https://example.com/fig.png\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRetrieveZeroMatchesYieldsEmptyContext(t *testing.T) {
	r := New(&fakeEmbedder{vector: []float32{1}}, &fakeStore{})

	got, err := r.Retrieve(context.Background(), "doc.pdf", "unanswerable")
	if err != nil {
		t.Fatalf("zero hits must not fail: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty context", got)
	}
}

func TestRetrieveScopedToDocument(t *testing.T) {
	store := memory.New()
	pages := []models.Page{
		{FileName: "a.pdf", PageNum: 1, Content: "alpha"},
		{FileName: "b.pdf", PageNum: 1, Content: "bravo"},
		{FileName: "b.pdf", PageNum: 2, Content: "charlie"},
	}
	vectors := [][]float32{{0, 1}, {1, 0}, {0.9, 0.1}}
	if err := store.Upsert(context.Background(), pages, vectors); err != nil {
		t.Fatal(err)
	}

	// The query vector is closest to b.pdf's pages, but the filter must win.
	r := New(&fakeEmbedder{vector: []float32{1, 0}}, store)
	got, err := r.Retrieve(context.Background(), "a.pdf", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alpha\n" {
		t.Errorf("got %q, want content from a.pdf only", got)
	}
}

func TestRetrieveWindowAtDocumentBoundary(t *testing.T) {
	store := memory.New()
	pages := []models.Page{
		{FileName: "doc.pdf", PageNum: 1, Content: "first"},
		{FileName: "doc.pdf", PageNum: 2, Content: "second"},
	}
	vectors := [][]float32{{1, 0}, {0, 1}}
	if err := store.Upsert(context.Background(), pages, vectors); err != nil {
		t.Fatal(err)
	}

	r := New(&fakeEmbedder{vector: []float32{1, 0}}, store)
	got, err := r.Retrieve(context.Background(), "doc.pdf", "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Best match is page 1; page 0 does not exist and must just be absent.
	if got != "first\nsecond\n" {
		t.Errorf("got %q, want %q", got, "first\nsecond\n")
	}
}

func TestRetrieveErrorKinds(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		r := New(&fakeEmbedder{err: apperr.Newf(apperr.EmbeddingFailure, "model down")}, &fakeStore{})
		_, err := r.Retrieve(context.Background(), "doc.pdf", "q")
		if apperr.KindOf(err) != apperr.EmbeddingFailure {
			t.Errorf("got kind %v, want EmbeddingFailure", apperr.KindOf(err))
		}
	})

	t.Run("search failure", func(t *testing.T) {
		r := New(&fakeEmbedder{vector: []float32{1}}, &fakeStore{searchErr: errors.New("conn refused")})
		_, err := r.Retrieve(context.Background(), "doc.pdf", "q")
		if apperr.KindOf(err) != apperr.RetrievalFailure {
			t.Errorf("got kind %v, want RetrievalFailure", apperr.KindOf(err))
		}
	})

	t.Run("window failure", func(t *testing.T) {
		store := &fakeStore{
			matches:   []models.Match{{Page: models.Page{FileName: "doc.pdf", PageNum: 3}}},
			windowErr: errors.New("timeout"),
		}
		r := New(&fakeEmbedder{vector: []float32{1}}, store)
		_, err := r.Retrieve(context.Background(), "doc.pdf", "q")
		if apperr.KindOf(err) != apperr.RetrievalFailure {
			t.Errorf("got kind %v, want RetrievalFailure", apperr.KindOf(err))
		}
	})
}
