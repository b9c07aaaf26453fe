package chromem

import (
	"context"
	"fmt"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"doc-chat/internal/config"
	"doc-chat/internal/models"
)

const compress = false

// Store is an embedded chromem-go backend, useful for fully local setups.
// Page entries are keyed "<file_name>#p<page_num>" so neighbor pages can be
// fetched by ID (chromem metadata filters support equality only).
type Store struct {
	db            *chromemgo.DB
	collection    *chromemgo.Collection
	dbPath        string
	encryptionKey string
	filePath      string
}

func New(cfg *config.ChromemConfig, collectionName string) (*Store, error) {
	var db *chromemgo.DB
	var err error
	if cfg.InMemory {
		db = chromemgo.NewDB()
	} else {
		db, err = chromemgo.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	return &Store{
		db:            db,
		collection:    collection,
		dbPath:        cfg.Path,
		encryptionKey: cfg.EncryptionKey,
		filePath:      cfg.Path + "/" + collectionName + ".chromem",
	}, nil
}

func pageID(fileName string, pageNum int64) string {
	return fmt.Sprintf("%s#p%d", fileName, pageNum)
}

func (s *Store) Search(ctx context.Context, fileName string, vector []float32, limit int) ([]models.Match, error) {
	n := limit
	if c := s.collection.Count(); c < n {
		n = c
	}
	if n == 0 {
		return nil, nil
	}
	results, err := s.collection.QueryWithOptions(ctx, chromemgo.QueryOptions{
		QueryEmbedding: vector,
		NResults:       n,
		Where:          map[string]string{models.FieldFileName: fileName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	matches := make([]models.Match, 0, len(results))
	for _, r := range results {
		p, err := pageFromMetadata(r.Content, r.Metadata)
		if err != nil {
			return nil, err
		}
		// chromem reports cosine similarity (higher is better); invert so
		// lower still means closer, like the L2 backends.
		matches = append(matches, models.Match{Page: p, Score: 1 - r.Similarity})
	}
	return matches, nil
}

func (s *Store) PageWindow(ctx context.Context, fileName string, center int64) ([]models.Page, error) {
	var pages []models.Page
	for pn := center - 1; pn <= center+1; pn++ {
		doc, err := s.collection.GetByID(ctx, pageID(fileName, pn))
		if err != nil {
			// Missing neighbors are expected at document boundaries.
			continue
		}
		p, err := pageFromMetadata(doc.Content, doc.Metadata)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func (s *Store) Upsert(ctx context.Context, pages []models.Page, vectors [][]float32) error {
	if len(pages) != len(vectors) {
		return fmt.Errorf("pages and vectors length mismatch: %d != %d", len(pages), len(vectors))
	}
	docs := make([]chromemgo.Document, 0, len(pages))
	for i, p := range pages {
		docs = append(docs, chromemgo.Document{
			ID:      pageID(p.FileName, p.PageNum),
			Content: p.Content,
			Metadata: map[string]string{
				models.FieldFileName: p.FileName,
				models.FieldPageNum:  strconv.FormatInt(p.PageNum, 10),
				models.FieldImageURL: p.ImageURL,
			},
			Embedding: vectors[i],
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

// Export writes the collection to an encrypted file, for in-memory setups.
func (s *Store) Export(ctx context.Context) error {
	if s.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	log.Debug().Str("file_path", s.filePath).Msg("Exporting collection")
	if err := s.db.ExportToFile(s.filePath, compress, s.encryptionKey, s.collection.Name); err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

func pageFromMetadata(content string, md map[string]string) (models.Page, error) {
	pn, err := strconv.ParseInt(md[models.FieldPageNum], 10, 64)
	if err != nil {
		return models.Page{}, fmt.Errorf("bad %s metadata: %v", models.FieldPageNum, err)
	}
	return models.Page{
		FileName: md[models.FieldFileName],
		PageNum:  pn,
		Content:  content,
		ImageURL: md[models.FieldImageURL],
	}, nil
}
