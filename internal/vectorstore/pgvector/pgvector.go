package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"doc-chat/internal/config"
	"doc-chat/internal/models"
)

// PageRecord is one document page row with its embedding.
type PageRecord struct {
	bun.BaseModel `bun:"table:pages,alias:p"`
	ID            int64     `bun:"id,pk,autoincrement"`
	FileName      string    `bun:"file_name,notnull"`
	PageNum       int64     `bun:"page_num,notnull"`
	Content       string    `bun:"content"`
	ImageURL      string    `bun:"image_url"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(384)"`
}

// Store keeps page records in Postgres with the pgvector extension.
type Store struct {
	db *bun.DB
}

func New(cfg *config.PgvectorConfig) (*Store, error) {
	dsn := cfg.URL + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Key)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db}, nil
}

// Init creates the pages table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*PageRecord)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *Store) Search(ctx context.Context, fileName string, vector []float32, limit int) ([]models.Match, error) {
	var recs []struct {
		PageRecord
		Distance float32 `bun:"distance"`
	}
	err := s.db.NewSelect().
		Model((*PageRecord)(nil)).
		ColumnExpr("p.*").
		ColumnExpr("embedding <-> ? AS distance", vectorLiteral(vector)).
		Where("file_name = ?", fileName).
		OrderExpr("distance").
		Limit(limit).
		Scan(ctx, &recs)
	if err != nil {
		return nil, fmt.Errorf("pgvector search failed: %w", err)
	}
	matches := make([]models.Match, 0, len(recs))
	for _, r := range recs {
		matches = append(matches, models.Match{Page: toPage(r.PageRecord), Score: r.Distance})
	}
	return matches, nil
}

func (s *Store) PageWindow(ctx context.Context, fileName string, center int64) ([]models.Page, error) {
	var recs []PageRecord
	err := s.db.NewSelect().
		Model(&recs).
		Where("file_name = ?", fileName).
		Where("page_num BETWEEN ? AND ?", center-1, center+1).
		Order("page_num").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pgvector page query failed: %w", err)
	}
	pages := make([]models.Page, 0, len(recs))
	for _, r := range recs {
		pages = append(pages, toPage(r))
	}
	return pages, nil
}

func (s *Store) Upsert(ctx context.Context, pages []models.Page, vectors [][]float32) error {
	if len(pages) != len(vectors) {
		return fmt.Errorf("pages and vectors length mismatch: %d != %d", len(pages), len(vectors))
	}
	if len(pages) == 0 {
		return nil
	}
	recs := make([]PageRecord, len(pages))
	for i, p := range pages {
		recs[i] = PageRecord{
			FileName:  p.FileName,
			PageNum:   p.PageNum,
			Content:   p.Content,
			ImageURL:  p.ImageURL,
			Embedding: vectors[i],
		}
	}
	_, err := s.db.NewInsert().Model(&recs).Exec(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func toPage(r PageRecord) models.Page {
	return models.Page{
		FileName: r.FileName,
		PageNum:  r.PageNum,
		Content:  r.Content,
		ImageURL: r.ImageURL,
	}
}

// vectorLiteral renders a pgvector input literal like [0.1,0.2].
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
