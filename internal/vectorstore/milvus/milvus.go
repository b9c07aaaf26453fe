package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/rs/zerolog/log"

	"doc-chat/internal/config"
	"doc-chat/internal/models"
)

var outputFields = []string{
	models.FieldContent,
	models.FieldPageNum,
	models.FieldImageURL,
	models.FieldFileName,
}

// Store talks to a Milvus collection of page records.
type Store struct {
	client     client.Client
	collection string
	nprobe     int
	timeout    time.Duration
}

func New(ctx context.Context, cfg *config.MilvusConfig, collection string) (*Store, error) {
	c, err := client.NewClient(ctx, client.Config{
		Address: cfg.URI,
		APIKey:  cfg.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}
	nprobe := cfg.Nprobe
	if nprobe <= 0 {
		nprobe = 10
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Store{client: c, collection: collection, nprobe: nprobe, timeout: timeout}, nil
}

func (s *Store) Search(ctx context.Context, fileName string, vector []float32, limit int) ([]models.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sp, err := entity.NewIndexIvfFlatSearchParam(s.nprobe)
	if err != nil {
		return nil, fmt.Errorf("invalid search params: %w", err)
	}
	expr := fmt.Sprintf("%s == '%s'", models.FieldFileName, escape(fileName))
	results, err := s.client.Search(ctx, s.collection, nil, expr, outputFields,
		[]entity.Vector{entity.FloatVector(vector)}, models.FieldVector,
		entity.L2, limit, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	var matches []models.Match
	for _, rs := range results {
		pages, err := pagesFromResultSet(rs.Fields, rs.ResultCount)
		if err != nil {
			return nil, err
		}
		for i, p := range pages {
			score := float32(0)
			if i < len(rs.Scores) {
				score = rs.Scores[i]
			}
			matches = append(matches, models.Match{Page: p, Score: score})
		}
	}
	log.Debug().Str("file_name", fileName).Int("matches", len(matches)).Msg("Milvus search done")
	return matches, nil
}

func (s *Store) PageWindow(ctx context.Context, fileName string, center int64) ([]models.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	expr := fmt.Sprintf("%s == '%s' && %s >= %d && %s <= %d",
		models.FieldFileName, escape(fileName),
		models.FieldPageNum, center-1,
		models.FieldPageNum, center+1)
	rs, err := s.client.Query(ctx, s.collection, nil, expr, outputFields)
	if err != nil {
		return nil, fmt.Errorf("milvus query failed: %w", err)
	}
	return pagesFromResultSet(rs, rowCount(rs))
}

func (s *Store) Upsert(ctx context.Context, pages []models.Page, vectors [][]float32) error {
	if len(pages) != len(vectors) {
		return fmt.Errorf("pages and vectors length mismatch: %d != %d", len(pages), len(vectors))
	}
	if len(pages) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fileNames := make([]string, len(pages))
	pageNums := make([]int64, len(pages))
	contents := make([]string, len(pages))
	imageURLs := make([]string, len(pages))
	for i, p := range pages {
		fileNames[i] = p.FileName
		pageNums[i] = p.PageNum
		contents[i] = p.Content
		imageURLs[i] = p.ImageURL
	}
	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar(models.FieldFileName, fileNames),
		entity.NewColumnInt64(models.FieldPageNum, pageNums),
		entity.NewColumnVarChar(models.FieldContent, contents),
		entity.NewColumnVarChar(models.FieldImageURL, imageURLs),
		entity.NewColumnFloatVector(models.FieldVector, len(vectors[0]), vectors),
	)
	if err != nil {
		return fmt.Errorf("milvus insert failed: %w", err)
	}
	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("milvus flush failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func pagesFromResultSet(rs client.ResultSet, n int) ([]models.Page, error) {
	if n == 0 {
		return nil, nil
	}
	fileCol, _ := rs.GetColumn(models.FieldFileName).(*entity.ColumnVarChar)
	pageCol, _ := rs.GetColumn(models.FieldPageNum).(*entity.ColumnInt64)
	contentCol, _ := rs.GetColumn(models.FieldContent).(*entity.ColumnVarChar)
	imageCol, _ := rs.GetColumn(models.FieldImageURL).(*entity.ColumnVarChar)
	if pageCol == nil {
		return nil, fmt.Errorf("result set missing %s column", models.FieldPageNum)
	}

	pages := make([]models.Page, 0, n)
	for i := 0; i < n; i++ {
		p := models.Page{PageNum: pageCol.Data()[i]}
		if fileCol != nil && i < len(fileCol.Data()) {
			p.FileName = fileCol.Data()[i]
		}
		if contentCol != nil && i < len(contentCol.Data()) {
			p.Content = contentCol.Data()[i]
		}
		if imageCol != nil && i < len(imageCol.Data()) {
			p.ImageURL = imageCol.Data()[i]
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func rowCount(rs client.ResultSet) int {
	for _, col := range rs {
		return col.Len()
	}
	return 0
}

// escape makes a string safe inside a single-quoted Milvus filter literal.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
