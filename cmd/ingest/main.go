package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"doc-chat/internal/config"
	"doc-chat/internal/embedding"
	"doc-chat/internal/helper"
	"doc-chat/internal/models"
	"doc-chat/internal/parser"
	"doc-chat/internal/vectorstore"
	"doc-chat/internal/vectorstore/chromem"
	"doc-chat/internal/vectorstore/memory"
	"doc-chat/internal/vectorstore/milvus"
	"doc-chat/internal/vectorstore/pgvector"
)

const (
	defaultConfigPath = "./configs/config.yaml"
	embedBatchSize    = 64
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	filePath := flag.String("file", "", "Path to the document file")
	docName := flag.String("doc", "", "Override document name (defaults to the file's base name)")
	imagesPath := flag.String("images", "", "Optional JSON file mapping page number to image URL")
	dryRun := flag.Bool("dry-run", false, "Parse only, do not embed or store")
	configPath := flag.String("config", defaultConfigPath, "Path to YAML config file")
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Please provide a document file using the -file flag")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	pages, err := parser.ParsePages(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing document")
	}
	if *docName != "" {
		for i := range pages {
			pages[i].FileName = *docName
		}
	}
	if *imagesPath != "" {
		if err := applyImageURLs(pages, *imagesPath); err != nil {
			log.Fatal().Err(err).Msg("Error applying image URLs")
		}
	}
	log.Info().Int("pages", len(pages)).Str("file", *filePath).Msg("Parsed document")

	if *dryRun {
		helper.PrettyPrint(pages)
		return
	}

	ctx := context.Background()

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	defer store.Close()

	if ps, ok := store.(*pgvector.Store); ok {
		if err := ps.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error initializing pages table")
		}
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	for start := 0; start < len(pages); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pages) {
			end = len(pages)
		}
		batch := pages[start:end]
		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Content
		}
		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating embeddings")
		}
		if err := store.Upsert(ctx, batch, vectors); err != nil {
			log.Fatal().Err(err).Msg("Error storing pages")
		}
		log.Info().Int("from", start).Int("to", end).Msg("Stored batch")
	}

	log.Info().Int("pages", len(pages)).Msg("Ingest complete")
}

// applyImageURLs merges a {"<page_num>": "<url>"} map into the parsed pages.
func applyImageURLs(pages []models.Page, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var byPage map[string]string
	if err := json.Unmarshal(data, &byPage); err != nil {
		return err
	}
	for i := range pages {
		if url, ok := byPage[strconv.FormatInt(pages[i].PageNum, 10)]; ok {
			pages[i].ImageURL = url
		}
	}
	return nil
}

func newStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorStore.Type {
	case "milvus", "":
		if cfg.VectorStore.Milvus == nil {
			log.Fatal().Msg("milvus config missing")
		}
		return milvus.New(ctx, cfg.VectorStore.Milvus, cfg.VectorStore.Collection)
	case "pgvector":
		if cfg.VectorStore.Pgvector == nil {
			log.Fatal().Msg("pgvector config missing")
		}
		return pgvector.New(cfg.VectorStore.Pgvector)
	case "chromem":
		if cfg.VectorStore.Chromem == nil {
			log.Fatal().Msg("chromem config missing")
		}
		if !cfg.VectorStore.Chromem.InMemory {
			if err := helper.CreateFolder(cfg.VectorStore.Chromem.Path); err != nil {
				log.Fatal().Err(err).Msg("Error creating chromem folder")
			}
		}
		return chromem.New(cfg.VectorStore.Chromem, cfg.VectorStore.Collection)
	case "memory":
		return memory.New(), nil
	default:
		log.Fatal().Str("type", cfg.VectorStore.Type).Msg("Unknown vector store type")
		return nil, nil
	}
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.Embedding.Type {
	case "openai", "":
		return embedding.NewEmbedder(&cfg.Embedding.LLM, cfg.VectorStore.Dimension)
	case "ollama":
		return embedding.NewOllamaEmbedder(&cfg.Embedding.LLM, cfg.VectorStore.Dimension)
	default:
		log.Fatal().Str("type", cfg.Embedding.Type).Msg("Unknown embedder type")
		return nil, nil
	}
}
