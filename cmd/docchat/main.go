package main

import (
	"context"
	"flag"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"doc-chat/internal/answer"
	"doc-chat/internal/cache"
	"doc-chat/internal/config"
	"doc-chat/internal/embedding"
	"doc-chat/internal/llmservice"
	"doc-chat/internal/retriever"
	"doc-chat/internal/session"
	"doc-chat/internal/tui"
	"doc-chat/internal/vectorstore"
	"doc-chat/internal/vectorstore/chromem"
	"doc-chat/internal/vectorstore/memory"
	"doc-chat/internal/vectorstore/milvus"
	"doc-chat/internal/vectorstore/pgvector"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	_ = godotenv.Load()

	configPath := flag.String("config", defaultConfigPath, "Path to YAML config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	ctx := context.Background()

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing completion service")
	}

	gen := answer.NewGenerator(retriever.New(embedder, store), completer)
	svc := answer.NewService(gen, cache.New(cache.Config{
		Disabled:   cfg.Cache.Disabled,
		MaxEntries: cfg.Cache.MaxEntries,
	}))

	sess := session.New()
	log.Info().Str("session_id", sess.ID()).Msg("Starting chat")
	m := tui.New(svc, sess, time.Duration(cfg.Stream.DelayMs)*time.Millisecond)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal().Err(err).Msg("Error running chat")
	}
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

func newCompleter(ctx context.Context, cfg *config.Config) (llmservice.Completer, error) {
	switch cfg.Completion.Type {
	case "bedrock", "":
		if cfg.Completion.Bedrock == nil {
			log.Fatal().Msg("bedrock config missing")
		}
		return llmservice.NewBedrockCompleter(ctx, cfg.Completion.Bedrock)
	case "openai":
		if cfg.Completion.OpenAI == nil {
			log.Fatal().Msg("openai completion config missing")
		}
		return llmservice.NewOpenAICompleter(cfg.Completion.OpenAI)
	default:
		log.Fatal().Str("type", cfg.Completion.Type).Msg("Unknown completion service type")
		return nil, nil
	}
}
