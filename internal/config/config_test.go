package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
vector_store:
  milvus:
    uri: "http://localhost:19530"
completion:
  bedrock:
    region: "us-east-1"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VectorStore.Type != "milvus" {
		t.Errorf("store type = %q, want milvus", cfg.VectorStore.Type)
	}
	if cfg.VectorStore.Collection != "rag_vs" {
		t.Errorf("collection = %q, want rag_vs", cfg.VectorStore.Collection)
	}
	if cfg.VectorStore.Dimension != 384 {
		t.Errorf("dimension = %d, want 384", cfg.VectorStore.Dimension)
	}
	if cfg.VectorStore.Milvus.Nprobe != 10 {
		t.Errorf("nprobe = %d, want 10", cfg.VectorStore.Milvus.Nprobe)
	}
	if cfg.Completion.Bedrock.ModelID != "mistral.mistral-7b-instruct-v0:2" {
		t.Errorf("model id = %q", cfg.Completion.Bedrock.ModelID)
	}
	if cfg.Cache.MaxEntries != 128 {
		t.Errorf("cache max entries = %d, want 128", cfg.Cache.MaxEntries)
	}
	if cfg.Stream.DelayMs != 50 {
		t.Errorf("stream delay = %d, want 50", cfg.Stream.DelayMs)
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfig(t, `
vector_store:
  type: chromem
  collection: docs
  dimension: 768
  chromem:
    path: ./data/chromem
cache:
  disabled: true
  max_entries: 16
stream:
  delay_ms: 10
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VectorStore.Type != "chromem" {
		t.Errorf("store type = %q, want chromem", cfg.VectorStore.Type)
	}
	if cfg.VectorStore.Dimension != 768 {
		t.Errorf("dimension = %d, want 768", cfg.VectorStore.Dimension)
	}
	if !cfg.Cache.Disabled {
		t.Error("cache should be disabled")
	}
	if cfg.Cache.MaxEntries != 16 {
		t.Errorf("cache max entries = %d, want 16", cfg.Cache.MaxEntries)
	}
	if cfg.Stream.DelayMs != 10 {
		t.Errorf("stream delay = %d, want 10", cfg.Stream.DelayMs)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MILVUS_URI", "https://cloud.example.com")
	t.Setenv("MILVUS_TOKEN", "tkn")
	t.Setenv("EMBEDDING_API_KEY", "emb-key")

	path := writeConfig(t, `
vector_store:
  milvus:
    uri: "http://localhost:19530"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VectorStore.Milvus.URI != "https://cloud.example.com" {
		t.Errorf("uri = %q, env override lost", cfg.VectorStore.Milvus.URI)
	}
	if cfg.VectorStore.Milvus.Token != "tkn" {
		t.Errorf("token = %q, env override lost", cfg.VectorStore.Milvus.Token)
	}
	if cfg.Embedding.LLM.Key != "emb-key" {
		t.Errorf("embedding key = %q, env override lost", cfg.Embedding.LLM.Key)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "vector_store: [not a map")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
