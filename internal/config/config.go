package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LLMConfig points at an OpenAI-compatible or Ollama endpoint.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
	Model   string `yaml:"model"`
}

type MilvusConfig struct {
	URI         string `yaml:"uri"`
	Token       string `yaml:"token"`
	Nprobe      int    `yaml:"nprobe"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type PgvectorConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type ChromemConfig struct {
	Path          string `yaml:"path"`
	InMemory      bool   `yaml:"in_memory"`
	EncryptionKey string `yaml:"encryption_key"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type       string          `yaml:"type"`
	Collection string          `yaml:"collection"`
	Dimension  int             `yaml:"dimension"`
	Milvus     *MilvusConfig   `yaml:"milvus,omitempty"`
	Pgvector   *PgvectorConfig `yaml:"pgvector,omitempty"`
	Chromem    *ChromemConfig  `yaml:"chromem,omitempty"`
}

// EmbeddingConfig selects the embedder provider.
type EmbeddingConfig struct {
	Type string    `yaml:"type"` // openai | ollama
	LLM  LLMConfig `yaml:"llm"`
}

type BedrockConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	ModelID         string `yaml:"model_id"`
	TimeoutSecs     int    `yaml:"timeout_secs"`
}

// CompletionConfig selects the completion service backend.
type CompletionConfig struct {
	Type    string         `yaml:"type"` // bedrock | openai
	Bedrock *BedrockConfig `yaml:"bedrock,omitempty"`
	OpenAI  *LLMConfig     `yaml:"openai,omitempty"`
}

type CacheConfig struct {
	Disabled   bool `yaml:"disabled"`
	MaxEntries int  `yaml:"max_entries"`
}

type StreamConfig struct {
	DelayMs int `yaml:"delay_ms"`
}

type Config struct {
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Completion  CompletionConfig  `yaml:"completion"`
	Cache       CacheConfig       `yaml:"cache"`
	Stream      StreamConfig      `yaml:"stream"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "milvus"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "rag_vs"
	}
	if cfg.VectorStore.Dimension == 0 {
		cfg.VectorStore.Dimension = 384
	}
	if cfg.VectorStore.Milvus != nil && cfg.VectorStore.Milvus.Nprobe == 0 {
		cfg.VectorStore.Milvus.Nprobe = 10
	}
	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = "openai"
	}
	if cfg.Completion.Type == "" {
		cfg.Completion.Type = "bedrock"
	}
	if cfg.Completion.Bedrock != nil && cfg.Completion.Bedrock.ModelID == "" {
		cfg.Completion.Bedrock.ModelID = "mistral.mistral-7b-instruct-v0:2"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 128
	}
	if cfg.Stream.DelayMs == 0 {
		cfg.Stream.DelayMs = 50
	}
}

// Secrets come from the environment when set, so the YAML file can stay
// free of credentials.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MILVUS_URI"); v != "" && cfg.VectorStore.Milvus != nil {
		cfg.VectorStore.Milvus.URI = v
	}
	if v := os.Getenv("MILVUS_TOKEN"); v != "" && cfg.VectorStore.Milvus != nil {
		cfg.VectorStore.Milvus.Token = v
	}
	if cfg.Completion.Bedrock != nil {
		if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
			cfg.Completion.Bedrock.Region = v
		}
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			cfg.Completion.Bedrock.AccessKeyID = v
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			cfg.Completion.Bedrock.SecretAccessKey = v
		}
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.LLM.Key = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Completion.OpenAI != nil {
		cfg.Completion.OpenAI.Key = v
	}
}
