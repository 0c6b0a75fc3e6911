// Package config provides application configuration management.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables
//  2. .env file in the working directory (loaded via godotenv)
//  3. Default values
//
// Main configuration categories:
//   - OpenAI: API key, chat model, embedding model, generation parameters
//   - Vector store: backend selection (pgvector or local), persistence
//   - RAG: chunk size and overlap for document splitting
//   - API: HTTP bind address
//   - Logging: level and optional log file
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the OpenAI API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the chat model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbeddingModel indicates the embedding model is invalid.
	ErrInvalidEmbeddingModel = errors.New("invalid embedding model")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidChunking indicates chunk size/overlap values are invalid.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidStoreType indicates an unknown vector store backend.
	ErrInvalidStoreType = errors.New("invalid vector store type")

	// ErrInvalidAPIAddr indicates the API host/port is invalid.
	ErrInvalidAPIAddr = errors.New("invalid API address")

	// ErrInvalidPostgres indicates the PostgreSQL configuration is invalid.
	ErrInvalidPostgres = errors.New("invalid PostgreSQL configuration")
)

// Vector store backend identifiers used in Config.VectorStoreType.
const (
	StorePgvector = "pgvector"
	StoreLocal    = "local"
)

// Default models. text-embedding-3-small outputs 1536 dimensions,
// matching the vector column in db/migrations.
const (
	DefaultChatModel      = "gpt-4"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config stores application configuration.
// SENSITIVE: OpenAIAPIKey and PostgresPassword must never be logged.
type Config struct {
	// OpenAI configuration
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"` // empty = api.openai.com
	OpenAIModel   string `mapstructure:"openai_model"`

	// Embedding configuration
	EmbeddingModel string `mapstructure:"embedding_model"`

	// Vector store configuration
	VectorStoreType  string `mapstructure:"vector_store_type"`
	PersistDirectory string `mapstructure:"chroma_persist_directory"`

	// PostgreSQL configuration (pgvector backend)
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"` // SENSITIVE
	PostgresDBName   string `mapstructure:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// RAG configuration (chunk sizes are in words)
	ChunkSize    int     `mapstructure:"chunk_size"`
	ChunkOverlap int     `mapstructure:"chunk_overlap"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float32 `mapstructure:"temperature"`

	// API configuration
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Logging configuration
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// Load loads configuration from environment variables and an optional
// .env file in the working directory.
// Priority: environment variables > .env file > default values.
func Load() (*Config, error) {
	// .env is optional; environment variables already set take priority
	// because godotenv does not override existing values.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	// Fail fast on bad values.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// OpenAI defaults
	v.SetDefault("openai_model", DefaultChatModel)
	v.SetDefault("embedding_model", DefaultEmbeddingModel)

	// Vector store defaults
	v.SetDefault("vector_store_type", StorePgvector)
	v.SetDefault("chroma_persist_directory", "./data/vectorstore")

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "ragserver")
	v.SetDefault("postgres_password", "ragserver_dev_password")
	v.SetDefault("postgres_db_name", "ragserver")
	v.SetDefault("postgres_ssl_mode", "disable")

	// RAG defaults
	v.SetDefault("chunk_size", 1000)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("temperature", 0.7)

	// API defaults
	v.SetDefault("api_host", "0.0.0.0")
	v.SetDefault("api_port", 8000)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// bindEnvVariables binds every configuration key to its environment
// variable. Keys are bound explicitly so the env schema stays visible
// in one place.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("openai_api_key", "OPENAI_API_KEY")
	mustBind("openai_base_url", "OPENAI_BASE_URL")
	mustBind("openai_model", "OPENAI_MODEL")
	mustBind("embedding_model", "EMBEDDING_MODEL")

	mustBind("vector_store_type", "VECTOR_STORE_TYPE")
	mustBind("chroma_persist_directory", "CHROMA_PERSIST_DIRECTORY")

	mustBind("postgres_host", "POSTGRES_HOST")
	mustBind("postgres_port", "POSTGRES_PORT")
	mustBind("postgres_user", "POSTGRES_USER")
	mustBind("postgres_password", "POSTGRES_PASSWORD")
	mustBind("postgres_db_name", "POSTGRES_DB_NAME")
	mustBind("postgres_ssl_mode", "POSTGRES_SSL_MODE")

	mustBind("chunk_size", "CHUNK_SIZE")
	mustBind("chunk_overlap", "CHUNK_OVERLAP")
	mustBind("max_tokens", "MAX_TOKENS")
	mustBind("temperature", "TEMPERATURE")

	mustBind("api_host", "API_HOST")
	mustBind("api_port", "API_PORT")

	mustBind("log_level", "LOG_LEVEL")
	mustBind("log_file", "LOG_FILE")
}

// APIAddr returns the host:port string for the HTTP server.
func (c *Config) APIAddr() string {
	return net.JoinHostPort(c.APIHost, strconv.Itoa(c.APIPort))
}

// UsesPgvector reports whether the pgvector backend is selected.
func (c *Config) UsesPgvector() bool {
	return strings.EqualFold(c.VectorStoreType, StorePgvector)
}
