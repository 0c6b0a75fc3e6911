package config

import (
	"fmt"
	"slices"
	"strings"
)

// Maximum allowed values for generation and chunking parameters.
const (
	maxChunkSize = 10000
	maxMaxTokens = 128000
)

// Validate validates configuration values that do not depend on which
// command is running. Returns sentinel errors checkable with errors.Is().
func (c *Config) Validate() error {
	// Model configuration
	if c.OpenAIModel == "" {
		return fmt.Errorf("%w: OPENAI_MODEL cannot be empty", ErrInvalidModelName)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: EMBEDDING_MODEL cannot be empty", ErrInvalidEmbeddingModel)
	}

	// Temperature range: 0.0 (deterministic) to 2.0 (maximum randomness)
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}

	if c.MaxTokens < 1 || c.MaxTokens > maxMaxTokens {
		return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidMaxTokens, maxMaxTokens, c.MaxTokens)
	}

	// Chunking: overlap must leave a positive stride, otherwise the
	// chunker would never advance.
	if c.ChunkSize < 1 || c.ChunkSize > maxChunkSize {
		return fmt.Errorf("%w: chunk_size must be between 1 and %d, got %d", ErrInvalidChunking, maxChunkSize, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got overlap=%d size=%d",
			ErrInvalidChunking, c.ChunkOverlap, c.ChunkSize)
	}

	// Vector store backend
	switch strings.ToLower(c.VectorStoreType) {
	case StorePgvector, StoreLocal:
	default:
		return fmt.Errorf("%w: %q, must be %q or %q",
			ErrInvalidStoreType, c.VectorStoreType, StorePgvector, StoreLocal)
	}

	if strings.EqualFold(c.VectorStoreType, StoreLocal) && c.PersistDirectory == "" {
		return fmt.Errorf("%w: CHROMA_PERSIST_DIRECTORY cannot be empty for the local backend", ErrInvalidStoreType)
	}

	// API bind address
	if c.APIHost == "" {
		return fmt.Errorf("%w: API_HOST cannot be empty", ErrInvalidAPIAddr)
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("%w: API_PORT must be between 1 and 65535, got %d", ErrInvalidAPIAddr, c.APIPort)
	}

	// PostgreSQL settings only matter for the pgvector backend.
	if c.UsesPgvector() {
		if err := c.validatePostgres(); err != nil {
			return err
		}
	}

	return nil
}

// ValidateOpenAI checks the settings required to call the OpenAI API.
// Ingestion, search, and serving all need embeddings, so every command
// except version/help calls this after Validate.
func (c *Config) ValidateOpenAI() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required", ErrMissingAPIKey)
	}
	return nil
}

func (c *Config) validatePostgres() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgres)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535, got %d", ErrInvalidPostgres, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgres)
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("%w: user cannot be empty", ErrInvalidPostgres)
	}

	// Modern SSL modes only - exclude deprecated allow/prefer (MITM vulnerable)
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: ssl mode %q is not valid, must be one of: %v",
			ErrInvalidPostgres, c.PostgresSSLMode, validSSLModes)
	}

	return nil
}
