// Package vectorstore stores document chunks with embedding vectors
// and retrieves them by cosine similarity.
//
// Two backends are provided, selected by VECTOR_STORE_TYPE:
//   - PgStore: PostgreSQL + pgvector, for production deployments
//   - LocalStore: an in-process index persisted to disk, for single-node use
//
// Both embed content through the configured Embedder on write and on
// query, so callers only ever deal in text.
package vectorstore

import "context"

// Chunk is a piece of a document stored in the vector index.
// Metadata must be flat string pairs so both backends can filter on it.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Result is a single search hit with its cosine similarity
// (1 = identical direction; higher is more similar).
type Result struct {
	Chunk      Chunk
	Similarity float32
}

// Embedder generates embedding vectors for texts, preserving order.
// Implemented by llm.Client and by test doubles.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the vector store contract consumed by the RAG pipeline and
// the HTTP API.
type Store interface {
	// Add embeds and stores the given chunks. Existing IDs are overwritten.
	Add(ctx context.Context, chunks []Chunk) error

	// Search returns up to k chunks most similar to the query,
	// restricted to chunks whose metadata contains every filter pair.
	Search(ctx context.Context, query string, k int, filter map[string]string) ([]Result, error)

	// Count returns the number of stored chunks matching the filter
	// (all chunks when the filter is empty).
	Count(ctx context.Context, filter map[string]string) (int, error)

	// DeleteBySource removes all chunks whose file_path or source_url
	// metadata equals source. Returns the number of chunks removed.
	DeleteBySource(ctx context.Context, source string) (int, error)

	// Clear removes every chunk.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Metadata keys recognized by DeleteBySource and the context formatter.
const (
	MetaFilePath  = "file_path"
	MetaFileName  = "file_name"
	MetaSourceURL = "source_url"
)
