package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/aiagentrag/ragserver/internal/log"
)

// searchTimeout bounds vector search queries so a slow index scan
// cannot block a request indefinitely.
const searchTimeout = 10 * time.Second

// PgStore is the PostgreSQL + pgvector backed Store.
// Safe for concurrent use; the pool handles connection management.
type PgStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
	logger   log.Logger
}

// NewPgStore connects to PostgreSQL and returns a PgStore.
// The chunks table must already exist (run db.Migrate first).
func NewPgStore(ctx context.Context, connString string, embedder Embedder, logger log.Logger) (*PgStore, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	// Register the vector type codec on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PgStore{pool: pool, embedder: embedder, logger: logger}, nil
}

// Pool exposes the underlying connection pool for readiness checks.
func (s *PgStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Add embeds and upserts chunks in a single transaction.
func (s *PgStore) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, c := range chunks {
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata for %q: %w", c.ID, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO chunks (id, content, embedding, metadata)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET content = EXCLUDED.content,
			    embedding = EXCLUDED.embedding,
			    metadata = EXCLUDED.metadata`,
			c.ID, c.Content, pgvector.NewVector(vectors[i]), metadataJSON)
		if err != nil {
			return fmt.Errorf("upserting chunk %q: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("added chunks", "count", len(chunks))
	return nil
}

// Search embeds the query and runs a cosine similarity scan.
func (s *PgStore) Search(ctx context.Context, query string, k int, filter map[string]string) ([]Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	vectors, err := s.embedder.Embed(queryCtx, []string{query})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("embedding generation timeout: %w", err)
		}
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	queryVec := pgvector.NewVector(vectors[0])

	// metadata @> $filter is a containment check over the JSONB column;
	// the filter JSON is always produced by json.Marshal, never raw input.
	var rows pgx.Rows
	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("marshaling filter: %w", err)
		}
		rows, err = s.pool.Query(queryCtx, `
			SELECT id, content, metadata, 1 - (embedding <=> $1) AS similarity
			FROM chunks
			WHERE metadata @> $2
			ORDER BY embedding <=> $1
			LIMIT $3`, queryVec, filterJSON, k)
		if err != nil {
			return nil, fmt.Errorf("searching chunks: %w", err)
		}
	} else {
		rows, err = s.pool.Query(queryCtx, `
			SELECT id, content, metadata, 1 - (embedding <=> $1) AS similarity
			FROM chunks
			ORDER BY embedding <=> $1
			LIMIT $2`, queryVec, k)
		if err != nil {
			return nil, fmt.Errorf("searching chunks: %w", err)
		}
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r            Result
			metadataJSON []byte
		)
		if err := rows.Scan(&r.Chunk.ID, &r.Chunk.Content, &metadataJSON, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal(metadataJSON, &r.Chunk.Metadata); err != nil {
			s.logger.Warn("failed to parse chunk metadata", "chunk_id", r.Chunk.ID, "error", err)
			r.Chunk.Metadata = map[string]string{}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	return results, nil
}

// Count returns the number of chunks matching the filter.
func (s *PgStore) Count(ctx context.Context, filter map[string]string) (int, error) {
	var count int64
	if len(filter) > 0 {
		filterJSON, err := json.Marshal(filter)
		if err != nil {
			return 0, fmt.Errorf("marshaling filter: %w", err)
		}
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE metadata @> $1`, filterJSON).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("counting chunks: %w", err)
		}
	} else {
		if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
			return 0, fmt.Errorf("counting chunks: %w", err)
		}
	}
	return int(count), nil
}

// DeleteBySource removes chunks whose file_path or source_url metadata
// equals source.
func (s *PgStore) DeleteBySource(ctx context.Context, source string) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM chunks
		WHERE metadata->>'file_path' = $1 OR metadata->>'source_url' = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks for source %q: %w", source, err)
	}

	deleted := int(tag.RowsAffected())
	s.logger.Debug("deleted chunks by source", "source", source, "count", deleted)
	return deleted, nil
}

// Clear removes every chunk.
func (s *PgStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE chunks`); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	s.logger.Info("cleared vector store")
	return nil
}

// Close releases the connection pool.
func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}
