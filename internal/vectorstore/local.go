package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"

	"github.com/aiagentrag/ragserver/internal/log"
)

const (
	localIndexFile = "chunks.json"
	localLockFile  = ".lock"
)

// localEntry is the on-disk representation of a stored chunk.
type localEntry struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"`
	Embedding []float32         `json:"embedding"`
}

// LocalStore is a file-backed vector store for single-node deployments.
// The whole index lives in memory and is flushed to
// <dir>/chunks.json after every mutation; embeddings are normalized on
// write so similarity search is a dot product. A file lock guards the
// directory against concurrent processes.
//
// LocalStore is safe for concurrent use within one process.
type LocalStore struct {
	mu       sync.RWMutex
	entries  map[string]localEntry
	dir      string
	lock     *flock.Flock
	embedder Embedder
	logger   log.Logger
}

// NewLocalStore opens (or creates) the index under dir.
// Fails if another process holds the directory lock.
func NewLocalStore(dir string, embedder Embedder, logger log.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating persist directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, localLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring directory lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("persist directory %s is locked by another process", dir)
	}

	s := &LocalStore{
		entries:  make(map[string]localEntry),
		dir:      dir,
		lock:     lock,
		embedder: embedder,
		logger:   logger,
	}

	if err := s.load(); err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	logger.Debug("opened local vector store", "dir", dir, "chunks", len(s.entries))
	return s, nil
}

// Add embeds and stores the chunks, then flushes the index to disk.
func (s *LocalStore) Add(ctx context.Context, chunks []Chunk) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range chunks {
		s.entries[c.ID] = localEntry{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  c.Metadata,
			Embedding: normalize(vectors[i]),
		}
	}

	return s.save()
}

// Search embeds the query and scans the index for the k most similar
// chunks matching the filter.
func (s *LocalStore) Search(ctx context.Context, query string, k int, filter map[string]string) ([]Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	queryVec := normalize(vectors[0])

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.entries))
	for _, e := range s.entries {
		if !metadataMatches(e.Metadata, filter) {
			continue
		}
		results = append(results, Result{
			Chunk:      Chunk{ID: e.ID, Content: e.Content, Metadata: e.Metadata},
			Similarity: dot(queryVec, e.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the number of chunks matching the filter.
func (s *LocalStore) Count(_ context.Context, filter map[string]string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(filter) == 0 {
		return len(s.entries), nil
	}

	count := 0
	for _, e := range s.entries {
		if metadataMatches(e.Metadata, filter) {
			count++
		}
	}
	return count, nil
}

// DeleteBySource removes chunks whose file_path or source_url metadata
// equals source.
func (s *LocalStore) DeleteBySource(_ context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, e := range s.entries {
		if e.Metadata[MetaFilePath] == source || e.Metadata[MetaSourceURL] == source {
			delete(s.entries, id)
			deleted++
		}
	}
	if deleted == 0 {
		return 0, nil
	}

	if err := s.save(); err != nil {
		return deleted, err
	}
	s.logger.Debug("deleted chunks by source", "source", source, "count", deleted)
	return deleted, nil
}

// Clear removes every chunk.
func (s *LocalStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]localEntry)
	if err := s.save(); err != nil {
		return err
	}
	s.logger.Info("cleared vector store")
	return nil
}

// Close flushes the index and releases the directory lock.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(); err != nil {
		_ = s.lock.Unlock()
		return err
	}
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("releasing directory lock: %w", err)
	}
	return nil
}

// load reads the persisted index, tolerating a missing file.
func (s *LocalStore) load() error {
	path := filepath.Join(s.dir, localIndexFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index file: %w", err)
	}

	var entries []localEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing index file %s: %w", path, err)
	}
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

// save writes the index atomically (temp file + rename).
// Callers must hold s.mu.
func (s *LocalStore) save() error {
	entries := make([]localEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	tmp := filepath.Join(s.dir, localIndexFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, localIndexFile)); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}

// metadataMatches reports whether metadata contains every filter pair.
func metadataMatches(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// normalize returns v scaled to unit length. Zero vectors pass through
// unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// dot computes the dot product of two equal-length vectors. For unit
// vectors this equals cosine similarity.
func dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
