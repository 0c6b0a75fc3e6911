// Package rag implements the retrieval-augmented generation pipeline:
// document ingestion (chunk, embed, store), similarity search, context
// assembly, and grounded answer generation.
package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aiagentrag/ragserver/internal/document"
	"github.com/aiagentrag/ragserver/internal/log"
	"github.com/aiagentrag/ragserver/internal/vectorstore"
)

// DefaultTopK is the number of chunks retrieved when the caller does
// not specify k.
const DefaultTopK = 5

// Content type metadata values.
const (
	ContentTypeRawText = "raw_text"
	ContentTypeWeb     = "web_content"
)

// Store is the vector store contract the pipeline depends on.
// Satisfied by vectorstore.PgStore and vectorstore.LocalStore.
type Store interface {
	Add(ctx context.Context, chunks []vectorstore.Chunk) error
	Search(ctx context.Context, query string, k int, filter map[string]string) ([]vectorstore.Result, error)
	Count(ctx context.Context, filter map[string]string) (int, error)
	DeleteBySource(ctx context.Context, source string) (int, error)
	Clear(ctx context.Context) error
}

// Generator produces a grounded answer from a question and retrieved
// context. Satisfied by llm.Client.
type Generator interface {
	Complete(ctx context.Context, question, contextText string) (string, error)
}

// Stats describes the state of the pipeline's vector store.
type Stats struct {
	Collection     string `json:"collection"`
	Documents      int    `json:"documents"`
	EmbeddingModel string `json:"embedding_model"`
}

// Config carries the pipeline's construction parameters.
type Config struct {
	Collection     string // logical collection name reported in stats
	EmbeddingModel string // reported in stats
	ChunkSize      int    // words per chunk
	ChunkOverlap   int    // words shared between consecutive chunks
}

// Pipeline ties together document processing, chunking, the vector
// store, and the generator.
type Pipeline struct {
	processor      *document.Processor
	fetcher        *document.Fetcher
	chunker        *Chunker
	store          Store
	generator      Generator
	collection     string
	embeddingModel string
	logger         log.Logger
}

// New creates a Pipeline. generator may be nil when only ingestion and
// search are needed (Ask then returns an error).
func New(cfg Config, store Store, generator Generator, fetcher *document.Fetcher, logger log.Logger) (*Pipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "documents"
	}

	if fetcher == nil {
		fetcher = document.NewFetcher(nil, logger)
	}

	return &Pipeline{
		processor:      document.NewProcessor(logger),
		fetcher:        fetcher,
		chunker:        chunker,
		store:          store,
		generator:      generator,
		collection:     collection,
		embeddingModel: cfg.EmbeddingModel,
		logger:         logger,
	}, nil
}

// AddFile processes a single file and stores its chunks.
// Returns the IDs of the chunks added.
func (p *Pipeline) AddFile(ctx context.Context, path string) ([]string, error) {
	doc, err := p.processor.ProcessFile(path)
	if err != nil {
		return nil, err
	}

	base := map[string]string{
		vectorstore.MetaFilePath: doc.Path,
		vectorstore.MetaFileName: doc.Name,
		"extension":              doc.Ext,
		"size":                   strconv.FormatInt(doc.Size, 10),
	}

	ids, err := p.addChunks(ctx, doc.Content, base)
	if err != nil {
		return nil, err
	}

	p.logger.Info("added file", "path", doc.Path, "chunks", len(ids))
	return ids, nil
}

// AddDirectory ingests every supported file under dir.
// Per-file failures are logged and skipped; the IDs of all successfully
// added chunks are returned.
func (p *Pipeline) AddDirectory(ctx context.Context, dir string) ([]string, error) {
	docs, err := p.processor.ProcessDirectory(dir)
	if err != nil {
		return nil, err
	}

	var all []string
	for _, doc := range docs {
		base := map[string]string{
			vectorstore.MetaFilePath: doc.Path,
			vectorstore.MetaFileName: doc.Name,
			"extension":              doc.Ext,
			"size":                   strconv.FormatInt(doc.Size, 10),
		}
		ids, err := p.addChunks(ctx, doc.Content, base)
		if err != nil {
			p.logger.Warn("failed to ingest file", "path", doc.Path, "error", err)
			continue
		}
		all = append(all, ids...)
	}

	p.logger.Info("added directory", "dir", dir, "files", len(docs), "chunks", len(all))
	return all, nil
}

// AddText stores raw text content with optional caller metadata.
func (p *Pipeline) AddText(ctx context.Context, content string, metadata map[string]string) ([]string, error) {
	base := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		base[k] = v
	}
	base["content_type"] = ContentTypeRawText
	base["size"] = strconv.Itoa(len(content))

	ids, err := p.addChunks(ctx, content, base)
	if err != nil {
		return nil, err
	}

	p.logger.Info("added raw text", "chunks", len(ids))
	return ids, nil
}

// AddURL fetches a web page and stores its readable content.
func (p *Pipeline) AddURL(ctx context.Context, url string) ([]string, error) {
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	base := map[string]string{
		vectorstore.MetaSourceURL: page.URL,
		"content_type":            ContentTypeWeb,
		"size":                    strconv.Itoa(len(page.Content)),
	}
	if page.Title != "" {
		base["title"] = page.Title
	}

	ids, err := p.addChunks(ctx, page.Content, base)
	if err != nil {
		return nil, err
	}

	p.logger.Info("added web content", "url", page.URL, "chunks", len(ids))
	return ids, nil
}

// Search returns the k most similar chunks for the query.
// k <= 0 selects DefaultTopK.
func (p *Pipeline) Search(ctx context.Context, query string, k int, filter map[string]string) ([]vectorstore.Result, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	return p.store.Search(ctx, query, k, filter)
}

// Context retrieves the top-k chunks for the query and formats them as
// a numbered context block for generation.
func (p *Pipeline) Context(ctx context.Context, query string, k int) (string, error) {
	results, err := p.Search(ctx, query, k, nil)
	if err != nil {
		return "", err
	}
	return FormatContext(results), nil
}

// Ask retrieves context for the question and generates a grounded
// answer. The retrieved chunks are returned alongside the answer so
// callers can cite sources.
func (p *Pipeline) Ask(ctx context.Context, question string, k int) (string, []vectorstore.Result, error) {
	if p.generator == nil {
		return "", nil, fmt.Errorf("no generator configured")
	}

	results, err := p.Search(ctx, question, k, nil)
	if err != nil {
		return "", nil, err
	}

	answer, err := p.generator.Complete(ctx, question, FormatContext(results))
	if err != nil {
		return "", nil, err
	}

	return answer, results, nil
}

// DeleteBySource removes every chunk ingested from the given file path
// or URL. Returns the number of chunks removed.
func (p *Pipeline) DeleteBySource(ctx context.Context, source string) (int, error) {
	return p.store.DeleteBySource(ctx, source)
}

// Stats reports the collection name, chunk count, and embedding model.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	count, err := p.store.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Collection:     p.collection,
		Documents:      count,
		EmbeddingModel: p.embeddingModel,
	}, nil
}

// Clear removes every chunk from the store.
func (p *Pipeline) Clear(ctx context.Context) error {
	return p.store.Clear(ctx)
}

func (p *Pipeline) addChunks(ctx context.Context, content string, base map[string]string) ([]string, error) {
	chunks := p.chunker.Split(content, base)
	if len(chunks) == 0 {
		return nil, nil
	}

	if err := p.store.Add(ctx, chunks); err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	return ids, nil
}
