package rag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aiagentrag/ragserver/internal/vectorstore"
)

// Chunk metadata keys written by the chunker.
const (
	MetaChunkIndex = "chunk_index"
	MetaChunkSize  = "chunk_size"
	MetaStartWord  = "start_word"
	MetaEndWord    = "end_word"
)

// Chunker splits text into overlapping word windows.
// A window holds size words and consecutive windows overlap by
// overlap words, so the stride is size-overlap.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker validates the parameters and returns a Chunker.
// overlap must be smaller than size; an overlap >= size would mean the
// window never advances.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size < 1 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks text into vectorstore chunks, each with a fresh UUID and
// the base metadata plus per-chunk position fields. Empty or
// whitespace-only text yields no chunks.
func (c *Chunker) Split(text string, base map[string]string) []vectorstore.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	stride := c.size - c.overlap

	var chunks []vectorstore.Chunk
	for start := 0; start < len(words); start += stride {
		end := min(start+c.size, len(words))

		metadata := make(map[string]string, len(base)+4)
		for k, v := range base {
			metadata[k] = v
		}
		metadata[MetaChunkIndex] = strconv.Itoa(len(chunks))
		metadata[MetaChunkSize] = strconv.Itoa(end - start)
		metadata[MetaStartWord] = strconv.Itoa(start)
		metadata[MetaEndWord] = strconv.Itoa(end)

		chunks = append(chunks, vectorstore.Chunk{
			ID:       uuid.NewString(),
			Content:  strings.Join(words[start:end], " "),
			Metadata: metadata,
		})

		if end == len(words) {
			break
		}
	}

	return chunks
}
