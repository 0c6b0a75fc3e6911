package rag

import (
	"fmt"
	"strings"

	"github.com/aiagentrag/ragserver/internal/vectorstore"
)

// FormatContext renders search results as a numbered context block for
// the generator. Returns a fixed message when there are no results so
// the generator can say it does not know.
func FormatContext(results []vectorstore.Result) string {
	if len(results) == 0 {
		return "No relevant context found."
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Context %d] (Source: %s):\n%s", i+1, sourceName(r.Chunk), r.Chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}

func sourceName(c vectorstore.Chunk) string {
	if name := c.Metadata[vectorstore.MetaFileName]; name != "" {
		return name
	}
	if url := c.Metadata[vectorstore.MetaSourceURL]; url != "" {
		return url
	}
	if c.Metadata["content_type"] == ContentTypeRawText {
		return "raw text"
	}
	return "unknown"
}
