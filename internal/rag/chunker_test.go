package rag

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewChunker_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewChunker(tt.size, tt.overlap); err == nil {
				t.Fatalf("NewChunker(%d, %d) = nil error, want error", tt.size, tt.overlap)
			}
		})
	}
}

func TestChunker_Split(t *testing.T) {
	c, err := NewChunker(4, 1)
	if err != nil {
		t.Fatal(err)
	}

	words := make([]string, 10)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	chunks := c.Split(strings.Join(words, " "), nil)

	// stride 3: [0,4) [3,7) [6,10)
	want := []string{
		"w0 w1 w2 w3",
		"w3 w4 w5 w6",
		"w6 w7 w8 w9",
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d content = %q, want %q", i, chunks[i].Content, w)
		}
		if chunks[i].ID == "" {
			t.Errorf("chunk %d has empty ID", i)
		}
	}

	if got := chunks[1].Metadata[MetaChunkIndex]; got != "1" {
		t.Errorf("chunk_index = %q, want %q", got, "1")
	}
	if got := chunks[1].Metadata[MetaStartWord]; got != "3" {
		t.Errorf("start_word = %q, want %q", got, "3")
	}
	if got := chunks[1].Metadata[MetaEndWord]; got != "7" {
		t.Errorf("end_word = %q, want %q", got, "7")
	}
	if got := chunks[2].Metadata[MetaChunkSize]; got != "4" {
		t.Errorf("chunk_size = %q, want %q", got, "4")
	}
}

func TestChunker_Split_ShortText(t *testing.T) {
	c, err := NewChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Split("just a few words", nil)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != "just a few words" {
		t.Errorf("content = %q", chunks[0].Content)
	}
	if got := chunks[0].Metadata[MetaChunkSize]; got != "4" {
		t.Errorf("chunk_size = %q, want %q", got, "4")
	}
}

func TestChunker_Split_Empty(t *testing.T) {
	c, err := NewChunker(10, 2)
	if err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"", "   ", "\n\t "} {
		if chunks := c.Split(text, nil); chunks != nil {
			t.Errorf("Split(%q) = %d chunks, want none", text, len(chunks))
		}
	}
}

func TestChunker_Split_BaseMetadata(t *testing.T) {
	c, err := NewChunker(3, 0)
	if err != nil {
		t.Fatal(err)
	}

	base := map[string]string{"file_name": "notes.txt"}
	chunks := c.Split("one two three four", base)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Metadata["file_name"] != "notes.txt" {
			t.Errorf("chunk %d missing base metadata", i)
		}
	}
	if len(base) != 1 {
		t.Errorf("base metadata mutated: %v", base)
	}
}

func TestChunker_Split_UniqueIDs(t *testing.T) {
	c, err := NewChunker(2, 0)
	if err != nil {
		t.Fatal(err)
	}

	chunks := c.Split("a b c d e f", nil)
	seen := make(map[string]bool)
	for _, ch := range chunks {
		if seen[ch.ID] {
			t.Fatalf("duplicate chunk ID %q", ch.ID)
		}
		seen[ch.ID] = true
	}
}
