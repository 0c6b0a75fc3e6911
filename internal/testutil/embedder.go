// Package testutil provides shared testing utilities: a deterministic
// embedder, a fake OpenAI-compatible API server, and a PostgreSQL test
// container with the pgvector extension.
package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// EmbedDim is the dimensionality of vectors produced by HashEmbedder.
// Matches the schema's embedding column.
const EmbedDim = 1536

// HashEmbedder produces deterministic unit vectors from text. Identical
// texts always get identical vectors, so exact-match retrieval can be
// tested without a real model.
type HashEmbedder struct {
	// Err, when set, is returned by every Embed call.
	Err error
	// Calls counts Embed invocations.
	Calls int
}

// Embed returns one deterministic vector per input text.
func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = HashVector(t)
	}
	return vectors, nil
}

// HashVector maps text to a deterministic unit vector of EmbedDim
// dimensions, seeded by the FNV hash of the text.
func HashVector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	v := make([]float32, EmbedDim)
	var norm float64
	for i := range v {
		v[i] = float32(rng.NormFloat64())
		norm += float64(v[i]) * float64(v[i])
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
