package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
)

// embedBatch bounds how many chunks go to the embedder in one call.
const embedBatch = 64

// Index is an in-memory cosine-similarity index over document chunks.
// It is immutable after Build and safe for concurrent reads.
type Index struct {
	embedder domsvc.Embedder
	chunks   []models.Chunk
	vectors  [][]float32
}

// Build embeds every chunk and returns a queryable index.
func Build(ctx context.Context, embedder domsvc.Embedder, chunks []models.Chunk) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embeddings: %w", domsvc.ErrNotConfigured)
	}
	if len(chunks) == 0 {
		return nil, errors.New("no text to index")
	}
	idx := &Index{embedder: embedder, chunks: chunks, vectors: make([][]float32, 0, len(chunks))}
	for start := 0; start < len(chunks); start += embedBatch {
		end := start + embedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(texts))
		}
		idx.vectors = append(idx.vectors, vecs...)
	}
	return idx, nil
}

func (x *Index) Len() int { return len(x.chunks) }

// Retrieve embeds the query and returns the k chunks closest to it,
// best first. Ties keep document order.
func (x *Index) Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	if k <= 0 || len(x.chunks) == 0 {
		return nil, nil
	}
	qv, err := x.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, errors.New("embedder returned no query vector")
	}

	type scored struct {
		i     int
		score float64
	}
	scores := make([]scored, len(x.vectors))
	for i, v := range x.vectors {
		scores[i] = scored{i: i, score: Cosine(qv[0], v)}
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]models.Chunk, k)
	for i := 0; i < k; i++ {
		out[i] = x.chunks[scores[i].i]
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ChunkDocument splits text and tags every chunk with its source name.
func ChunkDocument(s *Splitter, source, text string) []models.Chunk {
	parts := s.Split(text)
	out := make([]models.Chunk, len(parts))
	for i, p := range parts {
		out[i] = models.Chunk{Source: source, Index: i, Text: p}
	}
	return out
}

var _ domsvc.Retriever = (*Index)(nil)
