package index

import (
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/store"
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
)

// VectorIndex is an in-memory, per-request index. Build embeds every chunk
// once; Search embeds the query and ranks chunks by cosine similarity. An
// index is never shared across requests and is discarded when the request
// finishes.
type VectorIndex struct {
	provider embedding.EmbeddingProvider
	logger   *log.Logger

	chunks  []store.Chunk
	vectors [][]float32
	dim     int
}

func NewVectorIndex(provider embedding.EmbeddingProvider, logger *log.Logger) *VectorIndex {
	return &VectorIndex{
		provider: provider,
		logger:   logger,
	}
}

// Len reports the number of indexed chunks.
func (vi *VectorIndex) Len() int {
	return len(vi.chunks)
}

// Build embeds all chunks and stores them in insertion order. It replaces
// any previous contents. A single embedding failure aborts the whole build
// and leaves the index empty.
func (vi *VectorIndex) Build(ctx context.Context, chunks []store.Chunk) error {
	vi.chunks = nil
	vi.vectors = nil
	vi.dim = 0

	if len(chunks) == 0 {
		return nil
	}

	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk.Text) == "" {
			return embedding.NewEmbeddingError("index.build", fmt.Errorf("chunk %d has no text", i))
		}
		resp, err := vi.provider.Generate(ctx, chunk.Text, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}
		values := resp.Embedding.Values
		if len(values) == 0 {
			return embedding.NewEmbeddingError("index.build", fmt.Errorf("empty vector for chunk %d", i))
		}
		if vi.dim == 0 {
			vi.dim = len(values)
		} else if len(values) != vi.dim {
			return embedding.NewEmbeddingError("index.build", fmt.Errorf("dimension mismatch for chunk %d: got %d, want %d", i, len(values), vi.dim))
		}
		vectors = append(vectors, values)
	}

	vi.chunks = append([]store.Chunk(nil), chunks...)
	vi.vectors = vectors
	vi.logger.Printf("[VectorIndex] Built index with %d chunks (dim=%d)", len(chunks), vi.dim)
	return nil
}

// Search embeds the query and returns the top k chunks by cosine
// similarity, highest first. Ties keep insertion order. k <= 0 or an empty
// index returns an empty slice. Search never mutates the index, so repeated
// calls with the same query return the same results.
func (vi *VectorIndex) Search(ctx context.Context, query string, k int) ([]store.RetrievedPassage, error) {
	if k <= 0 || len(vi.chunks) == 0 {
		return []store.RetrievedPassage{}, nil
	}

	resp, err := vi.provider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := resp.Embedding.Values
	if len(queryVec) != vi.dim {
		return nil, embedding.NewEmbeddingError("index.search", fmt.Errorf("query dimension mismatch: got %d, want %d", len(queryVec), vi.dim))
	}

	passages := make([]store.RetrievedPassage, len(vi.chunks))
	for i := range vi.chunks {
		passages[i] = store.RetrievedPassage{
			Chunk: vi.chunks[i],
			Score: cosineSimilarity(queryVec, vi.vectors[i]),
		}
	}

	// SliceStable keeps insertion order for equal scores.
	sort.SliceStable(passages, func(a, b int) bool {
		return passages[a].Score > passages[b].Score
	})

	if k > len(passages) {
		k = len(passages)
	}
	return passages[:k], nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
