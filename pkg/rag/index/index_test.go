package index

import (
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/store"
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns canned vectors keyed by text. Unknown texts fail.
type stubEmbedder struct {
	vectors map[string][]float32
	failOn  string
	calls   int
}

func (s *stubEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.calls++
	if s.failOn != "" && text == s.failOn {
		return nil, embedding.NewEmbeddingError("stub", errors.New("simulated failure"))
	}
	vec, ok := s.vectors[text]
	if !ok {
		return nil, embedding.NewEmbeddingError("stub", errors.New("unknown text: "+text))
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func chunk(text string) store.Chunk {
	return store.Chunk{Text: text, Metadata: map[string]string{"source": "test"}}
}

func TestVectorIndex_BuildAndSearch(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"cats":  {1, 0, 0},
		"dogs":  {0.9, 0.1, 0},
		"math":  {0, 0, 1},
		"query": {1, 0, 0},
	}}

	idx := NewVectorIndex(embedder, testLogger())
	err := idx.Build(context.Background(), []store.Chunk{chunk("cats"), chunk("dogs"), chunk("math")})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	results, err := idx.Search(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cats", results[0].Chunk.Text)
	assert.Equal(t, "dogs", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestVectorIndex_SearchIsIdempotent(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a":     {1, 0},
		"b":     {0, 1},
		"query": {1, 0},
	}}

	idx := NewVectorIndex(embedder, testLogger())
	require.NoError(t, idx.Build(context.Background(), []store.Chunk{chunk("a"), chunk("b")}))

	first, err := idx.Search(context.Background(), "query", 2)
	require.NoError(t, err)
	second, err := idx.Search(context.Background(), "query", 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestVectorIndex_TiesKeepInsertionOrder(t *testing.T) {
	// Identical vectors produce identical scores.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"first":  {1, 0},
		"second": {1, 0},
		"third":  {1, 0},
		"query":  {1, 0},
	}}

	idx := NewVectorIndex(embedder, testLogger())
	require.NoError(t, idx.Build(context.Background(), []store.Chunk{chunk("first"), chunk("second"), chunk("third")}))

	results, err := idx.Search(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.Text)
	assert.Equal(t, "second", results[1].Chunk.Text)
	assert.Equal(t, "third", results[2].Chunk.Text)
}

func TestVectorIndex_KBounds(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a":     {1, 0},
		"b":     {0, 1},
		"query": {1, 0},
	}}

	idx := NewVectorIndex(embedder, testLogger())
	require.NoError(t, idx.Build(context.Background(), []store.Chunk{chunk("a"), chunk("b")}))

	// k larger than the index returns everything.
	results, err := idx.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// k <= 0 returns an empty slice without calling the embedder.
	before := embedder.calls
	results, err = idx.Search(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, before, embedder.calls)

	results, err = idx.Search(context.Background(), "query", -1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndex_EmptyIndex(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{}}

	idx := NewVectorIndex(embedder, testLogger())
	require.NoError(t, idx.Build(context.Background(), nil))
	assert.Equal(t, 0, idx.Len())

	results, err := idx.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorIndex_BuildFailsOnEmbeddingError(t *testing.T) {
	embedder := &stubEmbedder{
		vectors: map[string][]float32{"good": {1, 0}},
		failOn:  "bad",
	}

	idx := NewVectorIndex(embedder, testLogger())
	err := idx.Build(context.Background(), []store.Chunk{chunk("good"), chunk("bad")})
	require.Error(t, err)

	var embErr *embedding.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
	// A failed build leaves nothing behind.
	assert.Equal(t, 0, idx.Len())
}

func TestVectorIndex_BuildRejectsEmptyChunkText(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{"ok": {1, 0}}}

	idx := NewVectorIndex(embedder, testLogger())
	err := idx.Build(context.Background(), []store.Chunk{chunk("ok"), chunk("   ")})
	require.Error(t, err)

	var embErr *embedding.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestVectorIndex_BuildRejectsDimensionMismatch(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {1, 0, 0},
	}}

	idx := NewVectorIndex(embedder, testLogger())
	err := idx.Build(context.Background(), []store.Chunk{chunk("a"), chunk("b")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}
