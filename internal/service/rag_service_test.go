package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"agentic-rag-be/internal/config"
	"agentic-rag-be/internal/dto"
	"agentic-rag-be/internal/repository/memory"
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/ingest"
	"agentic-rag-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEmbedder produces a deterministic vector per text so similar inputs
// are not required; every text gets a valid vector.
type hashEmbedder struct{}

func (hashEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	var a, b, c float32
	for i, r := range text {
		switch i % 3 {
		case 0:
			a += float32(r)
		case 1:
			b += float32(r)
		case 2:
			c += float32(r)
		}
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{a, b, c}},
	}, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return nil, embedding.NewEmbeddingError("stub", errors.New("provider down"))
}

// scriptedLLM drives the workflow to a fixed outcome.
type scriptedLLM struct{}

func (scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	switch {
	case strings.Contains(prompt, "routing assistant"):
		return `{"action": "retrieve", "query": "capital of France"}`, nil
	case strings.Contains(prompt, "grader assessing"):
		return `{"relevant": true}`, nil
	case strings.Contains(prompt, "question-answering"):
		return "Paris is the capital of France.", nil
	}
	return "", errors.New("unexpected prompt")
}

func (s scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

// noopLogger satisfies logger.ILogger without output.
type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Rag: config.RagConfig{
			MaxRewrites:  2,
			TopK:         5,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
	}
}

func newTestService(t *testing.T, embedder embedding.EmbeddingProvider) (IRagService, *memory.RunRepository, *gochannel.GoChannel) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	runRepo := memory.NewRunRepository()
	svc := NewRagService(
		testConfig(),
		embedder,
		scriptedLLM{},
		ingest.NewLoader(),
		runRepo,
		pubSub,
		nil, // no NATS in tests
		noopLogger{},
		log.New(io.Discard, "", 0),
	)
	return svc, runRepo, pubSub
}

func TestRagService_AskWithInlineChunks(t *testing.T) {
	svc, _, _ := newTestService(t, hashEmbedder{})

	res, err := svc.Ask(context.Background(), &dto.AskRagRequest{
		Query: "What is the capital of France?",
		Chunks: []string{
			"Paris is the capital and largest city of France.",
			"France is a country in Western Europe.",
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "Paris is the capital of France.", res.Answer)
	assert.Equal(t, 1, res.Retrievals)
	assert.Equal(t, 0, res.Rewrites)
	assert.NotEmpty(t, res.Passages)
	assert.Equal(t, 0, res.SourcesLoaded)
}

func TestRagService_EmptyDocumentSet(t *testing.T) {
	svc, _, _ := newTestService(t, hashEmbedder{})

	_, err := svc.Ask(context.Background(), &dto.AskRagRequest{
		Query:   "anything",
		Sources: []string{"/nonexistent/file.txt"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyDocumentSet)
}

func TestRagService_EmbeddingFailureSurfaced(t *testing.T) {
	svc, _, _ := newTestService(t, failingEmbedder{})

	_, err := svc.Ask(context.Background(), &dto.AskRagRequest{
		Query:  "anything",
		Chunks: []string{"some content"},
	})
	require.Error(t, err)

	var embErr *embedding.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestRagService_RunRecordReachesConsumer(t *testing.T) {
	svc, runRepo, pubSub := newTestService(t, hashEmbedder{})

	consumer := NewConsumerService(pubSub, RunEventsTopic, runRepo)
	require.NoError(t, consumer.Consume(context.Background()))

	res, err := svc.Ask(context.Background(), &dto.AskRagRequest{
		Query:  "What is the capital of France?",
		Chunks: []string{"Paris is the capital of France."},
	})
	require.NoError(t, err)

	// The consumer stores the record asynchronously.
	require.Eventually(t, func() bool {
		_, found := runRepo.Get(res.RunID)
		return found
	}, 2*time.Second, 10*time.Millisecond)

	record, _ := runRepo.Get(res.RunID)
	assert.Equal(t, res.Answer, record.Answer)
	assert.Equal(t, res.RunID, record.ID)
	assert.Equal(t, "What is the capital of France?", record.Query)

	_, found := svc.GetRun(res.RunID)
	assert.True(t, found)
}

func TestRagService_PerRequestOverrides(t *testing.T) {
	svc, _, _ := newTestService(t, hashEmbedder{})

	topK := 1
	maxRewrites := 0
	res, err := svc.Ask(context.Background(), &dto.AskRagRequest{
		Query:       "What is the capital of France?",
		Chunks:      []string{"Paris is the capital.", "France is in Europe.", "The Seine flows through Paris."},
		TopK:        &topK,
		MaxRewrites: &maxRewrites,
	})
	require.NoError(t, err)
	assert.Len(t, res.Passages, 1)
}
