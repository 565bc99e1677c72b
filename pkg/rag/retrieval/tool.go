package retrieval

import (
	"agentic-rag-be/pkg/rag/index"
	"agentic-rag-be/pkg/store"
	"context"
	"fmt"
	"log"
	"strings"
)

const DefaultTopK = 5

// Retriever fetches passages for a query. The workflow engine only depends
// on this interface, so retrieval backends can be swapped without touching
// the state machine.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]store.RetrievedPassage, error)
	Name() string
	Description() string
}

// Tool adapts a VectorIndex to the Retriever interface with a fixed result
// count chosen at construction.
type Tool struct {
	index  *index.VectorIndex
	topK   int
	logger *log.Logger
}

var _ Retriever = &Tool{}

func NewTool(idx *index.VectorIndex, topK int, logger *log.Logger) *Tool {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Tool{
		index:  idx,
		topK:   topK,
		logger: logger,
	}
}

func (t *Tool) Name() string {
	return "retrieve_documents"
}

func (t *Tool) Description() string {
	return "Search the uploaded documents and return the passages most relevant to a query."
}

func (t *Tool) Retrieve(ctx context.Context, query string) ([]store.RetrievedPassage, error) {
	passages, err := t.index.Search(ctx, query, t.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	t.logger.Printf("[RetrievalTool] query=%q returned %d passages", query, len(passages))
	return passages, nil
}

// FormatPassages renders retrieved passages as a single context block for
// prompting. Empty input yields an explicit marker so graders never see a
// blank context.
func FormatPassages(passages []store.RetrievedPassage) string {
	if len(passages) == 0 {
		return "(no passages retrieved)"
	}
	var sb strings.Builder
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("[%d] (source: %s)\n%s", i+1, p.Chunk.Source(), p.Chunk.Text))
	}
	return sb.String()
}
