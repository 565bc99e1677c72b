package embedding

import (
	"context"
	"fmt"
)

// Task types steer providers that produce asymmetric embeddings.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingResponse is the provider-agnostic result of an embedding call.
type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

// EmbeddingProvider defines the contract for any embedding backend.
type EmbeddingProvider interface {
	// Generate converts a single text into a vector. taskType hints the
	// usage (query vs document) for providers that distinguish the two.
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

// EmbeddingError wraps a provider or network failure during an embedding
// call. Op identifies the provider operation that failed.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (%s): %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// NewEmbeddingError builds an EmbeddingError; nil err returns nil.
func NewEmbeddingError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EmbeddingError{Op: op, Err: err}
}
