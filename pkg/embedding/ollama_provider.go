package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// OllamaEmbeddingProvider implements EmbeddingProvider using a local Ollama
// instance (e.g. nomic-embed-text).
type OllamaEmbeddingProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ EmbeddingProvider = &OllamaEmbeddingProvider{}

func NewOllamaEmbeddingProvider(baseURL, modelName string) *OllamaEmbeddingProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaEmbeddingProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (o *OllamaEmbeddingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	// Ollama ignores taskType; the same vector serves queries and documents.
	reqPayload := ollamaEmbeddingRequest{
		Model:  o.ModelName,
		Prompt: text,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, NewEmbeddingError("ollama.generate", fmt.Errorf("marshal request: %w", err))
	}

	url := o.BaseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, NewEmbeddingError("ollama.generate", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, NewEmbeddingError("ollama.generate", fmt.Errorf("ollama request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewEmbeddingError("ollama.generate", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewEmbeddingError("ollama.generate", fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return nil, NewEmbeddingError("ollama.generate", fmt.Errorf("unmarshal response: %w", err))
	}

	if len(ollamaResp.Embedding) == 0 {
		return nil, NewEmbeddingError("ollama.generate", fmt.Errorf("empty embedding for model %s", o.ModelName))
	}

	// Convert float64 -> float32 and normalize to unit length so cosine
	// similarity reduces to a dot product downstream.
	values := make([]float32, len(ollamaResp.Embedding))
	for i, v := range ollamaResp.Embedding {
		values[i] = float32(v)
	}
	normalizeVector(values)

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: values},
	}, nil
}

func normalizeVector(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
