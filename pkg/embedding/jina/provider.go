package jina

import (
	"agentic-rag-be/pkg/embedding"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.jina.ai/v1/embeddings"

// JinaProvider implements embedding.EmbeddingProvider using the Jina AI
// embeddings API (jina-embeddings-v2-base-en).
type JinaProvider struct {
	apiKey string
	model  string
	client *http.Client
}

var _ embedding.EmbeddingProvider = &JinaProvider{}

func NewJinaProvider(apiKey, model string) *JinaProvider {
	if model == "" {
		model = "jina-embeddings-v2-base-en"
	}
	return &JinaProvider{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type jinaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type jinaResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (j *JinaProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	// Jina v2 models embed queries and documents symmetrically.
	reqPayload := jinaRequest{
		Model: j.model,
		Input: []string{text},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, embedding.NewEmbeddingError("jina.generate", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", defaultBaseURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, embedding.NewEmbeddingError("jina.generate", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, embedding.NewEmbeddingError("jina.generate", fmt.Errorf("jina request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, embedding.NewEmbeddingError("jina.generate", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, embedding.NewEmbeddingError("jina.generate", fmt.Errorf("jina error: status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}

	var jinaResp jinaResponse
	if err := json.Unmarshal(bodyBytes, &jinaResp); err != nil {
		return nil, embedding.NewEmbeddingError("jina.generate", fmt.Errorf("unmarshal response: %w", err))
	}

	if len(jinaResp.Data) == 0 || len(jinaResp.Data[0].Embedding) == 0 {
		return nil, embedding.NewEmbeddingError("jina.generate", fmt.Errorf("empty embedding for model %s", j.model))
	}

	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: jinaResp.Data[0].Embedding},
	}, nil
}
