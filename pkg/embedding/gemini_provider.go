package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const geminiEmbeddingURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent"

// GeminiEmbeddingProvider implements EmbeddingProvider using the Gemini
// embedContent API (text-embedding-004).
type GeminiEmbeddingProvider struct {
	apiKey string
	model  string
	client *http.Client
}

var _ EmbeddingProvider = &GeminiEmbeddingProvider{}

func NewGeminiEmbeddingProvider(apiKey, model string) *GeminiEmbeddingProvider {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiEmbeddingProvider{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiEmbeddingRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

func (g *GeminiEmbeddingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	reqPayload := geminiEmbeddingRequest{
		Model: "models/" + g.model,
		Content: geminiContent{
			Parts: []geminiPart{{Text: text}},
		},
		TaskType: taskType,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, NewEmbeddingError("gemini.generate", fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf(geminiEmbeddingURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, NewEmbeddingError("gemini.generate", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, NewEmbeddingError("gemini.generate", fmt.Errorf("gemini request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewEmbeddingError("gemini.generate", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewEmbeddingError("gemini.generate", fmt.Errorf("gemini error: status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}

	var embResp EmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &embResp); err != nil {
		return nil, NewEmbeddingError("gemini.generate", fmt.Errorf("unmarshal response: %w", err))
	}

	if len(embResp.Embedding.Values) == 0 {
		return nil, NewEmbeddingError("gemini.generate", fmt.Errorf("empty embedding for model %s", g.model))
	}

	return &embResp, nil
}
