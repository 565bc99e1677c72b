package dto

import (
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/store"
)

// AskRagRequest is the body of POST /api/rag/v1/ask. Callers supply either
// sources to ingest, pre-split chunks, or both.
type AskRagRequest struct {
	Query       string   `json:"query" validate:"required,min=1,max=4000"`
	Sources     []string `json:"sources" validate:"omitempty,max=20,dive,required"`
	Chunks      []string `json:"chunks" validate:"omitempty,max=5000"`
	MaxRewrites *int     `json:"max_rewrites" validate:"omitempty,min=0,max=10"`
	TopK        *int     `json:"top_k" validate:"omitempty,min=1,max=50"`
}

// PassageDTO flattens a retrieved passage for API responses.
type PassageDTO struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

func NewPassageDTOs(passages []store.RetrievedPassage) []PassageDTO {
	out := make([]PassageDTO, len(passages))
	for i, p := range passages {
		out[i] = PassageDTO{
			Text:   p.Chunk.Text,
			Source: p.Chunk.Source(),
			Score:  p.Score,
		}
	}
	return out
}

type AskRagResponse struct {
	RunID         string        `json:"run_id"`
	Answer        string        `json:"answer"`
	Passages      []PassageDTO  `json:"passages"`
	Messages      []llm.Message `json:"messages"`
	Rewrites      int           `json:"rewrites"`
	Retrievals    int           `json:"retrievals"`
	SourcesLoaded int           `json:"sources_loaded"`
	Warnings      []string      `json:"warnings,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}
