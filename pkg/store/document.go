package store

// Chunk is the unit of retrieval: a bounded span of source text plus
// provenance metadata. Chunks are immutable once created; they are produced
// by the splitter (or supplied pre-split by the caller) and owned by the
// vector index for the lifetime of one request.
type Chunk struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RetrievedPassage is a chunk matched by a similarity search.
// Score is cosine similarity (higher = more relevant). Passages are
// transient: they live in the workflow state of one run and are never
// persisted.
type RetrievedPassage struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Source returns the chunk's provenance, or "unknown" when the splitter
// did not record one.
func (c Chunk) Source() string {
	if s, ok := c.Metadata["source"]; ok && s != "" {
		return s
	}
	return "unknown"
}
