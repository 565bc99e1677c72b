package memory

import (
	"time"

	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// RunRecord is a completed workflow run kept for later inspection. It holds
// results only; vector indexes are never retained past the request.
type RunRecord struct {
	ID          string                   `json:"id"`
	Query       string                   `json:"query"`
	Answer      string                   `json:"answer"`
	Passages    []store.RetrievedPassage `json:"passages"`
	Messages    []llm.Message            `json:"messages"`
	Rewrites    int                      `json:"rewrites"`
	Retrievals  int                      `json:"retrievals"`
	Warnings    []string                 `json:"warnings,omitempty"`
	CompletedAt time.Time                `json:"completed_at"`
}

type RunRepository struct {
	cache *cache.Cache
}

func NewRunRepository() *RunRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &RunRepository{
		cache: c,
	}
}

func (r *RunRepository) Save(record *RunRecord) {
	r.cache.Set(record.ID, record, cache.DefaultExpiration)
}

func (r *RunRepository) Get(runID string) (*RunRecord, bool) {
	if x, found := r.cache.Get(runID); found {
		return x.(*RunRecord), true
	}
	return nil, false
}

func (r *RunRepository) Delete(runID string) {
	r.cache.Delete(runID)
}
