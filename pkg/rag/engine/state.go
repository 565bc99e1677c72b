package engine

import (
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/store"
)

// node identifies a stage of the workflow. The driver loop in Run switches
// on the current node; every transition is explicit.
type node int

const (
	nodeRoute node = iota
	nodeRetrieve
	nodeGrade
	nodeRewrite
	nodeGenerate
	nodeDone
)

func (n node) String() string {
	switch n {
	case nodeRoute:
		return "route"
	case nodeRetrieve:
		return "retrieve"
	case nodeGrade:
		return "grade"
	case nodeRewrite:
		return "rewrite"
	case nodeGenerate:
		return "generate"
	case nodeDone:
		return "done"
	default:
		return "unknown"
	}
}

// State carries everything a single run accumulates. Messages are
// append-only; Passages hold only the latest retrieval results.
type State struct {
	Query        string // the user's original question, never mutated
	CurrentQuery string // the query the next retrieval will use
	Messages     []llm.Message
	Passages     []store.RetrievedPassage
	RewriteCount int
	MaxRewrites  int
}

func NewState(query string, maxRewrites int) *State {
	return &State{
		Query:        query,
		CurrentQuery: query,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: query},
		},
		MaxRewrites: maxRewrites,
	}
}

func (s *State) AddMessage(role, content string) {
	s.Messages = append(s.Messages, llm.Message{Role: role, Content: content})
}

// Result is what a completed run hands back to the caller.
type Result struct {
	Answer     string                   `json:"answer"`
	Passages   []store.RetrievedPassage `json:"passages"`
	Messages   []llm.Message            `json:"messages"`
	Rewrites   int                      `json:"rewrites"`
	Retrievals int                      `json:"retrievals"`
}
