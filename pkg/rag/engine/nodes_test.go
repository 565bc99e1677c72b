package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRouteDecision(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected routeDecision
	}{
		{
			name:     "retrieve with query",
			raw:      `{"action": "retrieve", "query": "capital of France"}`,
			expected: routeDecision{Retrieve: true, Query: "capital of France"},
		},
		{
			name:     "respond",
			raw:      `{"action": "respond", "query": ""}`,
			expected: routeDecision{Retrieve: false},
		},
		{
			name:     "json wrapped in prose",
			raw:      "Sure! Here is my decision:\n```json\n{\"action\": \"retrieve\", \"query\": \"llm agents\"}\n```",
			expected: routeDecision{Retrieve: true, Query: "llm agents"},
		},
		{
			name:     "retrieve with empty query falls back to original",
			raw:      `{"action": "retrieve", "query": ""}`,
			expected: routeDecision{Retrieve: true, Query: "original question"},
		},
		{
			name:     "garbage falls back to respond",
			raw:      "I am not sure what you mean.",
			expected: routeDecision{Retrieve: false},
		},
		{
			name:     "malformed json falls back to respond",
			raw:      `{"action": "retrieve", "query":`,
			expected: routeDecision{Retrieve: false},
		},
		{
			name:     "unknown action falls back to respond",
			raw:      `{"action": "search", "query": "x"}`,
			expected: routeDecision{Retrieve: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRouteDecision(tt.raw, "original question")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseGradeResult(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		relevant bool
	}{
		{"json true", `{"relevant": true}`, true},
		{"json false", `{"relevant": false}`, false},
		{"json in fences", "```json\n{\"relevant\": true}\n```", true},
		{"bare yes", "yes", true},
		{"bare no", "No.", false},
		{"yes with trailing text", "Yes, the passages answer the question.", true},
		{"garbage is irrelevant", "The weather is nice today.", false},
		{"empty is irrelevant", "", false},
		{"json without relevant key falls through", `{"score": 1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseGradeResult(tt.raw)
			assert.Equal(t, tt.relevant, got.Relevant)
		})
	}
}

func TestTrimQuery(t *testing.T) {
	assert.Equal(t, "capital of France", trimQuery(`  "capital of France"  `))
	assert.Equal(t, "plain query", trimQuery("plain query"))
	assert.Equal(t, "", trimQuery("  \n"))
}
