package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// routeDecision is the parsed outcome of the routing call.
type routeDecision struct {
	Retrieve bool
	Query    string
}

// GradeResult is the parsed outcome of a grading call.
type GradeResult struct {
	Relevant bool
}

// --- Prompts ---

func buildRoutePrompt(question, toolName, toolDescription string) string {
	return fmt.Sprintf(`You are a routing assistant. You have access to one tool:

Tool name: %s
Tool description: %s

Decide whether answering the user's question requires searching the documents, or whether you can respond directly (greetings, small talk, questions about yourself).

User question: %s

Respond ONLY with JSON in this exact format:
{"action": "retrieve", "query": "<search query>"}
or
{"action": "respond", "query": ""}`, toolName, toolDescription, question)
}

func buildGradePrompt(question, contextBlock string) string {
	return fmt.Sprintf(`You are a grader assessing the relevance of retrieved passages to a user question.

Retrieved passages:
%s

User question: %s

If the passages contain keywords or semantic meaning related to the question, grade them as relevant.

Respond ONLY with JSON in this exact format:
{"relevant": true}
or
{"relevant": false}`, contextBlock, question)
}

func buildRewritePrompt(question string) string {
	return fmt.Sprintf(`Look at the input question and reason about its underlying semantic intent.

Original question: %s

Formulate an improved search query that is more likely to match relevant documents. Respond with the improved query only, no explanation.`, question)
}

func buildGeneratePrompt(question, contextBlock string) string {
	return fmt.Sprintf(`You are an assistant for question-answering tasks. Use the retrieved context below to answer the question. If the context does not contain the answer, say you don't know. Keep the answer concise.

Context:
%s

Question: %s

Answer:`, contextBlock, question)
}

// --- Parsers ---

// trimQuery strips whitespace and surrounding quotes that rewrite models
// tend to add around the reformulated query.
func trimQuery(raw string) string {
	q := strings.TrimSpace(raw)
	q = strings.Trim(q, `"'`)
	return strings.TrimSpace(q)
}

// extractJSON pulls the first {...} block out of a model response, which
// may be wrapped in prose or markdown fences.
func extractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// parseRouteDecision reads the routing output. Anything unparseable falls
// back to responding directly, which never triggers retrieval on garbage.
func parseRouteDecision(raw, originalQuery string) routeDecision {
	respond := routeDecision{Retrieve: false}

	jsonStr, ok := extractJSON(raw)
	if !ok {
		return respond
	}

	var parsed struct {
		Action string `json:"action"`
		Query  string `json:"query"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return respond
	}

	if strings.ToLower(strings.TrimSpace(parsed.Action)) != "retrieve" {
		return respond
	}

	query := strings.TrimSpace(parsed.Query)
	if query == "" {
		query = originalQuery
	}
	return routeDecision{Retrieve: true, Query: query}
}

// parseGradeResult reads the grading output. JSON first, then a bare
// yes/no, and anything else counts as irrelevant so a confused grader
// triggers a rewrite instead of generating from bad context.
func parseGradeResult(raw string) GradeResult {
	if jsonStr, ok := extractJSON(raw); ok {
		var parsed struct {
			Relevant *bool `json:"relevant"`
		}
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err == nil && parsed.Relevant != nil {
			return GradeResult{Relevant: *parsed.Relevant}
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "yes" || strings.HasPrefix(normalized, "yes") {
		return GradeResult{Relevant: true}
	}
	if normalized == "no" || strings.HasPrefix(normalized, "no") {
		return GradeResult{Relevant: false}
	}

	return GradeResult{Relevant: false}
}
