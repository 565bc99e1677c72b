package engine

import (
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/retrieval"
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrRewriteBudgetExhausted is returned instead of a best-effort answer
// when the run is configured with FailOnExhaustedBudget and no relevant
// passages were found within the rewrite budget.
var ErrRewriteBudgetExhausted = errors.New("rewrite budget exhausted without relevant passages")

const DefaultMaxRewrites = 2

// Config controls a run of the workflow.
type Config struct {
	MaxRewrites int
	// FailOnExhaustedBudget ends the run with ErrRewriteBudgetExhausted when
	// the last rewrite still grades irrelevant. The default generates a
	// best-effort answer from whatever was retrieved.
	FailOnExhaustedBudget bool
}

func DefaultConfig() Config {
	return Config{MaxRewrites: DefaultMaxRewrites}
}

// Engine drives a single query through route, retrieve, grade, rewrite and
// generate. One Engine instance serves one run; nothing is shared across
// requests.
type Engine struct {
	provider  llm.LLMProvider
	retriever retrieval.Retriever
	config    Config
	logger    *log.Logger
}

func NewEngine(provider llm.LLMProvider, retriever retrieval.Retriever, config Config, logger *log.Logger) *Engine {
	if config.MaxRewrites < 0 {
		config.MaxRewrites = 0
	}
	return &Engine{
		provider:  provider,
		retriever: retriever,
		config:    config,
		logger:    logger,
	}
}

// Run executes the workflow for one query and returns the final answer
// together with the run's transcript and counters.
func (e *Engine) Run(ctx context.Context, query string) (*Result, error) {
	state := NewState(query, e.config.MaxRewrites)
	retrievals := 0
	current := nodeRoute

	for current != nodeDone {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", current, err)
		}
		e.logger.Printf("[Engine] node=%s rewrites=%d/%d", current, state.RewriteCount, state.MaxRewrites)

		switch current {
		case nodeRoute:
			decision, err := e.route(ctx, state)
			if err != nil {
				return nil, fmt.Errorf("route: %w", err)
			}
			if decision.Retrieve {
				state.CurrentQuery = decision.Query
				current = nodeRetrieve
			} else {
				current = nodeGenerate
			}

		case nodeRetrieve:
			passages, err := e.retriever.Retrieve(ctx, state.CurrentQuery)
			if err != nil {
				return nil, fmt.Errorf("retrieve: %w", err)
			}
			retrievals++
			state.Passages = passages
			state.AddMessage(llm.RoleTool, retrieval.FormatPassages(passages))
			current = nodeGrade

		case nodeGrade:
			grade, err := e.grade(ctx, state)
			if err != nil {
				return nil, fmt.Errorf("grade: %w", err)
			}
			if grade.Relevant {
				current = nodeGenerate
			} else if state.RewriteCount < state.MaxRewrites {
				current = nodeRewrite
			} else if e.config.FailOnExhaustedBudget {
				return nil, ErrRewriteBudgetExhausted
			} else {
				current = nodeGenerate
			}

		case nodeRewrite:
			rewritten, err := e.rewrite(ctx, state)
			if err != nil {
				return nil, fmt.Errorf("rewrite: %w", err)
			}
			state.RewriteCount++
			state.CurrentQuery = rewritten
			state.AddMessage(llm.RoleUser, rewritten)
			current = nodeRetrieve

		case nodeGenerate:
			answer, err := e.generate(ctx, state)
			if err != nil {
				return nil, fmt.Errorf("generate: %w", err)
			}
			state.AddMessage(llm.RoleAssistant, answer)
			current = nodeDone
		}
	}

	last := state.Messages[len(state.Messages)-1]
	return &Result{
		Answer:     last.Content,
		Passages:   state.Passages,
		Messages:   state.Messages,
		Rewrites:   state.RewriteCount,
		Retrievals: retrievals,
	}, nil
}

// --- Node implementations ---

func (e *Engine) route(ctx context.Context, state *State) (routeDecision, error) {
	prompt := buildRoutePrompt(state.Query, e.retriever.Name(), e.retriever.Description())
	raw, err := e.complete(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return routeDecision{}, err
	}
	decision := parseRouteDecision(raw, state.Query)
	e.logger.Printf("[Engine] route decision: retrieve=%v query=%q", decision.Retrieve, decision.Query)
	return decision, nil
}

func (e *Engine) grade(ctx context.Context, state *State) (GradeResult, error) {
	prompt := buildGradePrompt(state.Query, retrieval.FormatPassages(state.Passages))
	raw, err := e.complete(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return GradeResult{}, err
	}
	grade := parseGradeResult(raw)
	e.logger.Printf("[Engine] grade: relevant=%v", grade.Relevant)
	return grade, nil
}

func (e *Engine) rewrite(ctx context.Context, state *State) (string, error) {
	prompt := buildRewritePrompt(state.Query)
	raw, err := e.complete(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return "", err
	}
	rewritten := trimQuery(raw)
	if rewritten == "" {
		rewritten = state.Query
	}
	e.logger.Printf("[Engine] rewrite: %q", rewritten)
	return rewritten, nil
}

func (e *Engine) generate(ctx context.Context, state *State) (string, error) {
	prompt := buildGeneratePrompt(state.Query, retrieval.FormatPassages(state.Passages))
	return e.complete(ctx, prompt)
}

// complete calls the provider, retrying once on failure. Completion calls
// are idempotent, so a single retry covers transient network errors without
// risking unbounded loops.
func (e *Engine) complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	raw, err := e.provider.Generate(ctx, prompt, opts...)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return "", err
	}
	e.logger.Printf("[Engine] completion failed, retrying once: %v", err)
	return e.provider.Generate(ctx, prompt, opts...)
}
