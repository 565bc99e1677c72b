package llm

import "fmt"

// CompletionError wraps a provider or network failure during a model call.
// Op identifies the provider operation that failed (e.g. "ollama.chat").
type CompletionError struct {
	Op  string
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed (%s): %v", e.Op, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// NewCompletionError builds a CompletionError; nil err returns nil.
func NewCompletionError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CompletionError{Op: op, Err: err}
}
