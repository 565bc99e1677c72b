package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RAG_RUN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// RagRunCompletedEvent is emitted after a workflow run finishes, successful
// or not.
type RagRunCompletedEvent struct {
	RunID      string
	Query      string
	Answer     string
	Rewrites   int
	Retrievals int
	Failed     bool
	Error      string
	OccurredAt time.Time
}

func NewRagRunCompletedEvent(runID, query, answer string, rewrites, retrievals int, runErr error) RagRunCompletedEvent {
	e := RagRunCompletedEvent{
		RunID:      runID,
		Query:      query,
		Answer:     answer,
		Rewrites:   rewrites,
		Retrievals: retrievals,
		OccurredAt: time.Now(),
	}
	if runErr != nil {
		e.Failed = true
		e.Error = runErr.Error()
	}
	return e
}

func (e RagRunCompletedEvent) EventType() string {
	return "RAG_RUN_COMPLETED"
}

func (e RagRunCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"run_id":     e.RunID,
		"query":      e.Query,
		"answer":     e.Answer,
		"rewrites":   e.Rewrites,
		"retrievals": e.Retrievals,
		"failed":     e.Failed,
		"error":      e.Error,
	}
}

func (e RagRunCompletedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
