package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart EventType = "run_start"
	EventStep     EventType = "step"
	EventRunEnd   EventType = "run_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	AutomatonID string    `json:"automaton_id"`
	// SessionID is set when the run belongs to an incremental session.
	SessionID string `json:"session_id,omitempty"`
}

// RunEvent marks the start or the end of a run.
type RunEvent struct {
	EventBase
	Input string `json:"input"`
	// Result is nil on run_start.
	Result   *Result       `json:"result,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// StepEvent is emitted for every transition taken.
type StepEvent struct {
	EventBase
	Step Step `json:"step"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart func(context.Context, *RunEvent)
	OnStep     func(context.Context, *StepEvent)
	OnRunEnd   func(context.Context, *RunEvent)
}
