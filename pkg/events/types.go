package events

import "time"

// EventType identifies the kind of lesson event.
type EventType string

const (
	EventLessonStart    EventType = "lesson.start"
	EventLessonReset    EventType = "lesson.reset"
	EventLessonFinalize EventType = "lesson.finalize"
	EventScenarioSelect EventType = "scenario.select"
	EventPhaseSelect    EventType = "phase.select"
	EventStepAdvance    EventType = "step.advance"
	EventStepBlocked    EventType = "step.blocked"
	EventStepRetreat    EventType = "step.retreat"
	EventStepJump       EventType = "step.jump"
	EventFieldSubmit    EventType = "field.submit"
)

// Event records one transition of one lesson session.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	StepIndex int       `json:"step_index"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// NewEvent creates a new Event with the current timestamp.
func NewEvent(typ EventType, sessionID string, data any) Event {
	return Event{
		Type:      typ,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Data:      data,
	}
}
