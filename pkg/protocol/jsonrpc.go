package protocol

import (
	"encoding/json"

	"github.com/cgast/chkwrite/pkg/events"
	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/scenario"
	"github.com/cgast/chkwrite/pkg/verify"
)

// JSON-RPC 2.0 message types for agent mode and the HTTP transport.

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"` // string or int; nil for notifications
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application-specific error codes.
const (
	CodeSessionNotFound = -32000
	CodeScenarioRange   = -32001
	CodeNotAllowed      = -32002
)

// Method constants for all supported JSON-RPC methods.
const (
	// Catalog browsing.
	MethodScenariosList = "scenarios.list"

	// Session lifecycle.
	MethodLessonStart    = "lesson.start"
	MethodLessonState    = "lesson.state"
	MethodLessonReset    = "lesson.reset"
	MethodLessonFinalize = "lesson.finalize"

	// Field entry and navigation.
	MethodLessonSubmit  = "lesson.submit"
	MethodLessonAdvance = "lesson.advance"
	MethodLessonRetreat = "lesson.retreat"
	MethodLessonJump    = "lesson.jump"

	// Scenario and phase selection.
	MethodLessonSelectScenario = "lesson.select_scenario"
	MethodLessonSelectPhase    = "lesson.select_phase"

	// Demonstration projection and history.
	MethodLessonFilled = "lesson.filled"
	MethodLessonEvents = "lesson.events"
)

// NewResponse creates a successful response.
func NewResponse(id any, result any) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id any, code int, message string, data any) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// Parameter types.

// StartParams holds parameters for "lesson.start".
type StartParams struct {
	ScenarioIndex int    `json:"scenario_index"`
	Phase         string `json:"phase"`
}

// SessionParams identifies a session. Used by methods that take nothing else.
type SessionParams struct {
	SessionID string `json:"session_id"`
}

// SubmitParams holds parameters for "lesson.submit".
type SubmitParams struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
	Value     string `json:"value"`
}

// JumpParams holds parameters for "lesson.jump".
type JumpParams struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
}

// SelectScenarioParams holds parameters for "lesson.select_scenario".
type SelectScenarioParams struct {
	SessionID     string `json:"session_id"`
	ScenarioIndex int    `json:"scenario_index"`
}

// SelectPhaseParams holds parameters for "lesson.select_phase".
type SelectPhaseParams struct {
	SessionID string `json:"session_id"`
	Phase     string `json:"phase"`
}

// FilledParams holds parameters for "lesson.filled".
type FilledParams struct {
	ScenarioIndex int `json:"scenario_index"`
	StepIndex     int `json:"step_index"`
}

// Result types.

// LessonState is the view of a session returned by every lesson method.
type LessonState struct {
	SessionID     string           `json:"session_id"`
	ScenarioIndex int              `json:"scenario_index"`
	Scenario      scenario.Summary `json:"scenario"`
	ContextNote   string           `json:"context_note,omitempty"`
	Phase         string           `json:"phase"`
	StepIndex     int              `json:"step_index"`
	TotalSteps    int              `json:"total_steps"`
	ActiveField   field.Name       `json:"active_field,omitempty"`
	Explanation   string           `json:"explanation,omitempty"`
	Fields        field.Values     `json:"field_values"`
	Progress      float64          `json:"progress"`
	Completed     bool             `json:"completed"`
}

// SubmitResult holds the result of "lesson.submit".
type SubmitResult struct {
	Verdict verify.Verdict `json:"verdict"`
	State   LessonState    `json:"state"`
}

// AdvanceResult holds the result of "lesson.advance".
type AdvanceResult struct {
	Advanced bool            `json:"advanced"`
	Blocking *verify.Verdict `json:"blocking_verdict,omitempty"`
	State    LessonState     `json:"state"`
}

// FinalizeResult holds the result of "lesson.finalize".
type FinalizeResult struct {
	Result verify.Result `json:"result"`
	State  LessonState   `json:"state"`
}

// EventsResult holds the result of "lesson.events".
type EventsResult struct {
	Events []events.Event `json:"events"`
}
