package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// lessonStub answers a handful of lesson methods from a fixed table so the
// router can be tested without an engine.
func lessonStub() *Handler {
	h := NewHandler()
	h.Register(MethodLessonStart, func(_ context.Context, raw json.RawMessage) (any, *Error) {
		p, err := ParseParams[StartParams](raw)
		if err != nil {
			return nil, err
		}
		if p.ScenarioIndex < 0 || p.ScenarioIndex > 4 {
			return nil, &Error{Code: CodeScenarioRange, Message: "scenario index out of range"}
		}
		return LessonState{SessionID: "s-1", ScenarioIndex: p.ScenarioIndex, Phase: p.Phase}, nil
	})
	h.Register(MethodLessonState, func(_ context.Context, raw json.RawMessage) (any, *Error) {
		p, err := ParseParams[SessionParams](raw)
		if err != nil {
			return nil, err
		}
		if p.SessionID != "s-1" {
			return nil, &Error{Code: CodeSessionNotFound, Message: "session not found"}
		}
		return LessonState{SessionID: p.SessionID}, nil
	})
	h.Register(MethodLessonJump, func(context.Context, json.RawMessage) (any, *Error) {
		return nil, &Error{Code: CodeNotAllowed, Message: "jump is not allowed in the demonstration phase"}
	})
	return h
}

func TestHandlerRouting(t *testing.T) {
	h := lessonStub()

	tests := []struct {
		name     string
		req      Request
		wantCode int
	}{
		{"start", Request{JSONRPC: "2.0", ID: 1, Method: MethodLessonStart, Params: json.RawMessage(`{"scenario_index":2,"phase":"guided"}`)}, 0},
		{"start out of range", Request{JSONRPC: "2.0", ID: 2, Method: MethodLessonStart, Params: json.RawMessage(`{"scenario_index":7}`)}, CodeScenarioRange},
		{"start bad params", Request{JSONRPC: "2.0", ID: 3, Method: MethodLessonStart, Params: json.RawMessage(`[1,2]`)}, CodeInvalidParams},
		{"state unknown session", Request{JSONRPC: "2.0", ID: 4, Method: MethodLessonState, Params: json.RawMessage(`{"session_id":"gone"}`)}, CodeSessionNotFound},
		{"jump refused", Request{JSONRPC: "2.0", ID: 5, Method: MethodLessonJump}, CodeNotAllowed},
		{"unregistered method", Request{JSONRPC: "2.0", ID: 6, Method: MethodLessonFinalize}, CodeMethodNotFound},
		{"wrong version", Request{JSONRPC: "1.0", ID: 7, Method: MethodLessonState}, CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.Handle(context.Background(), tt.req)
			if resp.ID != tt.req.ID {
				t.Errorf("ID = %v, want %v", resp.ID, tt.req.ID)
			}
			if tt.wantCode == 0 {
				if resp.Error != nil {
					t.Fatalf("unexpected error: %v", resp.Error)
				}
				return
			}
			if resp.Error == nil {
				t.Fatalf("expected error code %d, got result %v", tt.wantCode, resp.Result)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestHandlerStartResult(t *testing.T) {
	resp := lessonStub().Handle(context.Background(), Request{
		JSONRPC: "2.0",
		ID:      "start-1",
		Method:  MethodLessonStart,
		Params:  json.RawMessage(`{"scenario_index":1,"phase":"independent"}`),
	})
	st, ok := resp.Result.(LessonState)
	if !ok {
		t.Fatalf("Result type = %T, want LessonState", resp.Result)
	}
	want := LessonState{SessionID: "s-1", ScenarioIndex: 1, Phase: "independent"}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerPassesContext(t *testing.T) {
	type learnerKey struct{}
	h := NewHandler()
	h.Register(MethodLessonState, func(ctx context.Context, _ json.RawMessage) (any, *Error) {
		return ctx.Value(learnerKey{}), nil
	})
	ctx := context.WithValue(context.Background(), learnerKey{}, "learner-7")
	resp := h.Handle(ctx, Request{JSONRPC: "2.0", ID: 1, Method: MethodLessonState})
	if resp.Result != "learner-7" {
		t.Errorf("Result = %v", resp.Result)
	}
}

func TestHandleRawLessonState(t *testing.T) {
	h := lessonStub()

	resp := h.HandleRaw(context.Background(), []byte(`{"jsonrpc":"2.0","id":9,"method":"lesson.state","params":{"session_id":"s-1"}}`))
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	if st, ok := resp.Result.(LessonState); !ok || st.SessionID != "s-1" {
		t.Errorf("Result = %#v", resp.Result)
	}

	resp = h.HandleRaw(context.Background(), []byte(`{"method":"lesson.state"`))
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("truncated request: error = %v, want parse error", resp.Error)
	}
}

func TestServe(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"lesson.start","params":{"scenario_index":0,"phase":"demonstration"}}

{"jsonrpc":"2.0","id":2,"method":"lesson.retreat","params":{"session_id":"s-1"}}
{"jsonrpc":"2.0","id":3,"method":"lesson.state","params":{"session_id":"other"}}
not json
`)
	var out bytes.Buffer
	if err := lessonStub().Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d responses, want 4:\n%s", len(lines), out.String())
	}
	var codes []int
	for _, line := range lines {
		var resp Response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", line, err)
		}
		code := 0
		if resp.Error != nil {
			code = resp.Error.Code
		}
		codes = append(codes, code)
	}
	want := []int{0, CodeMethodNotFound, CodeSessionNotFound, CodeParseError}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestServeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := lessonStub().Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"lesson.state"}`+"\n"), &out)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("no responses expected after cancel, got %q", out.String())
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     json.RawMessage
		want    SubmitParams
		wantErr bool
	}{
		{"full", json.RawMessage(`{"session_id":"abc","field":"payee","value":"Rosa"}`), SubmitParams{SessionID: "abc", Field: "payee", Value: "Rosa"}, false},
		{"absent", nil, SubmitParams{}, false},
		{"null", json.RawMessage(`null`), SubmitParams{}, false},
		{"not an object", json.RawMessage(`"payee"`), SubmitParams{}, true},
		{"wrong value type", json.RawMessage(`{"value":150}`), SubmitParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseParams[SubmitParams](tt.raw)
			if tt.wantErr {
				if err == nil || err.Code != CodeInvalidParams {
					t.Fatalf("err = %v, want invalid params", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseParams: %v", err)
			}
			if got != tt.want {
				t.Errorf("params = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandlerMethods(t *testing.T) {
	want := []string{MethodLessonJump, MethodLessonStart, MethodLessonState}
	if diff := cmp.Diff(want, lessonStub().Methods()); diff != "" {
		t.Errorf("Methods mismatch (-want +got):\n%s", diff)
	}
}
