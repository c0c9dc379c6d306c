package rpc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgast/chkwrite/internal/session"
	"github.com/cgast/chkwrite/pkg/events"
	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/lesson"
	"github.com/cgast/chkwrite/pkg/protocol"
	"github.com/cgast/chkwrite/pkg/scenario"
)

func newTestHandler(t *testing.T) *protocol.Handler {
	t.Helper()
	cat, err := scenario.LoadCatalog("", map[string]string{"date": "10/15/2025"})
	require.NoError(t, err)
	bus := events.NewMemoryBus(0)
	engine := lesson.NewEngine(cat, lesson.WithPublisher(bus))
	mgr := session.NewManager(engine, session.NewMemoryStore(), nil)
	return NewHandler(mgr, bus, nil)
}

// call sends one request and decodes its result into out.
func call(t *testing.T, h *protocol.Handler, method string, params any, out any) *protocol.Error {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	resp := h.Handle(context.Background(), protocol.Request{JSONRPC: "2.0", ID: 1, Method: method, Params: raw})
	if resp.Error != nil {
		return resp.Error
	}
	if out != nil {
		data, err := json.Marshal(resp.Result)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return nil
}

func start(t *testing.T, h *protocol.Handler, scenarioIndex int, phase string) protocol.LessonState {
	t.Helper()
	var st protocol.LessonState
	rpcErr := call(t, h, protocol.MethodLessonStart, protocol.StartParams{ScenarioIndex: scenarioIndex, Phase: phase}, &st)
	require.Nil(t, rpcErr)
	return st
}

func TestMethodsRegistered(t *testing.T) {
	h := newTestHandler(t)
	assert.ElementsMatch(t, []string{
		protocol.MethodScenariosList,
		protocol.MethodLessonStart, protocol.MethodLessonState,
		protocol.MethodLessonSubmit, protocol.MethodLessonAdvance,
		protocol.MethodLessonRetreat, protocol.MethodLessonReset,
		protocol.MethodLessonSelectScenario, protocol.MethodLessonSelectPhase,
		protocol.MethodLessonJump, protocol.MethodLessonFilled,
		protocol.MethodLessonFinalize, protocol.MethodLessonEvents,
	}, h.Methods())
}

func TestScenariosList(t *testing.T) {
	h := newTestHandler(t)
	var list []scenario.Summary
	require.Nil(t, call(t, h, protocol.MethodScenariosList, nil, &list))
	require.Len(t, list, 5)
	assert.Equal(t, "Paying the Plumber", list[0].Title)
}

func TestStartDefaultsToDemonstration(t *testing.T) {
	h := newTestHandler(t)
	st := start(t, h, 0, "")
	assert.Equal(t, string(lesson.Demonstration), st.Phase)
	assert.Equal(t, -1, st.StepIndex)
	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, "Paying the Plumber", st.Scenario.Title)
	assert.Empty(t, st.ActiveField)
}

func TestStartErrors(t *testing.T) {
	h := newTestHandler(t)

	rpcErr := call(t, h, protocol.MethodLessonStart, protocol.StartParams{ScenarioIndex: 7}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CodeScenarioRange, rpcErr.Code)

	rpcErr = call(t, h, protocol.MethodLessonStart, protocol.StartParams{Phase: "lecture"}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CodeInvalidParams, rpcErr.Code)
}

func TestGuidedFlow(t *testing.T) {
	h := newTestHandler(t)
	st := start(t, h, 0, "we do")
	id := st.SessionID

	var adv protocol.AdvanceResult
	require.Nil(t, call(t, h, protocol.MethodLessonAdvance, protocol.SessionParams{SessionID: id}, &adv))
	assert.False(t, adv.Advanced)
	require.NotNil(t, adv.Blocking)
	assert.True(t, adv.Blocking.Pending)

	var sub protocol.SubmitResult
	require.Nil(t, call(t, h, protocol.MethodLessonSubmit,
		protocol.SubmitParams{SessionID: id, Field: "date", Value: "10/15/2025"}, &sub))
	assert.True(t, sub.Verdict.OK)
	assert.Equal(t, "10/15/2025", sub.State.Fields.Get(field.Date))

	require.Nil(t, call(t, h, protocol.MethodLessonAdvance, protocol.SessionParams{SessionID: id}, &adv))
	assert.True(t, adv.Advanced)
	assert.Nil(t, adv.Blocking)
	assert.Equal(t, 1, adv.State.StepIndex)
	assert.Equal(t, field.Payee, adv.State.ActiveField)

	var st2 protocol.LessonState
	require.Nil(t, call(t, h, protocol.MethodLessonRetreat, protocol.SessionParams{SessionID: id}, &st2))
	assert.Equal(t, 0, st2.StepIndex)
}

func TestSubmitAlias(t *testing.T) {
	h := newTestHandler(t)
	id := start(t, h, 1, "independent").SessionID

	var sub protocol.SubmitResult
	require.Nil(t, call(t, h, protocol.MethodLessonSubmit,
		protocol.SubmitParams{SessionID: id, Field: "amount_numeric", Value: "1200"}, &sub))
	assert.Equal(t, field.AmountNumeric, sub.Verdict.Field)
	assert.True(t, sub.Verdict.OK)

	rpcErr := call(t, h, protocol.MethodLessonSubmit,
		protocol.SubmitParams{SessionID: id, Field: "routing", Value: "x"}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CodeInvalidParams, rpcErr.Code)
}

func TestSubmitDuringDemonstrationNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	id := start(t, h, 0, "demonstration").SessionID

	rpcErr := call(t, h, protocol.MethodLessonSubmit,
		protocol.SubmitParams{SessionID: id, Field: "payee", Value: "x"}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CodeNotAllowed, rpcErr.Code)

	rpcErr = call(t, h, protocol.MethodLessonJump, protocol.JumpParams{SessionID: id, Field: "memo"}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CodeNotAllowed, rpcErr.Code)
}

func TestUnknownSession(t *testing.T) {
	h := newTestHandler(t)
	for _, method := range []string{
		protocol.MethodLessonState, protocol.MethodLessonAdvance,
		protocol.MethodLessonRetreat, protocol.MethodLessonReset,
		protocol.MethodLessonFinalize, protocol.MethodLessonEvents,
	} {
		t.Run(method, func(t *testing.T) {
			rpcErr := call(t, h, method, protocol.SessionParams{SessionID: "missing"}, nil)
			require.NotNil(t, rpcErr)
			assert.Equal(t, protocol.CodeSessionNotFound, rpcErr.Code)
		})
	}
}

func TestSelectScenarioAndPhase(t *testing.T) {
	h := newTestHandler(t)
	id := start(t, h, 0, "independent").SessionID

	var st protocol.LessonState
	require.Nil(t, call(t, h, protocol.MethodLessonJump, protocol.JumpParams{SessionID: id, Field: "signature"}, &st))
	assert.Equal(t, 5, st.StepIndex)

	require.Nil(t, call(t, h, protocol.MethodLessonSelectScenario,
		protocol.SelectScenarioParams{SessionID: id, ScenarioIndex: 3}, &st))
	assert.Equal(t, 3, st.ScenarioIndex)
	assert.Equal(t, 0, st.StepIndex)

	rpcErr := call(t, h, protocol.MethodLessonSelectScenario,
		protocol.SelectScenarioParams{SessionID: id, ScenarioIndex: -1}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CodeScenarioRange, rpcErr.Code)

	require.Nil(t, call(t, h, protocol.MethodLessonSelectPhase,
		protocol.SelectPhaseParams{SessionID: id, Phase: "I do"}, &st))
	assert.Equal(t, string(lesson.Demonstration), st.Phase)
	assert.Equal(t, -1, st.StepIndex)
	assert.Equal(t, field.Count, st.TotalSteps)
}

func TestFilled(t *testing.T) {
	h := newTestHandler(t)
	var values field.Values
	require.Nil(t, call(t, h, protocol.MethodLessonFilled, protocol.FilledParams{ScenarioIndex: 1, StepIndex: 2}, &values))
	assert.Equal(t, "$1,200.00", values.Get(field.AmountNumeric))
	assert.Equal(t, "", values.Get(field.AmountWords))

	rpcErr := call(t, h, protocol.MethodLessonFilled, protocol.FilledParams{ScenarioIndex: 5}, nil)
	require.NotNil(t, rpcErr)
	assert.Equal(t, protocol.CodeScenarioRange, rpcErr.Code)
}

func TestFinalizeAndEvents(t *testing.T) {
	h := newTestHandler(t)
	id := start(t, h, 2, "independent").SessionID

	submissions := map[string]string{
		"date":          "10/15/2025",
		"payee":         "rosa martinez",
		"amountNumeric": "50",
		"amountWords":   "fifty dollars and 00/100",
		"signature":     "Alex Morgan",
	}
	for name, value := range submissions {
		require.Nil(t, call(t, h, protocol.MethodLessonSubmit,
			protocol.SubmitParams{SessionID: id, Field: name, Value: value}, nil))
	}

	var fin protocol.FinalizeResult
	require.Nil(t, call(t, h, protocol.MethodLessonFinalize, protocol.SessionParams{SessionID: id}, &fin))
	assert.True(t, fin.Result.Passed, "failed: %v", fin.Result.Failed)
	assert.True(t, fin.State.Completed)

	var evs protocol.EventsResult
	require.Nil(t, call(t, h, protocol.MethodLessonEvents, protocol.SessionParams{SessionID: id}, &evs))
	require.Len(t, evs.Events, 1+len(submissions)+1)
	assert.Equal(t, events.EventLessonStart, evs.Events[0].Type)
	assert.Equal(t, events.EventLessonFinalize, evs.Events[len(evs.Events)-1].Type)
}

func TestReset(t *testing.T) {
	h := newTestHandler(t)
	id := start(t, h, 0, "guided").SessionID
	require.Nil(t, call(t, h, protocol.MethodLessonSubmit,
		protocol.SubmitParams{SessionID: id, Field: "date", Value: "10/15/2025"}, nil))

	var st protocol.LessonState
	require.Nil(t, call(t, h, protocol.MethodLessonReset, protocol.SessionParams{SessionID: id}, &st))
	assert.Equal(t, "", st.Fields.Get(field.Date))
	assert.False(t, st.Completed)
}
