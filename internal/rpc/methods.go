// Package rpc binds the lesson engine to JSON-RPC methods. The same handler
// serves agent mode on stdio and the HTTP transport.
package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/cgast/chkwrite/internal/session"
	"github.com/cgast/chkwrite/pkg/events"
	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/lesson"
	"github.com/cgast/chkwrite/pkg/protocol"
	"github.com/cgast/chkwrite/pkg/scenario"
)

// NewHandler returns a handler with every lesson method registered.
func NewHandler(mgr *session.Manager, bus events.EventBus, logger *zap.Logger) *protocol.Handler {
	h := protocol.NewHandler()
	Register(h, mgr, bus, logger)
	return h
}

// Register adds the lesson methods to h.
func Register(h *protocol.Handler, mgr *session.Manager, bus events.EventBus, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := mgr.Engine()

	h.Register(protocol.MethodScenariosList, func(context.Context, json.RawMessage) (any, *protocol.Error) {
		return engine.ListScenarios(), nil
	})

	h.Register(protocol.MethodLessonStart, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.StartParams](params)
		if perr != nil {
			return nil, perr
		}
		phase := lesson.Demonstration
		if p.Phase != "" {
			var err error
			if phase, err = lesson.ParsePhase(p.Phase); err != nil {
				return nil, toError(err)
			}
		}
		s, err := mgr.Create(ctx, p.ScenarioIndex, phase)
		if err != nil {
			return nil, toError(err)
		}
		return State(engine, s), nil
	})

	h.Register(protocol.MethodLessonState, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SessionParams](params)
		if perr != nil {
			return nil, perr
		}
		s, err := mgr.Get(ctx, p.SessionID)
		if err != nil {
			return nil, toError(err)
		}
		return State(engine, s), nil
	})

	h.Register(protocol.MethodLessonSubmit, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SubmitParams](params)
		if perr != nil {
			return nil, perr
		}
		name, err := field.Parse(p.Field)
		if err != nil {
			return nil, toError(err)
		}
		var result protocol.SubmitResult
		s, err := mgr.Update(ctx, p.SessionID, func(s *lesson.Session) error {
			v, err := engine.SubmitField(s, name, p.Value)
			result.Verdict = v
			return err
		})
		if err != nil {
			return nil, toError(err)
		}
		result.State = State(engine, s)
		return result, nil
	})

	h.Register(protocol.MethodLessonAdvance, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SessionParams](params)
		if perr != nil {
			return nil, perr
		}
		var res lesson.AdvanceResult
		s, err := mgr.Update(ctx, p.SessionID, func(s *lesson.Session) error {
			res = engine.AdvanceStep(s)
			return nil
		})
		if err != nil {
			return nil, toError(err)
		}
		return protocol.AdvanceResult{
			Advanced: res.Advanced,
			Blocking: res.Blocking,
			State:    State(engine, s),
		}, nil
	})

	registerSessionOp(h, mgr, protocol.MethodLessonRetreat, func(s *lesson.Session) error {
		engine.RetreatStep(s)
		return nil
	})

	registerSessionOp(h, mgr, protocol.MethodLessonReset, func(s *lesson.Session) error {
		engine.ResetSession(s)
		return nil
	})

	h.Register(protocol.MethodLessonSelectScenario, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SelectScenarioParams](params)
		if perr != nil {
			return nil, perr
		}
		s, err := mgr.Update(ctx, p.SessionID, func(s *lesson.Session) error {
			return engine.SelectScenario(s, p.ScenarioIndex)
		})
		if err != nil {
			return nil, toError(err)
		}
		return State(engine, s), nil
	})

	h.Register(protocol.MethodLessonSelectPhase, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SelectPhaseParams](params)
		if perr != nil {
			return nil, perr
		}
		phase, err := lesson.ParsePhase(p.Phase)
		if err != nil {
			return nil, toError(err)
		}
		s, err := mgr.Update(ctx, p.SessionID, func(s *lesson.Session) error {
			return engine.SelectPhase(s, phase)
		})
		if err != nil {
			return nil, toError(err)
		}
		return State(engine, s), nil
	})

	h.Register(protocol.MethodLessonJump, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.JumpParams](params)
		if perr != nil {
			return nil, perr
		}
		name, err := field.Parse(p.Field)
		if err != nil {
			return nil, toError(err)
		}
		s, err := mgr.Update(ctx, p.SessionID, func(s *lesson.Session) error {
			return engine.JumpToField(s, name)
		})
		if err != nil {
			return nil, toError(err)
		}
		return State(engine, s), nil
	})

	h.Register(protocol.MethodLessonFilled, func(_ context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.FilledParams](params)
		if perr != nil {
			return nil, perr
		}
		values, err := engine.FilledFields(p.ScenarioIndex, p.StepIndex)
		if err != nil {
			return nil, toError(err)
		}
		return values, nil
	})

	h.Register(protocol.MethodLessonFinalize, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SessionParams](params)
		if perr != nil {
			return nil, perr
		}
		var result protocol.FinalizeResult
		s, err := mgr.Update(ctx, p.SessionID, func(s *lesson.Session) error {
			result.Result = engine.Finalize(s)
			return nil
		})
		if err != nil {
			return nil, toError(err)
		}
		result.State = State(engine, s)
		return result, nil
	})

	h.Register(protocol.MethodLessonEvents, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SessionParams](params)
		if perr != nil {
			return nil, perr
		}
		if _, err := mgr.Get(ctx, p.SessionID); err != nil {
			return nil, toError(err)
		}
		var history []events.Event
		if bus != nil {
			history = bus.SessionHistory(p.SessionID)
		}
		if history == nil {
			history = []events.Event{}
		}
		return protocol.EventsResult{Events: history}, nil
	})

	logger.Debug("registered lesson methods", zap.Strings("methods", h.Methods()))
}

// registerSessionOp registers a method that takes only a session id and
// returns the updated state.
func registerSessionOp(h *protocol.Handler, mgr *session.Manager, method string, op func(*lesson.Session) error) {
	engine := mgr.Engine()
	h.Register(method, func(ctx context.Context, params json.RawMessage) (any, *protocol.Error) {
		p, perr := protocol.ParseParams[protocol.SessionParams](params)
		if perr != nil {
			return nil, perr
		}
		s, err := mgr.Update(ctx, p.SessionID, op)
		if err != nil {
			return nil, toError(err)
		}
		return State(engine, s), nil
	})
}

// State builds the wire view of a session.
func State(engine *lesson.Engine, s *lesson.Session) protocol.LessonState {
	sc := engine.Scenario(s)
	active, _ := engine.ActiveField(s)
	return protocol.LessonState{
		SessionID:     s.ID,
		ScenarioIndex: s.ScenarioIndex,
		Scenario:      scenario.Summary{Index: s.ScenarioIndex, Title: sc.Title, Prompt: sc.Prompt},
		ContextNote:   sc.ContextNote,
		Phase:         string(s.Phase),
		StepIndex:     s.StepIndex,
		TotalSteps:    engine.TotalSteps(s),
		ActiveField:   active,
		Explanation:   engine.Explanation(s),
		Fields:        engine.Fields(s),
		Progress:      engine.Progress(s),
		Completed:     s.Completed,
	}
}

// toError maps engine and store errors to JSON-RPC error objects.
func toError(err error) *protocol.Error {
	code := protocol.CodeInternalError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		code = protocol.CodeSessionNotFound
	case errors.Is(err, lesson.ErrScenarioOutOfRange):
		code = protocol.CodeScenarioRange
	case errors.Is(err, lesson.ErrJumpNotAllowed), errors.Is(err, lesson.ErrReadOnlyPhase):
		code = protocol.CodeNotAllowed
	case errors.Is(err, lesson.ErrUnknownPhase), errors.Is(err, field.ErrUnknownField):
		code = protocol.CodeInvalidParams
	}
	return &protocol.Error{Code: code, Message: err.Error()}
}
