// Package lesson drives a learner through a check-writing scenario in one of
// three phases: a scripted demonstration, a guided fill that stops on wrong
// answers, and an independent fill graded at the end.
package lesson

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cgast/chkwrite/pkg/events"
	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/scenario"
	"github.com/cgast/chkwrite/pkg/verify"
)

var (
	// ErrScenarioOutOfRange is returned for a scenario index outside the catalog.
	ErrScenarioOutOfRange = errors.New("scenario index out of range")
	// ErrJumpNotAllowed is returned when jumping to a field during a demonstration.
	ErrJumpNotAllowed = errors.New("jumping to a field is not allowed in the demonstration phase")
	// ErrReadOnlyPhase is returned when submitting a field during a demonstration.
	ErrReadOnlyPhase = errors.New("fields cannot be entered in the demonstration phase")
)

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator sets the evaluator used for field checks and grading.
func WithEvaluator(ev *verify.Evaluator) Option {
	return func(e *Engine) {
		if ev != nil {
			e.evaluator = ev
		}
	}
}

// WithPublisher sends every session transition to p.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// AdvanceResult reports the outcome of an advance request. When Advanced is
// false and Blocking is set, the learner was held on a wrong or empty field.
type AdvanceResult struct {
	Advanced bool            `json:"advanced"`
	Blocking *verify.Verdict `json:"blocking_verdict,omitempty"`
}

// Engine applies lesson transitions to sessions. It holds no per-learner
// state and is safe for concurrent use on distinct sessions.
type Engine struct {
	catalog   *scenario.Catalog
	evaluator *verify.Evaluator
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog *scenario.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog,
		evaluator: verify.NewEvaluator(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the scenario catalog.
func (e *Engine) Catalog() *scenario.Catalog {
	return e.catalog
}

// ListScenarios returns the browsable summary of every scenario.
func (e *Engine) ListScenarios() []scenario.Summary {
	return e.catalog.Summaries()
}

// StartLesson opens a new session on the given scenario and phase.
func (e *Engine) StartLesson(scenarioIndex int, phase Phase) (*Session, error) {
	if err := e.checkScenario(scenarioIndex); err != nil {
		return nil, err
	}
	if !phase.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}

	s := &Session{
		ID:            uuid.NewString(),
		ScenarioIndex: scenarioIndex,
		Phase:         phase,
		StepIndex:     phase.InitialStep(),
		Values:        make(map[Phase]field.Values, 3),
	}
	for _, p := range Phases() {
		s.Values[p] = field.NewValues()
	}
	e.touch(s)
	e.publish(s, events.EventLessonStart, map[string]any{"scenario_index": scenarioIndex})
	e.logger.Debug("lesson started",
		zap.String("session_id", s.ID),
		zap.Int("scenario", scenarioIndex),
		zap.String("phase", string(phase)),
	)
	return s, nil
}

// Scenario returns the scenario the session is working on.
func (e *Engine) Scenario(s *Session) scenario.Scenario {
	return e.catalog.At(s.ScenarioIndex)
}

// TotalSteps is the number of steps in the session's current phase: the
// curriculum length for a demonstration, the six fields otherwise.
func (e *Engine) TotalSteps(s *Session) int {
	if s.Phase == Demonstration {
		return len(Curriculum(e.Scenario(s)))
	}
	return field.Count
}

// Progress is the fraction of the phase walked so far, in [0, 1].
func (e *Engine) Progress(s *Session) float64 {
	total := e.TotalSteps(s)
	if total == 0 {
		return 0
	}
	p := float64(s.StepIndex+1) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ActiveField returns the field the current step works on. It reports false
// before the first demonstration step.
func (e *Engine) ActiveField(s *Session) (field.Name, bool) {
	if s.Phase == Demonstration {
		steps := Curriculum(e.Scenario(s))
		if s.StepIndex < 0 || s.StepIndex >= len(steps) {
			return "", false
		}
		return steps[s.StepIndex].Field, true
	}
	if s.StepIndex < 0 || s.StepIndex >= field.Count {
		return "", false
	}
	return field.At(s.StepIndex), true
}

// Explanation returns the narration of the current demonstration step, or
// an empty string in the other phases.
func (e *Engine) Explanation(s *Session) string {
	if s.Phase != Demonstration || s.StepIndex < 0 {
		return ""
	}
	steps := Curriculum(e.Scenario(s))
	if s.StepIndex >= len(steps) {
		return ""
	}
	return steps[s.StepIndex].Explanation
}

// Fields returns what the check shows right now: the scripted projection in
// a demonstration, the learner's own entries otherwise.
func (e *Engine) Fields(s *Session) field.Values {
	if s.Phase == Demonstration {
		return FilledFields(e.Scenario(s), s.StepIndex)
	}
	return s.values(s.Phase).Clone()
}

// FilledFields projects the demonstration of a catalog scenario at stepIndex.
func (e *Engine) FilledFields(scenarioIndex, stepIndex int) (field.Values, error) {
	if err := e.checkScenario(scenarioIndex); err != nil {
		return nil, err
	}
	return FilledFields(e.catalog.At(scenarioIndex), stepIndex), nil
}

// SubmitField stores raw as the learner's text for name in the current
// phase and returns its live verdict.
func (e *Engine) SubmitField(s *Session, name field.Name, raw string) (verify.Verdict, error) {
	if !name.Valid() {
		return verify.Verdict{}, fmt.Errorf("%w: %q", field.ErrUnknownField, name)
	}
	if s.Phase == Demonstration {
		return verify.Verdict{}, ErrReadOnlyPhase
	}

	s.values(s.Phase)[name] = raw
	v := e.evaluator.Check(name, raw, e.Scenario(s).Expected.Get(name))
	e.touch(s)
	e.publish(s, events.EventFieldSubmit, map[string]any{
		"field":   name,
		"ok":      v.OK,
		"pending": v.Pending,
	})
	return v, nil
}

// CheckField returns the verdict for what the learner has in name now,
// without changing the session.
func (e *Engine) CheckField(s *Session, name field.Name) (verify.Verdict, error) {
	if !name.Valid() {
		return verify.Verdict{}, fmt.Errorf("%w: %q", field.ErrUnknownField, name)
	}
	return e.evaluator.Check(name, e.Fields(s).Get(name), e.Scenario(s).Expected.Get(name)), nil
}

// AdvanceStep moves to the next step. In the guided phase a required field
// that does not pass holds the learner in place and its verdict is returned.
// Advancing from the last step does not move; a guided request there with a
// passing field completes the lesson.
func (e *Engine) AdvanceStep(s *Session) AdvanceResult {
	last := e.TotalSteps(s) - 1

	if s.Phase == Guided {
		name, _ := e.ActiveField(s)
		if verify.Blocking(name) {
			v := e.evaluator.Check(name, s.values(Guided).Get(name), e.Scenario(s).Expected.Get(name))
			if !v.OK {
				e.publish(s, events.EventStepBlocked, map[string]any{"field": name})
				e.logger.Debug("advance blocked",
					zap.String("session_id", s.ID),
					zap.String("field", string(name)),
				)
				return AdvanceResult{Blocking: &v}
			}
		}
		if s.StepIndex >= last {
			if !s.Completed {
				s.Completed = true
				e.touch(s)
			}
			return AdvanceResult{}
		}
	}

	if s.StepIndex >= last {
		return AdvanceResult{}
	}

	s.StepIndex++
	if s.Phase == Demonstration && s.StepIndex == last {
		s.Completed = true
	}
	e.touch(s)
	e.publish(s, events.EventStepAdvance, nil)
	return AdvanceResult{Advanced: true}
}

// RetreatStep moves back one step. It never goes below the phase's
// starting step.
func (e *Engine) RetreatStep(s *Session) {
	if s.StepIndex <= s.Phase.InitialStep() {
		return
	}
	s.StepIndex--
	e.touch(s)
	e.publish(s, events.EventStepRetreat, nil)
}

// ResetSession returns the current phase to its starting step and clears
// its entries. Entries typed under other phases are kept.
func (e *Engine) ResetSession(s *Session) {
	e.reset(s)
	e.publish(s, events.EventLessonReset, nil)
}

// SelectScenario switches to another scenario and resets the current phase.
func (e *Engine) SelectScenario(s *Session, scenarioIndex int) error {
	if err := e.checkScenario(scenarioIndex); err != nil {
		return err
	}
	s.ScenarioIndex = scenarioIndex
	e.reset(s)
	e.publish(s, events.EventScenarioSelect, map[string]any{"scenario_index": scenarioIndex})
	return nil
}

// SelectPhase switches to another phase and resets it.
func (e *Engine) SelectPhase(s *Session, phase Phase) error {
	if !phase.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}
	s.Phase = phase
	e.reset(s)
	e.publish(s, events.EventPhaseSelect, nil)
	return nil
}

// JumpToField moves straight to the step for name. Not available during a
// demonstration.
func (e *Engine) JumpToField(s *Session, name field.Name) error {
	if s.Phase == Demonstration {
		return ErrJumpNotAllowed
	}
	pos := field.Position(name)
	if pos < 0 {
		return fmt.Errorf("%w: %q", field.ErrUnknownField, name)
	}
	s.StepIndex = pos
	e.touch(s)
	e.publish(s, events.EventStepJump, map[string]any{"field": name})
	return nil
}

// Evaluate grades what the check shows now without changing the session.
func (e *Engine) Evaluate(s *Session) verify.Result {
	return e.evaluator.Evaluate(e.Fields(s), e.Scenario(s).Expected)
}

// Finalize grades the check and marks the session completed.
func (e *Engine) Finalize(s *Session) verify.Result {
	result := e.Evaluate(s)
	s.Completed = true
	e.touch(s)
	e.publish(s, events.EventLessonFinalize, map[string]any{
		"overall_pass":  result.Passed,
		"failed_fields": result.Failed,
	})
	e.logger.Info("lesson finalized",
		zap.String("session_id", s.ID),
		zap.Int("scenario", s.ScenarioIndex),
		zap.String("phase", string(s.Phase)),
		zap.Bool("passed", result.Passed),
	)
	return result
}

func (e *Engine) reset(s *Session) {
	s.StepIndex = s.Phase.InitialStep()
	if s.Values == nil {
		s.Values = make(map[Phase]field.Values, 3)
	}
	s.Values[s.Phase] = field.NewValues()
	s.Completed = false
	e.touch(s)
}

func (e *Engine) checkScenario(i int) error {
	if !e.catalog.InRange(i) {
		return fmt.Errorf("%w: %d (catalog has %d)", ErrScenarioOutOfRange, i, e.catalog.Len())
	}
	return nil
}

func (e *Engine) touch(s *Session) {
	s.UpdatedAt = e.now()
}

func (e *Engine) publish(s *Session, typ events.EventType, data any) {
	if e.publisher == nil {
		return
	}
	ev := events.NewEvent(typ, s.ID, data)
	ev.Phase = string(s.Phase)
	ev.StepIndex = s.StepIndex
	e.publisher.Publish(ev)
}
