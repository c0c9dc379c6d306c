package verify

import (
	"time"

	"go.uber.org/zap"

	"github.com/cgast/chkwrite/pkg/field"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithFailFast stops evaluation at the first failing required field.
// Fields after it are left out of the verdict set.
func WithFailFast(ff bool) Option {
	return func(e *Evaluator) {
		e.failFast = ff
	}
}

// WithChecker replaces the checker for one field on this evaluator only.
func WithChecker(name field.Name, c Checker) Option {
	return func(e *Evaluator) {
		e.checkers[name] = c
	}
}

// WithLogger attaches a logger. Evaluations are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// Evaluator grades submitted check fields against a scenario's expected
// values. It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	failFast bool
	checkers map[field.Name]Checker
	logger   *zap.Logger
}

// NewEvaluator creates an evaluator with the given options.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		checkers: make(map[field.Name]Checker, len(builtinCheckers)),
		logger:   zap.NewNop(),
	}
	for name, c := range builtinCheckers {
		e.checkers[name] = c
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check validates a single field. Used for live feedback as the learner types.
func (e *Evaluator) Check(name field.Name, raw, expected string) Verdict {
	return check(e.checkers, name, raw, expected)
}

// Evaluate checks every canonical field. The overall pass is the AND of the
// required fields' verdicts; memo never affects it.
func (e *Evaluator) Evaluate(submitted, expected field.Values) Result {
	result := Result{
		Passed:    true,
		Verdicts:  make(map[field.Name]Verdict, field.Count),
		Timestamp: time.Now(),
	}

	for _, name := range field.Canonical() {
		v := e.Check(name, submitted.Get(name), expected.Get(name))
		result.Verdicts[name] = v

		if Required(name) && !v.OK {
			result.Passed = false
			result.Failed = append(result.Failed, name)
			if e.failFast {
				break
			}
		}
	}

	e.logger.Debug("evaluated submission",
		zap.Bool("passed", result.Passed),
		zap.Int("failed", len(result.Failed)),
	)
	return result
}

// Evaluate is a convenience wrapper around a default Evaluator.
func Evaluate(submitted, expected field.Values) Result {
	return NewEvaluator().Evaluate(submitted, expected)
}
