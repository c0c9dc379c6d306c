package verify

import (
	"time"

	"github.com/cgast/chkwrite/pkg/field"
)

// Verdict is the outcome of checking one field's text.
type Verdict struct {
	Field field.Name `json:"field"`
	OK    bool       `json:"ok"`

	// Pending is set when nothing has been entered yet. A pending verdict is
	// not OK but carries no error message, only a Hint.
	Pending bool `json:"pending,omitempty"`

	// Message explains the expected form. Set only when OK is false and the
	// field was attempted.
	Message string `json:"message,omitempty"`

	// Hint is a neutral prompt for pending or optional fields.
	Hint string `json:"hint,omitempty"`
}

// Attempted reports whether the learner entered anything for the field.
func (v Verdict) Attempted() bool {
	return !v.Pending
}

// Result holds the outcome of evaluating a whole check.
type Result struct {
	Passed    bool                   `json:"overall_pass"`
	Verdicts  map[field.Name]Verdict `json:"verdicts"`
	Failed    []field.Name           `json:"failed_fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
