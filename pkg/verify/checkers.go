package verify

import (
	"strings"

	"github.com/cgast/chkwrite/pkg/field"
)

// Checker validates the text entered for one field against the scenario's
// expected value for that field.
type Checker func(raw, expected string) Verdict

// builtinCheckers maps each canonical field to its validator.
var builtinCheckers = map[field.Name]Checker{
	field.Date:          func(raw, _ string) Verdict { return ValidateDate(raw) },
	field.Payee:         ValidatePayee,
	field.AmountNumeric: ValidateAmountNumeric,
	field.AmountWords:   ValidateAmountWords,
	field.Memo:          func(raw, _ string) Verdict { return ValidateMemo(raw) },
	field.Signature:     func(raw, _ string) Verdict { return ValidateSignaturePresence(raw) },
}

// required lists the fields whose verdict decides the overall pass.
// Memo is never required.
var required = map[field.Name]bool{
	field.Date:          true,
	field.Payee:         true,
	field.AmountNumeric: true,
	field.AmountWords:   true,
	field.Signature:     true,
}

// Required reports whether a failing verdict for name fails the lesson.
func Required(name field.Name) bool {
	return required[name]
}

// Blocking reports whether a failing verdict for name stops guided advance.
func Blocking(name field.Name) bool {
	return name != field.Memo
}

// pendingHints prompt for a field the learner has not touched yet.
var pendingHints = map[field.Name]string{
	field.Date:          "Write today's date, for example 10/15/2025.",
	field.Payee:         "Write who you are paying.",
	field.AmountNumeric: "Write the amount in numbers, for example 150.00.",
	field.AmountWords:   "Write the amount in words, for example One hundred fifty and 00/100.",
	field.Signature:     "Sign with your name.",
}

// Pending returns the neutral verdict for a field with no input yet.
func Pending(name field.Name) Verdict {
	return Verdict{Field: name, Pending: true, Hint: pendingHints[name]}
}

// CheckField validates one field with the built-in checkers. Empty input
// yields a pending verdict instead of an error message; memo is handed to
// its validator so it can attach its optional hint.
func CheckField(name field.Name, raw, expected string) Verdict {
	return check(builtinCheckers, name, raw, expected)
}

func check(checkers map[field.Name]Checker, name field.Name, raw, expected string) Verdict {
	if strings.TrimSpace(raw) == "" && name != field.Memo {
		return Pending(name)
	}
	checker := checkers[name]
	if checker == nil {
		return Verdict{Field: name, Message: "no checker for field " + string(name)}
	}
	v := checker(raw, expected)
	v.Field = name
	return v
}
