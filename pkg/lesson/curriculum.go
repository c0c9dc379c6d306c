package lesson

import (
	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/scenario"
)

// defaultExplanations narrate the demonstration of scenarios that carry no
// scripted steps of their own.
var defaultExplanations = map[field.Name]string{
	field.Date:          "Write today's date in the top right corner.",
	field.Payee:         "On the \"Pay to the Order of\" line, write who you are paying.",
	field.AmountNumeric: "In the small box, write the amount in numbers.",
	field.AmountWords:   "On the long line, write the amount in words, with cents over 100.",
	field.Memo:          "The memo line is optional. Use it to note what the check is for.",
	field.Signature:     "Sign the check on the bottom right line.",
}

// Curriculum returns the demonstration steps of sc. A scenario with its own
// steps uses them as written; any other scenario walks the six fields in
// canonical order with the default explanations.
func Curriculum(sc scenario.Scenario) []scenario.Step {
	if len(sc.Steps) > 0 {
		out := make([]scenario.Step, len(sc.Steps))
		copy(out, sc.Steps)
		return out
	}

	out := make([]scenario.Step, 0, field.Count)
	for _, name := range field.Canonical() {
		out = append(out, scenario.Step{Field: name, Explanation: defaultExplanations[name]})
	}
	return out
}

// FilledFields projects the demonstration of sc at stepIndex: every field
// named by a step at or before stepIndex carries its expected value, every
// other field is empty. A stepIndex of -1 yields an all-empty check.
// The result depends only on its arguments.
func FilledFields(sc scenario.Scenario, stepIndex int) field.Values {
	out := field.NewValues()
	for i, step := range Curriculum(sc) {
		if i > stepIndex {
			break
		}
		out[step.Field] = sc.Expected.Get(step.Field)
	}
	return out
}
