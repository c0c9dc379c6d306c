package scenario

import (
	"fmt"
	"strings"

	"github.com/cgast/chkwrite/pkg/field"
	"github.com/cgast/chkwrite/pkg/verify"
)

// Supported document header values.
const (
	APIVersion = "chkwrite/v1"
	Kind       = "ScenarioCatalog"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds all validation errors for a catalog.
type ValidationResult struct {
	Errors []ValidationError
}

// Valid returns true if no validation errors were found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message from all validation errors.
func (r ValidationResult) Error() string {
	if r.Valid() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (r *ValidationResult) add(path, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: path, Message: fmt.Sprintf(format, args...)})
}

// ValidateCatalogYAML interpolates and parses data, then validates it.
// Parse failures are returned as errors; structural problems as results.
func ValidateCatalogYAML(data []byte, vars map[string]string) (ValidationResult, error) {
	doc, err := parseDocument(data, vars)
	if err != nil {
		return ValidationResult{}, err
	}
	return validateDocument(doc), nil
}

// validateDocument checks the catalog header and every scenario.
func validateDocument(doc document) ValidationResult {
	var result ValidationResult

	switch doc.APIVersion {
	case "":
		result.add("apiVersion", "required")
	case APIVersion:
	default:
		result.add("apiVersion", "unsupported version %q (expected %s)", doc.APIVersion, APIVersion)
	}

	switch doc.Kind {
	case "":
		result.add("kind", "required")
	case Kind:
	default:
		result.add("kind", "unsupported kind %q (expected %s)", doc.Kind, Kind)
	}

	if len(doc.Scenarios) == 0 {
		result.add("scenarios", "at least one scenario is required")
	}
	for i, s := range doc.Scenarios {
		validateScenario(&result, fmt.Sprintf("scenarios[%d]", i), s)
	}
	return result
}

// ValidateScenario checks one scenario in isolation.
func ValidateScenario(s Scenario) ValidationResult {
	var result ValidationResult
	validateScenario(&result, "scenario", s)
	return result
}

// mustHave lists expected values a scenario cannot leave blank. Memo may be
// empty; the demonstration then simply skips it.
var mustHave = []field.Name{field.Date, field.Payee, field.AmountNumeric, field.AmountWords, field.Signature}

func validateScenario(result *ValidationResult, path string, s Scenario) {
	if strings.TrimSpace(s.Title) == "" {
		result.add(path+".title", "required")
	}
	if strings.TrimSpace(s.Prompt) == "" {
		result.add(path+".prompt", "required")
	}

	for name := range s.Expected {
		if !name.Valid() {
			result.add(path+".expected."+string(name), "unknown field")
		}
	}
	for _, name := range mustHave {
		if strings.TrimSpace(s.Expected.Get(name)) == "" {
			result.add(path+".expected."+string(name), "required")
		}
	}
	if amt := s.Expected.Get(field.AmountNumeric); amt != "" {
		if _, ok := verify.ParseCurrency(amt); !ok {
			result.add(path+".expected.amountNumeric", "not a currency amount: %q", amt)
		}
	}
	if d := s.Expected.Get(field.Date); d != "" {
		if v := verify.ValidateDate(d); !v.OK {
			result.add(path+".expected.date", "not a calendar date: %q", d)
		}
	}

	seen := make(map[field.Name]bool, len(s.Steps))
	for i, step := range s.Steps {
		sp := fmt.Sprintf("%s.steps[%d]", path, i)
		switch {
		case !step.Field.Valid():
			result.add(sp+".field", "unknown field %q", step.Field)
		case seen[step.Field]:
			result.add(sp+".field", "duplicate field %q", step.Field)
		default:
			seen[step.Field] = true
		}
		if strings.TrimSpace(step.Explanation) == "" {
			result.add(sp+".explanation", "required")
		}
	}
}
