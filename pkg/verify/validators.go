package verify

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cgast/chkwrite/pkg/field"
)

// Failure and hint texts shown to the learner.
const (
	msgBadDate = "Use a valid date like 10/15/2025."
	hintMemo   = "Optional: note what the check is for."
)

// dateLayouts accepts one- or two-digit months and days with slash or dash
// separators and two- or four-digit years.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
}

// ValidateDate checks that raw is a real calendar date in a US layout.
// It does not compare against any expected date: "today" depends on the
// learner.
func ValidateDate(raw string) Verdict {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return Verdict{Field: field.Date, OK: true}
		}
	}
	return Verdict{Field: field.Date, Message: msgBadDate}
}

// ParseCurrency strips a leading "$" and thousands separators and parses
// the rest as a decimal number. Signs are left to strconv.
func ParseCurrency(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ValidateAmountNumeric accepts raw when it equals expected to the cent.
func ValidateAmountNumeric(raw, expected string) Verdict {
	target, okT := ParseCurrency(expected)
	got, okG := ParseCurrency(raw)
	if okT && okG && math.Abs(target-got) < 0.005 {
		return Verdict{Field: field.AmountNumeric, OK: true}
	}
	return Verdict{Field: field.AmountNumeric, Message: fmt.Sprintf("Expected: %s", expected)}
}

// fillerWords are dropped before comparing amounts written in words.
var fillerWords = map[string]bool{
	"dollar":  true,
	"dollars": true,
	"and":     true,
	"only":    true,
}

// NormalizeAmountWords reduces a written amount to its significant tokens so
// "One hundred fifty dollars and 00/100" and "one-hundred-fifty 00/100"
// compare equal.
func NormalizeAmountWords(text string) string {
	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '/', r == ' ':
			return r
		default:
			return ' '
		}
	}, s)

	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !fillerWords[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// ValidateAmountWords compares normalized written amounts.
func ValidateAmountWords(raw, expected string) Verdict {
	if NormalizeAmountWords(raw) == NormalizeAmountWords(expected) {
		return Verdict{Field: field.AmountWords, OK: true}
	}
	return Verdict{
		Field:   field.AmountWords,
		Message: fmt.Sprintf("Example: %s (format flexible)", expected),
	}
}

// NormalizeText trims, lower-cases and collapses runs of whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ValidatePayee compares names ignoring case and spacing.
func ValidatePayee(raw, expected string) Verdict {
	if NormalizeText(raw) == NormalizeText(expected) {
		return Verdict{Field: field.Payee, OK: true}
	}
	return Verdict{Field: field.Payee, Message: fmt.Sprintf("Expected: %s", expected)}
}

// ValidateSignaturePresence accepts any non-blank name.
func ValidateSignaturePresence(raw string) Verdict {
	if strings.TrimSpace(raw) != "" {
		return Verdict{Field: field.Signature, OK: true}
	}
	return Verdict{Field: field.Signature, Message: "Sign the check with your name."}
}

// ValidateMemo never fails. An empty memo only gets an informational hint.
func ValidateMemo(raw string) Verdict {
	v := Verdict{Field: field.Memo, OK: true}
	if strings.TrimSpace(raw) == "" {
		v.Hint = hintMemo
	}
	return v
}
