// Package field defines the six canonical fields of a personal check and
// the value map a learner fills in for them.
package field

import (
	"errors"
	"fmt"
)

// Name identifies one field on the check form.
type Name string

const (
	Date          Name = "date"
	Payee         Name = "payee"
	AmountNumeric Name = "amountNumeric"
	AmountWords   Name = "amountWords"
	Memo          Name = "memo"
	Signature     Name = "signature"
)

// ErrUnknownField is returned when a name outside the canonical six is used.
var ErrUnknownField = errors.New("unknown field")

// canonical is the order a check is filled in, left to right, top to bottom.
var canonical = [...]Name{Date, Payee, AmountNumeric, AmountWords, Memo, Signature}

// Count is the number of canonical fields.
const Count = len(canonical)

// Canonical returns the canonical field order. The slice is a copy.
func Canonical() []Name {
	out := make([]Name, Count)
	copy(out, canonical[:])
	return out
}

// Position returns the 0-based canonical position of n, or -1.
func Position(n Name) int {
	for i, c := range canonical {
		if c == n {
			return i
		}
	}
	return -1
}

// At returns the field at canonical position i. It panics when i is out of range.
func At(i int) Name {
	return canonical[i]
}

// Valid reports whether n is one of the canonical fields.
func (n Name) Valid() bool {
	return Position(n) >= 0
}

// Label is the human-readable caption printed on the check.
func (n Name) Label() string {
	switch n {
	case Date:
		return "Date"
	case Payee:
		return "Pay to the order of"
	case AmountNumeric:
		return "Amount ($)"
	case AmountWords:
		return "Amount in words"
	case Memo:
		return "Memo"
	case Signature:
		return "Signature"
	default:
		return string(n)
	}
}

// aliases accepts the snake_case spellings used by older front ends.
var aliases = map[string]Name{
	"amount_numeric": AmountNumeric,
	"amount_words":   AmountWords,
	"amount":         AmountNumeric,
	"words":          AmountWords,
}

// Parse converts a raw field name into a Name.
func Parse(s string) (Name, error) {
	n := Name(s)
	if n.Valid() {
		return n, nil
	}
	if a, ok := aliases[s]; ok {
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}
