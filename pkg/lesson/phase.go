package lesson

import (
	"errors"
	"fmt"
	"strings"
)

// Phase is one of the three pedagogical modes of a lesson.
type Phase string

const (
	// Demonstration ("I do") plays a scripted fill of the check.
	Demonstration Phase = "demonstration"
	// Guided ("We do") lets the learner fill fields one at a time and will
	// not move past a wrong required field.
	Guided Phase = "guided"
	// Independent ("You do") lets the learner fill the whole check and
	// grades it at the end.
	Independent Phase = "independent"
)

// ErrUnknownPhase is returned for phase names outside the three modes.
var ErrUnknownPhase = errors.New("unknown phase")

// Phases lists the modes in teaching order.
func Phases() []Phase {
	return []Phase{Demonstration, Guided, Independent}
}

var phaseAliases = map[string]Phase{
	"demonstration": Demonstration,
	"demo":          Demonstration,
	"i-do":          Demonstration,
	"guided":        Guided,
	"we-do":         Guided,
	"independent":   Independent,
	"you-do":        Independent,
}

// ParsePhase converts a phase name or its "I do / We do / You do" alias.
func ParsePhase(s string) (Phase, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	if p, ok := phaseAliases[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// Valid reports whether p is one of the three modes.
func (p Phase) Valid() bool {
	switch p {
	case Demonstration, Guided, Independent:
		return true
	}
	return false
}

// InitialStep is the step index a fresh or reset lesson starts at:
// before the first step for a demonstration, on the first field otherwise.
func (p Phase) InitialStep() int {
	if p == Demonstration {
		return -1
	}
	return 0
}

// Slogan is the short classroom name of the phase.
func (p Phase) Slogan() string {
	switch p {
	case Demonstration:
		return "I do"
	case Guided:
		return "We do"
	case Independent:
		return "You do"
	}
	return string(p)
}
