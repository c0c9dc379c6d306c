// Package scenario holds the read-only catalog of check-writing tasks.
package scenario

import (
	"github.com/cgast/chkwrite/pkg/field"
)

// Scenario is one check-writing task. Scenarios are built once when the
// catalog loads and are never mutated afterwards.
type Scenario struct {
	Title       string       `yaml:"title" json:"title"`
	Prompt      string       `yaml:"prompt" json:"narrative_prompt"`
	ContextNote string       `yaml:"context_note,omitempty" json:"context_note,omitempty"`
	Expected    field.Values `yaml:"expected" json:"expected_fields"`
	Steps       []Step       `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Step is one entry of a demonstration curriculum.
type Step struct {
	Field       field.Name `yaml:"field" json:"field"`
	Explanation string     `yaml:"explanation" json:"explanation"`
}

// Summary is the browsable part of a scenario.
type Summary struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Prompt string `json:"narrative_prompt"`
}

// document is the on-disk catalog layout.
type document struct {
	APIVersion string     `yaml:"apiVersion"`
	Kind       string     `yaml:"kind"`
	Scenarios  []Scenario `yaml:"scenarios"`
}

// clone returns a copy that shares no mutable state with s.
func (s Scenario) clone() Scenario {
	out := s
	out.Expected = s.Expected.Clone()
	if s.Steps != nil {
		out.Steps = make([]Step, len(s.Steps))
		copy(out.Steps, s.Steps)
	}
	return out
}
