package lesson

import (
	"time"

	"github.com/cgast/chkwrite/pkg/field"
)

// Session is one learner's run through a scenario. It is owned by a single
// learner and mutated only through Engine methods; no state lives outside it.
type Session struct {
	ID            string                 `json:"id"`
	ScenarioIndex int                    `json:"scenario_index"`
	Phase         Phase                  `json:"phase"`
	StepIndex     int                    `json:"step_index"`
	Values        map[Phase]field.Values `json:"field_values"`
	Completed     bool                   `json:"completed"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// values returns the phase's own value map, creating it on first use so each
// phase keeps its entries separate.
func (s *Session) values(p Phase) field.Values {
	if s.Values == nil {
		s.Values = make(map[Phase]field.Values, 3)
	}
	v, ok := s.Values[p]
	if !ok {
		v = field.NewValues()
		s.Values[p] = v
	}
	return v
}

// PhaseValues returns a copy of the entries typed under phase p.
func (s *Session) PhaseValues(p Phase) field.Values {
	return s.Values[p].Clone()
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	if s.Values != nil {
		out.Values = make(map[Phase]field.Values, len(s.Values))
		for p, v := range s.Values {
			out.Values[p] = v.Clone()
		}
	}
	return &out
}
