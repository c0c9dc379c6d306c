package field

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Values maps canonical fields to the text entered for them. A nil Values
// reads as all fields empty.
type Values map[Name]string

// NewValues returns a Values with every canonical field present and empty.
func NewValues() Values {
	v := make(Values, Count)
	for _, n := range canonical {
		v[n] = ""
	}
	return v
}

// Get returns the text for n, or "" if unset.
func (v Values) Get(n Name) string {
	return v[n]
}

// Set stores text for n. Names outside the canonical six are rejected so the
// map never grows foreign keys.
func (v Values) Set(n Name, text string) error {
	if !n.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownField, n)
	}
	v[n] = text
	return nil
}

// Clone returns an independent copy with every canonical field present.
func (v Values) Clone() Values {
	out := NewValues()
	for n, text := range v {
		if n.Valid() {
			out[n] = text
		}
	}
	return out
}

// UnmarshalJSON drops unknown keys instead of failing, so stale clients
// cannot smuggle foreign fields into a session. A canonical key wins over
// any alias for the same field; among aliases the first in sorted order wins.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Values, len(raw))
	for k, text := range raw {
		if n := Name(k); n.Valid() {
			out[n] = text
		}
	}
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		n, ok := aliases[k]
		if !ok {
			continue
		}
		if _, set := out[n]; !set {
			out[n] = raw[k]
		}
	}
	*v = out
	return nil
}
