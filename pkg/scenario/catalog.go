package scenario

// Catalog is an ordered, fixed list of scenarios. It is safe for concurrent
// reads and is shared by every lesson session.
type Catalog struct {
	scenarios []Scenario
}

// NewCatalog builds a catalog from already validated scenarios.
func NewCatalog(scenarios []Scenario) *Catalog {
	c := &Catalog{scenarios: make([]Scenario, len(scenarios))}
	for i, s := range scenarios {
		c.scenarios[i] = s.clone()
	}
	return c
}

// Len returns the number of scenarios.
func (c *Catalog) Len() int {
	return len(c.scenarios)
}

// InRange reports whether i indexes a scenario.
func (c *Catalog) InRange(i int) bool {
	return i >= 0 && i < len(c.scenarios)
}

// At returns the scenario at position i. Callers validate i against Len;
// an out-of-range index panics like slice indexing.
func (c *Catalog) At(i int) Scenario {
	return c.scenarios[i].clone()
}

// Summaries lists every scenario's index, title and prompt in order.
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, len(c.scenarios))
	for i, s := range c.scenarios {
		out[i] = Summary{Index: i, Title: s.Title, Prompt: s.Prompt}
	}
	return out
}
