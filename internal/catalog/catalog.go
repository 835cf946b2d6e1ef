// Package catalog holds the fixed TRIZ reference data: the 39 engineering
// parameters, the inventive principles and the curated contradiction matrix.
//
// All tables are embedded in the binary, parsed once and never mutated.
// Lookups by id report a miss with ok=false; a missing entry is an
// incomplete catalog, not a failure.
package catalog

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// ParameterCount is the size of the classic parameter taxonomy.
	ParameterCount = 39
	// PrincipleCount is the nominal size of the principle catalog.
	PrincipleCount = 40
)

// Parameter is one of the 39 engineering characteristics.
type Parameter struct {
	ID   int  `json:"id"`
	Name Text `json:"name"`
}

// Principle is an inventive principle with illustrative examples.
type Principle struct {
	ID          int    `json:"id"`
	Name        Text   `json:"name"`
	Description Text   `json:"description"`
	Examples    []Text `json:"examples"`
}

// Pair is a directional contradiction key: the parameter being improved
// and the parameter that worsens as a result.
type Pair struct {
	Improving int `json:"improving"`
	Worsening int `json:"worsening"`
}

// Reverse returns the pair with the roles swapped.
func (p Pair) Reverse() Pair {
	return Pair{Improving: p.Worsening, Worsening: p.Improving}
}

// String formats the pair as "improving_worsening".
func (p Pair) String() string {
	return strconv.Itoa(p.Improving) + "_" + strconv.Itoa(p.Worsening)
}

// Entry is one curated matrix cell.
type Entry struct {
	Pair
	Principles []int `json:"principles"`
}

// Example is a sample problem statement.
type Example struct {
	Title       Text `json:"title"`
	Description Text `json:"description"`
}

// Catalog is the read-only set of reference tables.
type Catalog struct {
	parameters   []Parameter
	principles   []Principle
	paramByID    map[int]int
	principleIdx map[int]int
	matrix       map[Pair][]int
	examples     []Example
}

// Parameter returns the parameter with the given id.
func (c *Catalog) Parameter(id int) (Parameter, bool) {
	i, ok := c.paramByID[id]
	if !ok {
		return Parameter{}, false
	}
	return c.parameters[i], true
}

// Principle returns the principle with the given id. Ids inside the
// nominal 1..40 range may still miss when the catalog is partially
// populated.
func (c *Catalog) Principle(id int) (Principle, bool) {
	i, ok := c.principleIdx[id]
	if !ok {
		return Principle{}, false
	}
	return c.principles[i], true
}

// Parameters returns all parameters in id order.
func (c *Catalog) Parameters() []Parameter {
	out := make([]Parameter, len(c.parameters))
	copy(out, c.parameters)
	return out
}

// Principles returns all populated principles in id order.
func (c *Catalog) Principles() []Principle {
	out := make([]Principle, len(c.principles))
	copy(out, c.principles)
	return out
}

// MaxPrincipleID returns the highest populated principle id.
func (c *Catalog) MaxPrincipleID() int {
	if len(c.principles) == 0 {
		return 0
	}
	return c.principles[len(c.principles)-1].ID
}

// Matrix returns a copy of the curated contradiction table.
func (c *Catalog) Matrix() map[Pair][]int {
	out := make(map[Pair][]int, len(c.matrix))
	for k, v := range c.matrix {
		out[k] = append([]int(nil), v...)
	}
	return out
}

// Entries returns the curated matrix as a list sorted by pair.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.matrix))
	for k, v := range c.matrix {
		out = append(out, Entry{Pair: k, Principles: append([]int(nil), v...)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Improving != out[j].Improving {
			return out[i].Improving < out[j].Improving
		}
		return out[i].Worsening < out[j].Worsening
	})
	return out
}

// Examples returns the bundled sample problems.
func (c *Catalog) Examples() []Example {
	out := make([]Example, len(c.examples))
	copy(out, c.examples)
	return out
}

// SearchParameters returns parameters whose localized name contains term
// (case-insensitive) or whose id contains term as a substring. An empty
// term matches everything.
func (c *Catalog) SearchParameters(term string, loc Locale) []Parameter {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.Parameters()
	}
	var out []Parameter
	for _, p := range c.parameters {
		if strings.Contains(strings.ToLower(p.Name.Get(loc)), term) ||
			strings.Contains(strconv.Itoa(p.ID), term) {
			out = append(out, p)
		}
	}
	return out
}

// PrincipleNames maps ids to localized names, skipping ids the catalog
// does not hold. The second return value lists the skipped ids.
func (c *Catalog) PrincipleNames(ids []int, loc Locale) (names []string, missing []int) {
	for _, id := range ids {
		p, ok := c.Principle(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		names = append(names, p.Name.Get(loc))
	}
	return names, missing
}
