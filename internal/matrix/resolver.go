// Package matrix resolves a technical contradiction into inventive
// principles.
//
// A curated entry for the exact (improving, worsening) pair always wins.
// Pairs without an entry get a deterministic synthetic suggestion derived
// from the two ids, trimmed to the populated part of the principle catalog.
package matrix

import "github.com/HendryAvila/triz-master/internal/catalog"

// modulus is the nominal principle count the fallback arithmetic wraps on.
const modulus = catalog.PrincipleCount

// Source tells where a resolution came from.
type Source string

const (
	SourceCurated  Source = "curated"
	SourceFallback Source = "fallback"
)

// Resolution is the result of resolving one contradiction.
type Resolution struct {
	Improving  int    `json:"improving"`
	Worsening  int    `json:"worsening"`
	Principles []int  `json:"principles"`
	Source     Source `json:"source"`
}

// Empty reports whether no principle is known or inferable.
func (r Resolution) Empty() bool { return len(r.Principles) == 0 }

// Resolver maps contradictions to principle ids. It is immutable and safe
// for concurrent use.
type Resolver struct {
	table   map[catalog.Pair][]int
	ceiling int
}

// New creates a Resolver over the given curated table. Fallback results
// are limited to ids <= ceiling; a ceiling <= 0 disables the limit.
func New(table map[catalog.Pair][]int, ceiling int) *Resolver {
	t := make(map[catalog.Pair][]int, len(table))
	for k, v := range table {
		t[k] = append([]int(nil), v...)
	}
	return &Resolver{table: t, ceiling: ceiling}
}

// FromCatalog builds a Resolver from the catalog's matrix, using the
// highest populated principle id as the fallback ceiling unless ceiling
// is positive.
func FromCatalog(c *catalog.Catalog, ceiling int) *Resolver {
	if ceiling <= 0 {
		ceiling = c.MaxPrincipleID()
	}
	return New(c.Matrix(), ceiling)
}

// Ceiling returns the fallback id limit.
func (r *Resolver) Ceiling() int { return r.ceiling }

// Resolve returns the principle ids for the contradiction. Inputs are not
// range checked. The result may be empty and is never nil-vs-empty
// significant.
func (r *Resolver) Resolve(improving, worsening int) []int {
	return r.ResolveDetailed(improving, worsening).Principles
}

// ResolveDetailed is Resolve plus the source of the answer.
func (r *Resolver) ResolveDetailed(improving, worsening int) Resolution {
	res := Resolution{Improving: improving, Worsening: worsening}

	if curated, ok := r.table[catalog.Pair{Improving: improving, Worsening: worsening}]; ok {
		res.Source = SourceCurated
		res.Principles = dedupe(curated)
		return res
	}

	res.Source = SourceFallback
	res.Principles = make([]int, 0, 4)
	raw := Candidates(improving, worsening)
	for _, id := range dedupe(raw[:]) {
		if r.ceiling > 0 && id > r.ceiling {
			continue
		}
		res.Principles = append(res.Principles, id)
	}
	return res
}

// Candidates returns the four raw fallback ids for a pair, before
// deduplication and the ceiling filter. A modulo result of exactly zero
// is replaced by a fixed substitute so no candidate is ever 0.
func Candidates(improving, worsening int) [4]int {
	seed := mod(improving*worsening, modulus)
	return [4]int{
		orElse(mod(seed+1, modulus), 1),
		orElse(mod(seed*2, modulus), 13),
		orElse(mod(seed+15, modulus), 15),
		orElse(mod(seed+25, modulus), 2),
	}
}

// mod is a non-negative remainder so negative inputs still map into 0..m-1.
func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func orElse(v, substitute int) int {
	if v == 0 {
		return substitute
	}
	return v
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
