package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// Data file names inside the catalog filesystem.
const (
	ParametersFile = "parameters.yaml"
	PrinciplesFile = "principles.yaml"
	MatrixFile     = "matrix.yaml"
	ExamplesFile   = "examples.yaml"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded tables. It is parsed
// on first use and shared afterwards; the embedded data is validated by
// tests, so a parse failure here is a build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded data: %v", err))
		}
		c, err := Load(sub)
		if err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

type rawText map[string]string

type rawParameter struct {
	ID   int     `yaml:"id"`
	Name rawText `yaml:"name"`
}

type rawPrinciple struct {
	ID          int       `yaml:"id"`
	Name        rawText   `yaml:"name"`
	Description rawText   `yaml:"description"`
	Examples    []rawText `yaml:"examples"`
}

type rawEntry struct {
	Improving  int   `yaml:"improving"`
	Worsening  int   `yaml:"worsening"`
	Principles []int `yaml:"principles"`
}

type rawExample struct {
	Title       rawText `yaml:"title"`
	Description rawText `yaml:"description"`
}

// Load parses and validates the four catalog files from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var (
		params   []rawParameter
		prins    []rawPrinciple
		entries  []rawEntry
		examples []rawExample
	)
	if err := decodeFile(fsys, ParametersFile, &params); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, PrinciplesFile, &prins); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, MatrixFile, &entries); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, ExamplesFile, &examples); err != nil {
		return nil, err
	}

	c := &Catalog{
		paramByID:    make(map[int]int, len(params)),
		principleIdx: make(map[int]int, len(prins)),
		matrix:       make(map[Pair][]int, len(entries)),
	}

	sort.Slice(params, func(i, j int) bool { return params[i].ID < params[j].ID })
	for _, p := range params {
		if p.ID < 1 || p.ID > ParameterCount {
			return nil, fmt.Errorf("%s: parameter id %d outside 1..%d", ParametersFile, p.ID, ParameterCount)
		}
		if _, dup := c.paramByID[p.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate parameter id %d", ParametersFile, p.ID)
		}
		name := toText(p.Name)
		if !name.Complete() {
			return nil, fmt.Errorf("%s: parameter %d: missing translation", ParametersFile, p.ID)
		}
		c.paramByID[p.ID] = len(c.parameters)
		c.parameters = append(c.parameters, Parameter{ID: p.ID, Name: name})
	}

	sort.Slice(prins, func(i, j int) bool { return prins[i].ID < prins[j].ID })
	for _, p := range prins {
		if p.ID < 1 || p.ID > PrincipleCount {
			return nil, fmt.Errorf("%s: principle id %d outside 1..%d", PrinciplesFile, p.ID, PrincipleCount)
		}
		if _, dup := c.principleIdx[p.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate principle id %d", PrinciplesFile, p.ID)
		}
		pr := Principle{ID: p.ID, Name: toText(p.Name), Description: toText(p.Description)}
		if !pr.Name.Complete() || !pr.Description.Complete() {
			return nil, fmt.Errorf("%s: principle %d: missing translation", PrinciplesFile, p.ID)
		}
		for _, ex := range p.Examples {
			pr.Examples = append(pr.Examples, toText(ex))
		}
		c.principleIdx[p.ID] = len(c.principles)
		c.principles = append(c.principles, pr)
	}

	for _, e := range entries {
		key := Pair{Improving: e.Improving, Worsening: e.Worsening}
		if _, ok := c.paramByID[key.Improving]; !ok {
			return nil, fmt.Errorf("%s: entry %s: unknown improving parameter", MatrixFile, key)
		}
		if _, ok := c.paramByID[key.Worsening]; !ok {
			return nil, fmt.Errorf("%s: entry %s: unknown worsening parameter", MatrixFile, key)
		}
		if _, dup := c.matrix[key]; dup {
			return nil, fmt.Errorf("%s: duplicate entry %s", MatrixFile, key)
		}
		if len(e.Principles) == 0 {
			return nil, fmt.Errorf("%s: entry %s: empty principle list", MatrixFile, key)
		}
		for _, id := range e.Principles {
			if id < 1 || id > PrincipleCount {
				return nil, fmt.Errorf("%s: entry %s: principle id %d outside 1..%d", MatrixFile, key, id, PrincipleCount)
			}
		}
		c.matrix[key] = append([]int(nil), e.Principles...)
	}

	for i, ex := range examples {
		e := Example{Title: toText(ex.Title), Description: toText(ex.Description)}
		if !e.Title.Complete() || !e.Description.Complete() {
			return nil, fmt.Errorf("%s: example %d: missing translation", ExamplesFile, i+1)
		}
		c.examples = append(c.examples, e)
	}

	return c, nil
}

func decodeFile(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func toText(r rawText) Text {
	t := make(Text, len(r))
	for k, v := range r {
		t[Locale(k)] = v
	}
	return t
}
