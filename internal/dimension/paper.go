package dimension

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed papers.yaml
var papersYAML []byte

// NamedSize is a standard paper format.
type NamedSize struct {
	Name   string  `yaml:"name" json:"name"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Spec returns the named size as a millimeter DimensionSpec.
func (n NamedSize) Spec() DimensionSpec {
	return DimensionSpec{Width: n.Width, Height: n.Height, Unit: UnitMillimeter}
}

type paperFile struct {
	Sizes []NamedSize `yaml:"sizes"`
}

// paperTable is built once at init and only read afterwards.
var paperTable = mustLoadPapers(papersYAML)

func mustLoadPapers(data []byte) map[string]NamedSize {
	table, err := loadPapers(data)
	if err != nil {
		panic(err)
	}
	return table
}

func loadPapers(data []byte) (map[string]NamedSize, error) {
	var file paperFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("dimension: parse paper sizes: %w", err)
	}
	table := make(map[string]NamedSize, len(file.Sizes))
	for _, size := range file.Sizes {
		key := strings.ToUpper(strings.TrimSpace(size.Name))
		if key == "" || size.Width <= 0 || size.Height <= 0 {
			return nil, fmt.Errorf("dimension: invalid paper size %q", size.Name)
		}
		table[key] = size
	}
	return table, nil
}

// LookupNamedSize finds a standard size by case-insensitive name.
func LookupNamedSize(name string) (DimensionSpec, bool) {
	size, ok := paperTable[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return DimensionSpec{}, false
	}
	return size.Spec(), true
}

// NamedSizes lists the standard sizes ordered by name.
func NamedSizes() []NamedSize {
	out := make([]NamedSize, 0, len(paperTable))
	for _, size := range paperTable {
		out = append(out, size)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
