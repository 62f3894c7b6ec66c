// Package profile maps category names to the semantic guidance injected into
// generation prompts.
package profile

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

// CategoryProfile describes what a category's artwork should and should not show.
type CategoryProfile struct {
	Theme             string `yaml:"theme" json:"theme"`
	AllowedElements   string `yaml:"elements" json:"allowed_elements"`
	ForbiddenElements string `yaml:"forbidden" json:"forbidden_elements"`
	ColorGuidance     string `yaml:"colors" json:"color_guidance"`
}

// Table is a read-only lookup of category profiles keyed by normalized name.
type Table struct {
	profiles map[string]CategoryProfile
}

var defaultTable = mustParse(profilesYAML)

// Default returns the embedded process-wide table.
func Default() *Table {
	return defaultTable
}

// Parse builds a Table from a YAML document keyed by category name.
func Parse(data []byte) (*Table, error) {
	raw := map[string]CategoryProfile{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("profile: parse table: %w", err)
	}
	profiles := make(map[string]CategoryProfile, len(raw))
	for name, p := range raw {
		key := normalize(name)
		if key == "" {
			return nil, fmt.Errorf("profile: empty category key")
		}
		if p.Theme == "" || p.AllowedElements == "" || p.ForbiddenElements == "" || p.ColorGuidance == "" {
			return nil, fmt.Errorf("profile: %q is missing fields", name)
		}
		profiles[key] = p
	}
	return &Table{profiles: profiles}, nil
}

func mustParse(data []byte) *Table {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return t
}

// For returns the profile for category. Unknown categories get a generic
// profile parameterized with the category name.
func (t *Table) For(category string) CategoryProfile {
	if p, ok := t.Lookup(category); ok {
		return p
	}
	return Generic(category)
}

// Lookup reports whether category has a dedicated profile.
func (t *Table) Lookup(category string) (CategoryProfile, bool) {
	if t == nil {
		return CategoryProfile{}, false
	}
	p, ok := t.profiles[normalize(category)]
	return p, ok
}

// Keys lists the categories with dedicated profiles.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.profiles))
	for k := range t.profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Generic synthesizes a profile for a category without a dedicated entry.
func Generic(category string) CategoryProfile {
	category = strings.TrimSpace(category)
	return CategoryProfile{
		Theme:             fmt.Sprintf("professional %s theme", category),
		AllowedElements:   fmt.Sprintf("relevant visual elements for %s", category),
		ForbiddenElements: fmt.Sprintf("DO NOT include elements unrelated to %s", category),
		ColorGuidance:     "professional, modern color palette",
	}
}

// For looks category up in the default table.
func For(category string) CategoryProfile {
	return defaultTable.For(category)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
