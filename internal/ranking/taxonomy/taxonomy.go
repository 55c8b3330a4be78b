// internal/ranking/taxonomy/taxonomy.go
package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry describes one canonical skill in the taxonomy file.
type Entry struct {
	Aliases  []string `yaml:"aliases"`
	Families []string `yaml:"families"`
}

// File is the on-disk taxonomy shape.
type File struct {
	Skills map[string]Entry `yaml:"skills"`
}

// Taxonomy resolves free-text skill mentions to canonical identifiers and
// groups skills into families for partial-credit matching. Built once per
// process lifetime and treated as read-only afterwards.
type Taxonomy struct {
	aliasToCanonical map[string]string
	familyMembers    map[string][]string
	skillFamilies    map[string][]string
	skillAliases     map[string][]string
}

// New builds a taxonomy from canonical-skill entries. Canonical names and
// aliases are lowercased; the last writer wins on alias collisions.
func New(skills map[string]Entry) *Taxonomy {
	t := &Taxonomy{
		aliasToCanonical: make(map[string]string),
		familyMembers:    make(map[string][]string),
		skillFamilies:    make(map[string][]string),
		skillAliases:     make(map[string][]string),
	}
	for canonical, entry := range skills {
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if canonical == "" {
			continue
		}
		t.aliasToCanonical[canonical] = canonical
		for _, alias := range entry.Aliases {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias != "" {
				t.aliasToCanonical[alias] = canonical
				t.skillAliases[canonical] = append(t.skillAliases[canonical], alias)
			}
		}
		for _, family := range entry.Families {
			family = strings.ToLower(strings.TrimSpace(family))
			if family == "" {
				continue
			}
			t.familyMembers[family] = append(t.familyMembers[family], canonical)
			t.skillFamilies[canonical] = append(t.skillFamilies[canonical], family)
		}
	}
	for family := range t.familyMembers {
		sort.Strings(t.familyMembers[family])
	}
	return t
}

// Load reads a YAML taxonomy file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file %s: %w", path, err)
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}
	return New(file.Skills), nil
}

// Normalize resolves one token to its canonical skill. Unknown tokens pass
// through lowercased so downstream matching stays case-insensitive.
func (t *Taxonomy) Normalize(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if canonical, ok := t.aliasToCanonical[token]; ok {
		return canonical
	}
	return token
}

// NormalizeAll normalizes tokens into a deduplicated, sorted skill set.
func (t *Taxonomy) NormalizeAll(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		skill := t.Normalize(token)
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}

// Aliases returns the aliases registered for a canonical skill.
func (t *Taxonomy) Aliases(skill string) []string {
	return t.skillAliases[strings.ToLower(skill)]
}

// ExpandToFamily returns the skill plus every skill sharing a family with
// it. Used only for partial credit, never to upgrade an exact match.
func (t *Taxonomy) ExpandToFamily(skill string) []string {
	skill = t.Normalize(skill)
	seen := map[string]bool{skill: true}
	out := []string{skill}
	for _, family := range t.skillFamilies[skill] {
		for _, member := range t.familyMembers[family] {
			if !seen[member] {
				seen[member] = true
				out = append(out, member)
			}
		}
	}
	sort.Strings(out[1:])
	return out
}
