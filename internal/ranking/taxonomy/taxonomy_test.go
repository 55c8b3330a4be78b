// internal/ranking/taxonomy/taxonomy_test.go
package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTaxonomy() *Taxonomy {
	return New(map[string]Entry{
		"kubernetes": {
			Aliases:  []string{"k8s", "K8S "},
			Families: []string{"container-orchestration"},
		},
		"docker": {
			Families: []string{"container-orchestration"},
		},
		"postgresql": {
			Aliases:  []string{"postgres", "pgsql"},
			Families: []string{"relational-databases"},
		},
		"mysql": {
			Families: []string{"relational-databases"},
		},
		"golang": {
			Aliases: []string{"go"},
		},
	})
}

func TestNormalize(t *testing.T) {
	tax := testTaxonomy()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"alias resolves", "k8s", "kubernetes"},
		{"case and whitespace", "  Postgres ", "postgresql"},
		{"canonical passes through", "docker", "docker"},
		{"unknown lowercases", "Rust", "rust"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tax.Normalize(tt.input))
		})
	}
}

func TestNormalizeAll_DedupesAndSorts(t *testing.T) {
	tax := testTaxonomy()

	got := tax.NormalizeAll([]string{"K8s", "kubernetes", "Go", "golang", "rust"})

	assert.Equal(t, []string{"golang", "kubernetes", "rust"}, got)
}

func TestExpandToFamily(t *testing.T) {
	tax := testTaxonomy()

	got := tax.ExpandToFamily("postgres")

	// the skill itself first, siblings sorted after
	assert.Equal(t, []string{"postgresql", "mysql"}, got)

	assert.Equal(t, []string{"rust"}, tax.ExpandToFamily("rust"))
}

func TestAliases(t *testing.T) {
	tax := testTaxonomy()

	assert.ElementsMatch(t, []string{"postgres", "pgsql"}, tax.Aliases("postgresql"))
	assert.Empty(t, tax.Aliases("mysql"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	content := `skills:
  kubernetes:
    aliases: [k8s]
    families: [container-orchestration]
  docker:
    families: [container-orchestration]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tax, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "kubernetes", tax.Normalize("K8S"))
	assert.Equal(t, []string{"kubernetes", "docker"}, tax.ExpandToFamily("k8s"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills: ["), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
