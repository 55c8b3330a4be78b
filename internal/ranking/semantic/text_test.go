// internal/ranking/semantic/text_test.go
package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"profile-ranker/internal/models"
)

func TestBuildText(t *testing.T) {
	tests := []struct {
		name     string
		fields   []Field
		expected string
	}{
		{
			name: "lists joined with pipes",
			fields: []Field{
				{"skills", []string{"go", " kubernetes ", ""}},
			},
			expected: "go | kubernetes",
		},
		{
			name: "maps sorted by key",
			fields: []Field{
				{"links", map[string]string{"github": "g", "blog": "b", "empty": ""}},
			},
			expected: "blog: b | github: g",
		},
		{
			name: "years of experience reads as text",
			fields: []Field{
				{"years_of_experience", 7.5},
			},
			expected: "7.5 years experience",
		},
		{
			name: "zero numbers render empty",
			fields: []Field{
				{"years_of_experience", 0.0},
				{"summary", "backend engineer"},
			},
			expected: "backend engineer",
		},
		{
			name: "parts joined with newlines",
			fields: []Field{
				{"title", "Platform Engineer"},
				{"skills", []string{"go", "terraform"}},
			},
			expected: "Platform Engineer\ngo | terraform",
		},
		{
			name:     "all empty",
			fields:   []Field{{"a", ""}, {"b", []string{}}, {"c", nil}},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildText(tt.fields))
		})
	}
}

func TestRequirementText_FieldOrder(t *testing.T) {
	req := &models.RequirementDocument{
		Title:             "Senior Go Engineer",
		RequiredSkills:    []string{"go", "postgres"},
		YearsOfExperience: 5,
		Summary:           "Own the ranking platform.",
	}

	got := RequirementText(req)

	expected := "Senior Go Engineer\ngo | postgres\n5 years experience\nOwn the ranking platform."
	assert.Equal(t, expected, got)
}

func TestCandidateText_FieldOrder(t *testing.T) {
	c := &models.CandidateProfile{
		Summary:           "Backend engineer",
		YearsOfExperience: 6,
		Experience:        []string{"Built ranking services"},
		Skills:            []string{"go", "redis"},
	}

	got := CandidateText(c)

	expected := "Backend engineer\n6 years experience\nBuilt ranking services\ngo | redis"
	assert.Equal(t, expected, got)
}

func TestSectionText(t *testing.T) {
	req := &models.RequirementDocument{
		Title:          "Engineer",
		RequiredSkills: []string{"go"},
	}

	assert.Equal(t, "go", SectionText(req, "required_skills"))
	assert.Equal(t, "", SectionText(req, "certifications"))
	assert.Equal(t, "", SectionText(req, "unknown_section"))
}

func TestRequirementSections(t *testing.T) {
	req := &models.RequirementDocument{
		Title:          "Engineer",
		RequiredSkills: []string{"go"},
		Summary:        "desc",
	}

	assert.Equal(t, []string{"job_title", "required_skills", "description"}, RequirementSections(req))
}
