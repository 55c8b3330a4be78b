// internal/models/candidate.go
package models

import "strings"

// CandidateProfile is one candidate in a ranking pass. Section text is
// already extracted by the ingestion collaborator. Immutable for a pass.
type CandidateProfile struct {
	ID                string   `json:"id"`
	Summary           string   `json:"summary,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	Experience        []string `json:"experience,omitempty"`
	Projects          []string `json:"projects,omitempty"`
	Achievements      []string `json:"achievements,omitempty"`
	Education         []string `json:"education,omitempty"`
	Certifications    []string `json:"certifications,omitempty"`
	YearsOfExperience float64  `json:"years_of_experience,omitempty"`

	// VectorSimilarity is supplied by the external retrieval layer, already
	// scaled to [0,1]. Nil means the signal is absent for this candidate.
	VectorSimilarity *float64 `json:"vector_similarity,omitempty"`

	// SectionSimilarity optionally breaks the vector signal down per section.
	SectionSimilarity map[string]float64 `json:"section_similarity,omitempty"`
}

// NarrativeTexts returns the sentences-bearing sections scanned for
// quantified achievements, in a stable order.
func (c *CandidateProfile) NarrativeTexts() []string {
	out := make([]string, 0, len(c.Experience)+len(c.Projects)+len(c.Achievements))
	out = append(out, c.Experience...)
	out = append(out, c.Projects...)
	out = append(out, c.Achievements...)
	return out
}

// HasText reports whether any section carries non-whitespace text.
func (c *CandidateProfile) HasText() bool {
	if strings.TrimSpace(c.Summary) != "" {
		return true
	}
	for _, group := range [][]string{
		c.Skills, c.Experience, c.Projects, c.Achievements, c.Education, c.Certifications,
	} {
		for _, s := range group {
			if strings.TrimSpace(s) != "" {
				return true
			}
		}
	}
	return false
}
