// internal/models/requirement.go
package models

// RequirementDocument is the target a batch of candidates is ranked against.
// It arrives fully resolved from the storage collaborator; the engine never
// performs multi-path lookups itself. Immutable for the duration of a pass.
type RequirementDocument struct {
	ID                     string   `json:"id"`
	Title                  string   `json:"title,omitempty"`
	Summary                string   `json:"summary,omitempty"`
	RequiredSkills         []string `json:"required_skills,omitempty"`
	RequiredQualifications []string `json:"required_qualifications,omitempty"`
	TechnicalSkills        []string `json:"technical_skills,omitempty"`
	PreferredSkills        []string `json:"preferred_skills,omitempty"`
	SoftSkills             []string `json:"soft_skills,omitempty"`
	Certifications         []string `json:"certifications,omitempty"`
	Responsibilities       []string `json:"responsibilities,omitempty"`
	YearsOfExperience      float64  `json:"years_of_experience,omitempty"`

	// Derived canonical skill sets. When empty they are computed from the
	// field groups above during the pass; when supplied they win.
	MandatorySkills []string `json:"mandatory_skills,omitempty"`
	OptionalSkills  []string `json:"optional_skills,omitempty"`
}

// IsEmpty reports whether the document carries no rankable content at all.
func (r *RequirementDocument) IsEmpty() bool {
	return r.Title == "" && r.Summary == "" &&
		len(r.RequiredSkills) == 0 && len(r.RequiredQualifications) == 0 &&
		len(r.TechnicalSkills) == 0 && len(r.PreferredSkills) == 0 &&
		len(r.SoftSkills) == 0 && len(r.Certifications) == 0 &&
		len(r.Responsibilities) == 0 &&
		len(r.MandatorySkills) == 0 && len(r.OptionalSkills) == 0
}
