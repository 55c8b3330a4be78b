// internal/ranking/semantic/text.go
package semantic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"profile-ranker/internal/models"
)

// Field is one named document section fed to the text builder.
type Field struct {
	Name  string
	Value interface{}
}

// BuildText renders fields into one reranker input string. Formatting is
// type-aware: lists are joined with " | ", maps become "key: value" pairs,
// years of experience reads as text, plain numbers and strings pass
// through. Empty values contribute nothing.
func BuildText(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		part := renderValue(field.Name, field.Value)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n")
}

func renderValue(name string, value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []string:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(item); s != "" {
				items = append(items, s)
			}
		}
		return strings.Join(items, " | ")
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			if v[k] != "" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+": "+v[k])
		}
		return strings.Join(pairs, " | ")
	case float64:
		if v == 0 {
			return ""
		}
		if name == "years_of_experience" {
			return strconv.FormatFloat(v, 'f', -1, 64) + " years experience"
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}
		if name == "years_of_experience" {
			return strconv.Itoa(v) + " years experience"
		}
		return strconv.Itoa(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// RequirementFields lists the requirement sections in rendering order.
func RequirementFields(req *models.RequirementDocument) []Field {
	return []Field{
		{"job_title", req.Title},
		{"required_skills", req.RequiredSkills},
		{"required_qualifications", req.RequiredQualifications},
		{"preferred_skills", req.PreferredSkills},
		{"technical_skills", req.TechnicalSkills},
		{"soft_skills", req.SoftSkills},
		{"certifications", req.Certifications},
		{"responsibilities", req.Responsibilities},
		{"years_of_experience", req.YearsOfExperience},
		{"description", req.Summary},
	}
}

// CandidateFields lists the candidate sections in rendering order.
func CandidateFields(c *models.CandidateProfile) []Field {
	return []Field{
		{"summary", c.Summary},
		{"years_of_experience", c.YearsOfExperience},
		{"work_experience", c.Experience},
		{"education", c.Education},
		{"skills", c.Skills},
		{"certifications", c.Certifications},
		{"projects", c.Projects},
		{"achievements", c.Achievements},
	}
}

// RequirementText builds the full aggregate query text.
func RequirementText(req *models.RequirementDocument) string {
	return BuildText(RequirementFields(req))
}

// CandidateText builds the full aggregate candidate text.
func CandidateText(c *models.CandidateProfile) string {
	return BuildText(CandidateFields(c))
}

// SectionText renders a single named requirement section, empty string if
// the section is unknown or carries no text.
func SectionText(req *models.RequirementDocument, section string) string {
	for _, field := range RequirementFields(req) {
		if field.Name == section {
			return renderValue(field.Name, field.Value)
		}
	}
	return ""
}

// RequirementSections names the non-empty requirement sections in order.
func RequirementSections(req *models.RequirementDocument) []string {
	var out []string
	for _, field := range RequirementFields(req) {
		if renderValue(field.Name, field.Value) != "" {
			out = append(out, field.Name)
		}
	}
	return out
}
