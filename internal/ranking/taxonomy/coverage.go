// internal/ranking/taxonomy/coverage.go
package taxonomy

import (
	"sort"

	"profile-ranker/internal/models"
)

// Credit values for skill matching.
const (
	ExactCredit  = 1.0
	FamilyCredit = 0.5
)

// Coverage computes the covered fraction of a required skill set. Full
// credit for a verbatim match, half credit when only a family sibling is
// present. An empty required set is vacuously satisfied with coverage 1.0.
func Coverage(required, candidateSkills []string, tax *Taxonomy) (float64, []models.SkillMatch) {
	if len(required) == 0 {
		return 1.0, nil
	}

	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		have[tax.Normalize(s)] = true
	}

	matches := make([]models.SkillMatch, 0, len(required))
	var credit float64
	for _, raw := range required {
		skill := tax.Normalize(raw)
		if have[skill] {
			credit += ExactCredit
			matches = append(matches, models.SkillMatch{
				Skill: skill, Credit: ExactCredit, Matched: skill, Kind: "exact",
			})
			continue
		}
		sibling := familySibling(skill, have, tax)
		if sibling != "" {
			credit += FamilyCredit
			matches = append(matches, models.SkillMatch{
				Skill: skill, Credit: FamilyCredit, Matched: sibling, Kind: "family",
			})
			continue
		}
		matches = append(matches, models.SkillMatch{Skill: skill, Kind: "none"})
	}
	return credit / float64(len(required)), matches
}

// familySibling returns the first family member of skill present in the
// candidate set, excluding the skill itself.
func familySibling(skill string, have map[string]bool, tax *Taxonomy) string {
	for _, member := range tax.ExpandToFamily(skill) {
		if member == skill {
			continue
		}
		if have[member] {
			return member
		}
	}
	return ""
}

// SkillGroups is the requirement's skill demand split into hard and soft
// requirements. Mandatory wins on overlap; the optional set never contains
// a mandatory skill.
type SkillGroups struct {
	Mandatory []string
	Optional  []string
}

// BuildSkillGroups derives the mandatory/optional canonical skill sets from
// a requirement document. Explicitly supplied derived sets take precedence
// over the raw field groups.
func BuildSkillGroups(req *models.RequirementDocument, tax *Taxonomy) SkillGroups {
	if len(req.MandatorySkills) > 0 || len(req.OptionalSkills) > 0 {
		mandatory := tax.NormalizeAll(req.MandatorySkills)
		return SkillGroups{
			Mandatory: mandatory,
			Optional:  subtract(tax.NormalizeAll(req.OptionalSkills), mandatory),
		}
	}

	var mandatoryRaw []string
	mandatoryRaw = append(mandatoryRaw, req.RequiredSkills...)
	mandatoryRaw = append(mandatoryRaw, req.RequiredQualifications...)
	mandatoryRaw = append(mandatoryRaw, req.TechnicalSkills...)

	var optionalRaw []string
	optionalRaw = append(optionalRaw, req.PreferredSkills...)
	optionalRaw = append(optionalRaw, req.SoftSkills...)
	optionalRaw = append(optionalRaw, req.Certifications...)
	optionalRaw = append(optionalRaw, req.Responsibilities...)

	mandatory := tax.NormalizeAll(mandatoryRaw)
	return SkillGroups{
		Mandatory: mandatory,
		Optional:  subtract(tax.NormalizeAll(optionalRaw), mandatory),
	}
}

func subtract(from, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, s := range remove {
		drop[s] = true
	}
	out := make([]string, 0, len(from))
	for _, s := range from {
		if !drop[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
