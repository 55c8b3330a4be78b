// internal/ranking/impact/relevance.go
package impact

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/taxonomy"
)

// DefaultRelevanceThreshold is the cosine similarity a sentence/skill pair
// must clear before the semantic fallback counts it as a match.
const DefaultRelevanceThreshold = 0.78

// minSemanticSentenceLen guards the embedding fallback against fragments.
const minSemanticSentenceLen = 15

// EmbedFunc returns one fixed-length vector per input text. Implementations
// batch internally and honor the context deadline; errors degrade the
// semantic layer, never the pass.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float64, error)

// Relevance computes the fraction of impact events whose sentence contains
// at least one mandatory skill as a whole word, plus the distinct skills
// matched. Ratio is 0 when there are no events or no mandatory skills.
func Relevance(events []models.ImpactEvent, mandatorySkills []string) (float64, []string) {
	if len(events) == 0 || len(mandatorySkills) == 0 {
		return 0, nil
	}

	matchers := make([]*regexp.Regexp, len(mandatorySkills))
	for i, skill := range mandatorySkills {
		matchers[i] = wordMatcher(skill)
	}

	relevant := 0
	matched := make(map[string]bool)
	for _, event := range events {
		lower := strings.ToLower(event.Sentence)
		// Very short sentences are raw tokens, not achievement context.
		if len(strings.TrimSpace(lower)) <= 4 {
			continue
		}
		hit := false
		for i, skill := range mandatorySkills {
			if matchers[i].MatchString(lower) {
				hit = true
				matched[strings.ToLower(skill)] = true
			}
		}
		if hit {
			relevant++
		}
	}
	return float64(relevant) / float64(len(events)), sortedKeys(matched)
}

// RelevanceWithFallback runs the lexical layer first and, only when it
// found nothing at all, retries per sentence against skill embeddings.
// The fallback is skipped once any lexical hit exists so a candidate is
// never credited twice for the same topical overlap. Returns whether the
// semantic layer produced the ratio.
func RelevanceWithFallback(
	ctx context.Context,
	events []models.ImpactEvent,
	mandatorySkills []string,
	tax *taxonomy.Taxonomy,
	embed EmbedFunc,
	threshold float64,
	log logger.Logger,
) (float64, []string, bool) {
	ratio, skills := Relevance(events, mandatorySkills)
	if ratio > 0 || embed == nil || len(events) == 0 || len(mandatorySkills) == 0 {
		return ratio, skills, false
	}
	if threshold <= 0 {
		threshold = DefaultRelevanceThreshold
	}

	// One embedding batch covers every skill phrase and every sentence.
	var skillTexts []string
	skillOwners := make([]string, 0)
	for _, skill := range mandatorySkills {
		canonical := strings.ToLower(skill)
		skillTexts = append(skillTexts, canonical)
		skillOwners = append(skillOwners, canonical)
		if tax != nil {
			for _, alias := range tax.Aliases(canonical) {
				skillTexts = append(skillTexts, alias)
				skillOwners = append(skillOwners, canonical)
			}
		}
	}

	sentences := make([]string, 0, len(events))
	for _, event := range events {
		if len(strings.TrimSpace(event.Sentence)) >= minSemanticSentenceLen {
			sentences = append(sentences, event.Sentence)
		}
	}
	if len(sentences) == 0 {
		return ratio, skills, false
	}

	vectors, err := embed(ctx, append(append([]string{}, skillTexts...), sentences...))
	if err != nil || len(vectors) != len(skillTexts)+len(sentences) {
		log.Warn("semantic relevance fallback unavailable", map[string]interface{}{
			"error": errString(err), "events": len(events),
		})
		return ratio, skills, false
	}
	skillVectors := vectors[:len(skillTexts)]
	sentenceVectors := vectors[len(skillTexts):]

	hits := 0
	matched := make(map[string]bool)
	for _, vec := range sentenceVectors {
		hit := false
		for vi, sv := range skillVectors {
			if cosine(vec, sv) >= threshold {
				hit = true
				matched[skillOwners[vi]] = true
			}
		}
		if hit {
			hits++
		}
	}
	if hits == 0 {
		return ratio, skills, false
	}
	return float64(hits) / float64(len(events)), sortedKeys(matched), true
}

func wordMatcher(skill string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(skill)) + `\b`)
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func errString(err error) string {
	if err == nil {
		return "short embedding batch"
	}
	return err.Error()
}
