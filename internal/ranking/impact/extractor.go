// internal/ranking/impact/extractor.go
package impact

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/lexical"
)

const (
	// TopEvents bounds the retained events per candidate; returns diminish
	// beyond this and long tails are mostly noise.
	TopEvents = 8

	// MinSentenceLen filters out fragments that cannot describe an event.
	MinSentenceLen = 15

	maxSentences  = 1000
	outcomeMaxLen = 120

	outcomeBonusValue    = 1.15
	directionBonusValue  = 1.1
	contextStep          = 0.05
	maxContextMultiplier = 1.1
)

var (
	// Ranges must carry a trailing % to be treated as percent ranges.
	rangePattern     = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*[-–]\s*(\d{1,3}(?:\.\d+)?)%`)
	percentPattern   = regexp.MustCompile(`\b(\d{1,3}(?:\.\d+)?)%`)
	qualifiedPattern = regexp.MustCompile(`(?i)\b\d{1,3}(?:[,\d]{0,3})?(?:\.\d+)?\s*(?:k|m|b|million|billion|thousand)\b`)
	plainIntPattern  = regexp.MustCompile(`\b\d{1,9}\b`)
	qualifiedParse   = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(k|m|b|million|billion|thousand)?$`)
)

// Features is the extractor output for one candidate.
type Features struct {
	// Events holds the top-scoring events, descending by score.
	Events []models.ImpactEvent `json:"impact_events"`
	// RawScore is the sum of the retained events' scores.
	RawScore float64 `json:"raw_impact_score"`
	// EventCount is the total number of events found before truncation.
	EventCount int `json:"impact_event_count"`
}

// Extract scans a candidate's narrative sections for quantified-achievement
// events and scores each one. Pure function of the profile.
func Extract(profile *models.CandidateProfile) Features {
	return ExtractFromSentences(collectSentences(profile.NarrativeTexts()))
}

// ExtractFromSentences runs extraction over pre-collected sentences.
func ExtractFromSentences(sentences []string) Features {
	events := make([]models.ImpactEvent, 0, len(sentences))
	for _, sentence := range sentences {
		verbs := detectVerbs(sentence)
		metrics := extractMetrics(sentence)
		if len(verbs) == 0 && len(metrics) == 0 {
			continue
		}
		outcome := detectOutcome(sentence)
		score, breakdown := scoreEvent(verbs, metrics, outcome)
		if score <= 0 {
			continue
		}
		events = append(events, models.ImpactEvent{
			Sentence:  sentence,
			Verbs:     verbs,
			Metrics:   metrics,
			Outcome:   outcome,
			Direction: direction(verbs),
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Score > events[j].Score
	})
	total := len(events)
	if len(events) > TopEvents {
		events = events[:TopEvents]
	}
	var raw float64
	for _, e := range events {
		raw += e.Score
	}
	return Features{Events: events, RawScore: raw, EventCount: total}
}

func collectSentences(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if len(text) >= MinSentenceLen {
			out = append(out, text)
		}
		if len(out) >= maxSentences {
			break
		}
	}
	return out
}

func detectVerbs(sentence string) map[string]float64 {
	verbs := make(map[string]float64)
	for _, token := range lexical.Tokenize(sentence) {
		if weight, ok := actionVerbs[token]; ok {
			verbs[token] = weight
		}
	}
	return verbs
}

func direction(verbs map[string]float64) string {
	for v := range verbs {
		if decreaseVerbs[v] {
			return models.DirectionDecrease
		}
	}
	for v := range verbs {
		if increaseVerbs[v] {
			return models.DirectionIncrease
		}
	}
	return models.DirectionNeutral
}

func detectOutcome(sentence string) string {
	lower := strings.ToLower(sentence)
	for _, conn := range outcomeConnectors {
		idx := strings.Index(lower, conn)
		if idx == -1 {
			continue
		}
		tail := strings.TrimSpace(sentence[idx+len(conn):])
		if tail == "" {
			return ""
		}
		if len(tail) > outcomeMaxLen {
			tail = tail[:outcomeMaxLen]
		}
		return strings.Trim(tail, " .;")
	}
	return ""
}

type span struct{ start, end int }

func overlapsAny(start, end int, spans []span) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

func extractMetrics(sentence string) []models.ImpactMetric {
	lower := strings.ToLower(sentence)
	var metrics []models.ImpactMetric
	var consumed []span

	// Percent ranges collapse to their midpoint.
	for _, idx := range rangePattern.FindAllStringSubmatchIndex(sentence, -1) {
		lo, err1 := strconv.ParseFloat(sentence[idx[2]:idx[3]], 64)
		hi, err2 := strconv.ParseFloat(sentence[idx[4]:idx[5]], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		mid := (lo + hi) / 2
		metrics = append(metrics, models.ImpactMetric{
			Raw:        sentence[idx[2]:idx[3]] + "-" + sentence[idx[4]:idx[5]] + "%",
			Value:      mid,
			Type:       models.MetricPercent,
			Normalized: mid / 50.0,
		})
		consumed = append(consumed, span{idx[0], idx[1]})
	}

	// Single percentages outside any range.
	for _, idx := range percentPattern.FindAllStringSubmatchIndex(sentence, -1) {
		if overlapsAny(idx[0], idx[1], consumed) {
			continue
		}
		val, err := strconv.ParseFloat(sentence[idx[2]:idx[3]], 64)
		if err != nil {
			continue
		}
		metrics = append(metrics, models.ImpactMetric{
			Raw:        sentence[idx[2]:idx[3]] + "%",
			Value:      val,
			Type:       models.MetricPercent,
			Normalized: val / 50.0,
		})
		consumed = append(consumed, span{idx[0], idx[1]})
	}

	// Currency and scale-qualified magnitudes.
	for _, idx := range qualifiedPattern.FindAllStringIndex(sentence, -1) {
		if overlapsAny(idx[0], idx[1], consumed) {
			continue
		}
		raw := sentence[idx[0]:idx[1]]
		val, ok := parseQualified(raw)
		if !ok {
			continue
		}
		metrics = append(metrics, models.ImpactMetric{
			Raw:        raw,
			Value:      val,
			Type:       models.MetricCurrency,
			Normalized: math.Min(val/1000.0, 10000.0),
		})
		consumed = append(consumed, span{idx[0], idx[1]})
	}

	// Spelled-out numbers followed by "percent" or a scale word.
	tokens := strings.Fields(lower)
	for i, token := range tokens {
		base, ok := textualNumbers[token]
		if !ok {
			continue
		}
		var next string
		if i+1 < len(tokens) {
			next = strings.TrimRight(tokens[i+1], ".,;:")
		}
		switch {
		case strings.HasPrefix(next, "percent") || next == "pct":
			metrics = append(metrics, models.ImpactMetric{
				Raw:        token + "%",
				Value:      base,
				Type:       models.MetricPercent,
				Normalized: base / 50.0,
			})
		case next == "thousand" || next == "million" || next == "billion":
			val := base * scaleQualifiers[next]
			metrics = append(metrics, models.ImpactMetric{
				Raw:        token + " " + next,
				Value:      val,
				Type:       models.MetricCurrency,
				Normalized: math.Min(val/1000.0, 10000.0),
			})
		}
	}

	// Plain integer counts not already consumed by another family.
	for _, idx := range plainIntPattern.FindAllStringIndex(sentence, -1) {
		if overlapsAny(idx[0], idx[1], consumed) {
			continue
		}
		val, err := strconv.Atoi(sentence[idx[0]:idx[1]])
		if err != nil || val <= 10 {
			continue
		}
		metrics = append(metrics, models.ImpactMetric{
			Raw:        sentence[idx[0]:idx[1]],
			Value:      float64(val),
			Type:       models.MetricCount,
			Normalized: math.Min(float64(val), 100000),
		})
	}

	for i := range metrics {
		metrics[i].Context = nearestContext(lower, strings.ToLower(metrics[i].Raw))
	}
	return metrics
}

// parseQualified converts "250k", "1.5 million" style magnitudes. Commas
// and a leading currency sign are stripped before parsing.
func parseQualified(raw string) (float64, bool) {
	raw = strings.TrimSpace(strings.ReplaceAll(strings.ToLower(raw), ",", ""))
	raw = strings.TrimPrefix(raw, "$")
	m := qualifiedParse.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		val *= scaleQualifiers[m[2]]
	}
	return val, true
}

// nearestContext finds the context class of the keyword closest to the
// metric's position in the sentence.
func nearestContext(lower, rawLower string) string {
	metricPos := strings.Index(lower, rawLower)
	if metricPos == -1 {
		return ""
	}
	bestDist := -1
	bestContext := ""
	for keyword, class := range contextKeywords {
		from := 0
		for {
			pos := strings.Index(lower[from:], keyword)
			if pos == -1 {
				break
			}
			pos += from
			dist := metricPos - pos
			if dist < 0 {
				dist = -dist
			}
			if bestDist == -1 || dist < bestDist {
				bestDist = dist
				bestContext = class
			}
			from = pos + 1
		}
	}
	return bestContext
}

func scoreEvent(verbs map[string]float64, metrics []models.ImpactMetric, outcome string) (float64, models.ImpactBreakdown) {
	if len(verbs) == 0 || len(metrics) == 0 {
		return 0, models.ImpactBreakdown{
			OutcomeBonus: 1.0, DirectionModifier: 1.0, ContextMultiplier: 1.0,
		}
	}

	var verbWeight float64
	for _, w := range verbs {
		if w > verbWeight {
			verbWeight = w
		}
	}
	var magnitude float64
	for _, m := range metrics {
		if m.Normalized > magnitude {
			magnitude = m.Normalized
		}
	}

	bonus := 1.0
	if outcome != "" {
		bonus = outcomeBonusValue
	}
	modifier := 1.0
	if direction(verbs) != models.DirectionNeutral {
		modifier = directionBonusValue
	}

	multiplier := 1.0
	var hasRevenue, hasCost bool
	for _, m := range metrics {
		if m.Context == "revenue" {
			hasRevenue = true
		}
		if m.Context == "cost" {
			hasCost = true
		}
	}
	if hasRevenue {
		multiplier += contextStep
	}
	if hasCost {
		multiplier += contextStep
	}
	if multiplier > maxContextMultiplier {
		multiplier = maxContextMultiplier
	}

	score := verbWeight * (1.0 + math.Log(1.0+magnitude)) * bonus * modifier * multiplier
	return score, models.ImpactBreakdown{
		VerbWeight:        verbWeight,
		MetricMagnitude:   magnitude,
		OutcomeBonus:      bonus,
		DirectionModifier: modifier,
		ContextMultiplier: multiplier,
	}
}
