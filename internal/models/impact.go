// internal/models/impact.go
package models

// Metric types detected by the impact extractor.
const (
	MetricPercent  = "percent"
	MetricCurrency = "currency"
	MetricCount    = "count"
)

// Directions derived from the verb sets present in a sentence.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
	DirectionNeutral  = "neutral"
)

// ImpactMetric is one quantified figure found in a sentence.
type ImpactMetric struct {
	Raw        string  `json:"raw"`
	Value      float64 `json:"value"`
	Type       string  `json:"type"`
	Normalized float64 `json:"normalized"`
	Context    string  `json:"context,omitempty"` // nearest context keyword class
}

// ImpactBreakdown records the factors that produced an event score.
type ImpactBreakdown struct {
	VerbWeight        float64 `json:"verb_weight"`
	MetricMagnitude   float64 `json:"metric_magnitude"`
	OutcomeBonus      float64 `json:"outcome_bonus"`
	DirectionModifier float64 `json:"direction_modifier"`
	ContextMultiplier float64 `json:"context_multiplier"`
}

// ImpactEvent is a scored quantified-achievement sentence. Events are
// derived once per candidate and never mutated afterwards.
type ImpactEvent struct {
	Sentence  string             `json:"sentence"`
	Verbs     map[string]float64 `json:"verbs"`
	Metrics   []ImpactMetric     `json:"metrics"`
	Outcome   string             `json:"outcome,omitempty"`
	Direction string             `json:"direction"`
	Score     float64            `json:"score"`
	Breakdown ImpactBreakdown    `json:"breakdown"`
}
