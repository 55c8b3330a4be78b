// internal/ranking/impact/extractor_test.go
package impact

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-ranker/internal/models"
)

func TestExtract_FullSentence(t *testing.T) {
	profile := &models.CandidateProfile{
		Experience: []string{
			"Reduced infrastructure cost by 30%, resulting in faster quarterly planning",
		},
	}

	features := Extract(profile)

	require.Len(t, features.Events, 1)
	event := features.Events[0]

	assert.Contains(t, event.Verbs, "reduced")
	assert.Equal(t, models.DirectionDecrease, event.Direction)
	assert.Equal(t, "faster quarterly planning", event.Outcome)

	require.Len(t, event.Metrics, 1)
	assert.Equal(t, "30%", event.Metrics[0].Raw)
	assert.Equal(t, models.MetricPercent, event.Metrics[0].Type)
	assert.InDelta(t, 0.6, event.Metrics[0].Normalized, 1e-12)
	assert.Equal(t, "cost", event.Metrics[0].Context)

	// verb 1.3, magnitude 0.6, outcome 1.15, direction 1.1, context 1.05
	expected := 1.3 * (1 + math.Log(1.6)) * 1.15 * 1.1 * 1.05
	assert.InDelta(t, expected, event.Score, 1e-9)
	assert.InDelta(t, expected, features.RawScore, 1e-9)
	assert.Equal(t, 1, features.EventCount)
}

func TestExtract_RequiresVerbAndMetric(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
	}{
		{"verb without metric", "Led the platform migration across several teams"},
		{"metric without verb", "The service handled 45% of the total traffic volume"},
		{"neither", "Responsible for day to day operations of the team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features := ExtractFromSentences([]string{tt.sentence})
			assert.Empty(t, features.Events)
			assert.Equal(t, 0, features.EventCount)
			assert.Equal(t, 0.0, features.RawScore)
		})
	}
}

func TestExtract_ShortFragmentsSkipped(t *testing.T) {
	profile := &models.CandidateProfile{
		Achievements: []string{"Grew 50%", "Cut 20%"},
	}

	features := Extract(profile)

	assert.Empty(t, features.Events)
}

func TestExtractMetrics_Families(t *testing.T) {
	tests := []struct {
		name       string
		sentence   string
		raw        string
		metricType string
		value      float64
		normalized float64
	}{
		{
			name:       "percent range collapses to midpoint",
			sentence:   "improved conversion by 10-20% this year",
			raw:        "10-20%",
			metricType: models.MetricPercent,
			value:      15,
			normalized: 0.3,
		},
		{
			name:       "single percent",
			sentence:   "boosted retention by 25% overall",
			raw:        "25%",
			metricType: models.MetricPercent,
			value:      25,
			normalized: 0.5,
		},
		{
			name:       "qualified magnitude",
			sentence:   "saved $250k in annual spend",
			metricType: models.MetricCurrency,
			value:      250000,
			normalized: 250,
		},
		{
			name:       "million word qualifier",
			sentence:   "secured 1.5 million in new contracts",
			metricType: models.MetricCurrency,
			value:      1500000,
			normalized: 1500,
		},
		{
			name:       "spelled out percent",
			sentence:   "increased throughput by forty percent overall",
			raw:        "forty%",
			metricType: models.MetricPercent,
			value:      40,
			normalized: 0.8,
		},
		{
			name:       "plain count",
			sentence:   "migrated 300 services to the new platform",
			raw:        "300",
			metricType: models.MetricCount,
			value:      300,
			normalized: 300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := extractMetrics(tt.sentence)

			require.Len(t, metrics, 1)
			assert.Equal(t, tt.metricType, metrics[0].Type)
			assert.InDelta(t, tt.value, metrics[0].Value, 1e-9)
			assert.InDelta(t, tt.normalized, metrics[0].Normalized, 1e-9)
			if tt.raw != "" {
				assert.Equal(t, tt.raw, metrics[0].Raw)
			}
		})
	}
}

func TestExtractMetrics_NoDoubleCounting(t *testing.T) {
	// the 30 inside "30%" must not also surface as a plain count
	metrics := extractMetrics("cut deployment time by 30% across 9 teams")

	require.Len(t, metrics, 1)
	assert.Equal(t, "30%", metrics[0].Raw)
	assert.Equal(t, models.MetricPercent, metrics[0].Type)
}

func TestExtractMetrics_SmallCountsIgnored(t *testing.T) {
	metrics := extractMetrics("managed a team of 8 engineers")
	assert.Empty(t, metrics)
}

func TestExtractMetrics_NormalizationCaps(t *testing.T) {
	metrics := extractMetrics("grew revenue to 50 billion dollars")

	require.NotEmpty(t, metrics)
	assert.Equal(t, 10000.0, metrics[0].Normalized)
}

func TestExtract_ScoreMonotonicInMagnitude(t *testing.T) {
	// identical verb and structure, only the metric magnitude differs
	small := ExtractFromSentences([]string{"improved pipeline throughput by 20% overall"})
	large := ExtractFromSentences([]string{"improved pipeline throughput by 60% overall"})

	require.Len(t, small.Events, 1)
	require.Len(t, large.Events, 1)
	assert.Greater(t, large.Events[0].Score, small.Events[0].Score)

	low := ExtractFromSentences([]string{"saved $100k in annual spend"})
	high := ExtractFromSentences([]string{"saved $900k in annual spend"})

	require.Len(t, low.Events, 1)
	require.Len(t, high.Events, 1)
	assert.Greater(t, high.Events[0].Score, low.Events[0].Score)
}

func TestDetectOutcome(t *testing.T) {
	assert.Equal(t, "a 40% drop in support tickets",
		detectOutcome("automated triage, leading to a 40% drop in support tickets"))
	assert.Equal(t, "", detectOutcome("improved the pipeline throughput by 15%"))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, models.DirectionDecrease, direction(map[string]float64{"reduced": 1.3}))
	assert.Equal(t, models.DirectionIncrease, direction(map[string]float64{"grew": 1.25}))
	assert.Equal(t, models.DirectionNeutral, direction(map[string]float64{"launched": 1.15}))
	// decrease wins when both are present
	assert.Equal(t, models.DirectionDecrease,
		direction(map[string]float64{"grew": 1.25, "cut": 1.3}))
}

func TestExtract_TopEventsTruncation(t *testing.T) {
	sentences := make([]string, 0, TopEvents+4)
	for i := 0; i < TopEvents+4; i++ {
		sentences = append(sentences,
			fmt.Sprintf("improved system reliability by %d%% in cycle %d", 20+i, i))
	}

	features := ExtractFromSentences(sentences)

	assert.Len(t, features.Events, TopEvents)
	assert.Equal(t, TopEvents+4, features.EventCount)
	// retained events are the highest scoring, in descending order
	for i := 1; i < len(features.Events); i++ {
		assert.GreaterOrEqual(t, features.Events[i-1].Score, features.Events[i].Score)
	}
	var sum float64
	for _, e := range features.Events {
		sum += e.Score
	}
	assert.InDelta(t, sum, features.RawScore, 1e-9)
}
