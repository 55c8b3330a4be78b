// internal/ranking/impact/relevance_test.go
package impact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/taxonomy"
)

func eventsFromSentences(sentences ...string) []models.ImpactEvent {
	events := make([]models.ImpactEvent, len(sentences))
	for i, s := range sentences {
		events[i] = models.ImpactEvent{Sentence: s}
	}
	return events
}

func TestRelevance_WholeWordMatching(t *testing.T) {
	events := eventsFromSentences(
		"Reduced Kubernetes cluster cost by 30%",
		"Improved the java build pipeline by 20%",
		"Grew revenue by 15% through better pricing",
	)

	ratio, skills := Relevance(events, []string{"kubernetes", "java"})

	assert.InDelta(t, 2.0/3.0, ratio, 1e-12)
	assert.Equal(t, []string{"java", "kubernetes"}, skills)
}

func TestRelevance_NoSubstringFalsePositives(t *testing.T) {
	events := eventsFromSentences("Improved javascript bundle size by 40%")

	ratio, skills := Relevance(events, []string{"java"})

	assert.Equal(t, 0.0, ratio)
	assert.Empty(t, skills)
}

func TestRelevance_EmptyInputs(t *testing.T) {
	ratio, skills := Relevance(nil, []string{"go"})
	assert.Equal(t, 0.0, ratio)
	assert.Nil(t, skills)

	ratio, skills = Relevance(eventsFromSentences("Reduced cost by 10%"), nil)
	assert.Equal(t, 0.0, ratio)
	assert.Nil(t, skills)
}

func TestRelevanceWithFallback_SkippedWhenLexicalHits(t *testing.T) {
	events := eventsFromSentences("Reduced kubernetes spend by 25%")
	embedCalled := false
	embed := func(ctx context.Context, texts []string) ([][]float64, error) {
		embedCalled = true
		return nil, errors.New("should not be called")
	}

	ratio, skills, semanticUsed := RelevanceWithFallback(
		context.Background(), events, []string{"kubernetes"},
		nil, embed, 0.78, logger.NewTestLogger(t),
	)

	assert.Equal(t, 1.0, ratio)
	assert.Equal(t, []string{"kubernetes"}, skills)
	assert.False(t, semanticUsed)
	assert.False(t, embedCalled)
}

func TestRelevanceWithFallback_SemanticMatch(t *testing.T) {
	events := eventsFromSentences("Scaled the container platform by 3x for 200 services")
	tax := taxonomy.New(map[string]taxonomy.Entry{
		"kubernetes": {Aliases: []string{"k8s"}},
	})

	// one batched call: skill, alias, then sentences
	embed := func(ctx context.Context, texts []string) ([][]float64, error) {
		vectors := make([][]float64, len(texts))
		for i, text := range texts {
			if text == "k8s" || len(text) >= minSemanticSentenceLen {
				vectors[i] = []float64{1, 0}
			} else {
				vectors[i] = []float64{0, 1}
			}
		}
		return vectors, nil
	}

	ratio, skills, semanticUsed := RelevanceWithFallback(
		context.Background(), events, []string{"kubernetes"},
		tax, embed, 0.78, logger.NewTestLogger(t),
	)

	assert.Equal(t, 1.0, ratio)
	assert.Equal(t, []string{"kubernetes"}, skills)
	assert.True(t, semanticUsed)
}

func TestRelevanceWithFallback_BelowThreshold(t *testing.T) {
	events := eventsFromSentences("Scaled the data platform by 3x for 200 services")

	// orthogonal vectors, cosine 0
	embed := func(ctx context.Context, texts []string) ([][]float64, error) {
		vectors := make([][]float64, len(texts))
		for i := range texts {
			if i == 0 {
				vectors[i] = []float64{1, 0}
			} else {
				vectors[i] = []float64{0, 1}
			}
		}
		return vectors, nil
	}

	ratio, _, semanticUsed := RelevanceWithFallback(
		context.Background(), events, []string{"kubernetes"},
		nil, embed, 0.78, logger.NewTestLogger(t),
	)

	assert.Equal(t, 0.0, ratio)
	assert.False(t, semanticUsed)
}

func TestRelevanceWithFallback_EmbedFailureDegrades(t *testing.T) {
	events := eventsFromSentences("Scaled the data platform by 3x for 200 services")
	embed := func(ctx context.Context, texts []string) ([][]float64, error) {
		return nil, errors.New("embedding service down")
	}

	ratio, skills, semanticUsed := RelevanceWithFallback(
		context.Background(), events, []string{"kubernetes"},
		nil, embed, 0.78, logger.NewTestLogger(t),
	)

	assert.Equal(t, 0.0, ratio)
	assert.Empty(t, skills)
	assert.False(t, semanticUsed)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0.0, cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.Equal(t, 0.0, cosine([]float64{1, 0}, []float64{1}))
	assert.Equal(t, 0.0, cosine(nil, nil))
}
