// internal/ranking/semantic/reranker_test.go
package semantic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/calibrate"
)

// stubScorer scores texts by keyword overlap with the query, recording every
// batch it receives.
type stubScorer struct {
	batches [][]string
	err     error
	failOn  int // 1-based batch number to fail, 0 never
}

func (s *stubScorer) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	s.batches = append(s.batches, texts)
	if s.err != nil && (s.failOn == 0 || s.failOn == len(s.batches)) {
		return nil, s.err
	}
	scores := make([]float64, len(texts))
	queryTokens := strings.Fields(strings.ToLower(query))
	for i, text := range texts {
		lower := strings.ToLower(text)
		for _, token := range queryTokens {
			if strings.Contains(lower, token) {
				scores[i]++
			}
		}
	}
	return scores, nil
}

func testRequirement() *models.RequirementDocument {
	return &models.RequirementDocument{
		ID:             "req-1",
		Title:          "Go Engineer",
		RequiredSkills: []string{"go", "kubernetes"},
	}
}

func TestRerank_OrdersByRelevance(t *testing.T) {
	scorer := &stubScorer{}
	candidates := []models.CandidateProfile{
		{ID: "a", Summary: "go and kubernetes engineer"},
		{ID: "b", Summary: "frontend developer"},
	}

	result := Rerank(context.Background(), scorer, Config{}, testRequirement(), candidates, logger.NewTestLogger(t))

	assert.Equal(t, models.SemanticOK, result.Status[0])
	assert.Equal(t, models.SemanticOK, result.Status[1])
	assert.Greater(t, result.Raw[0], result.Raw[1])
	assert.Greater(t, result.Scores[0], result.Scores[1])
}

func TestRerank_NoTextCandidates(t *testing.T) {
	scorer := &stubScorer{}
	candidates := []models.CandidateProfile{
		{ID: "a", Summary: "go engineer"},
		{ID: "b"},
	}

	result := Rerank(context.Background(), scorer, Config{}, testRequirement(), candidates, logger.NewTestLogger(t))

	assert.Equal(t, models.SemanticOK, result.Status[0])
	assert.Equal(t, models.SemanticNoText, result.Status[1])
	assert.Equal(t, 0.0, result.Scores[1])
	// only the scoreable candidate reached the model
	require.Len(t, scorer.batches, 1)
	assert.Len(t, scorer.batches[0], 1)
}

func TestRerank_EmptyRequirement(t *testing.T) {
	scorer := &stubScorer{}
	candidates := []models.CandidateProfile{{ID: "a", Summary: "go engineer"}}

	result := Rerank(context.Background(), scorer, Config{}, &models.RequirementDocument{ID: "empty"}, candidates, logger.NewTestLogger(t))

	assert.Equal(t, models.SemanticUnavailable, result.Status[0])
	assert.Empty(t, scorer.batches)
}

func TestRerank_BatchFailureDegradesOnlyItsCandidates(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model down"), failOn: 2}
	candidates := make([]models.CandidateProfile, 3)
	for i, id := range []string{"a", "b", "c"} {
		candidates[i] = models.CandidateProfile{ID: id, Summary: "go engineer " + id}
	}

	result := Rerank(context.Background(), scorer, Config{BatchSize: 2}, testRequirement(), candidates, logger.NewTestLogger(t))

	require.Len(t, scorer.batches, 2)
	assert.Equal(t, models.SemanticOK, result.Status[0])
	assert.Equal(t, models.SemanticOK, result.Status[1])
	assert.Equal(t, models.SemanticUnavailable, result.Status[2])
}

func TestRerank_FailedBatchExcludedFromCalibration(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model down"), failOn: 3}
	candidates := []models.CandidateProfile{
		{ID: "a", Summary: "go developer"},
		{ID: "b", Summary: "go kubernetes engineer"},
		{ID: "c", Summary: "chef"},
	}

	result := Rerank(
		context.Background(), scorer,
		Config{BatchSize: 1, Calibration: calibrate.StrategyMinMax},
		testRequirement(), candidates, logger.NewTestLogger(t),
	)

	require.Len(t, scorer.batches, 3)
	assert.Equal(t, models.SemanticUnavailable, result.Status[2])
	assert.Equal(t, 0.0, result.Raw[2])
	assert.Equal(t, 0.0, result.Scores[2])

	// the failed candidate's placeholder is not the batch minimum: min-max
	// runs over the two scored candidates only
	assert.Greater(t, result.Raw[1], result.Raw[0])
	assert.InDelta(t, 0.0, result.Scores[0], 1e-12)
	assert.InDelta(t, 1.0, result.Scores[1], 1e-12)
}

func TestRerank_BatchSizeRespected(t *testing.T) {
	scorer := &stubScorer{}
	candidates := make([]models.CandidateProfile, 5)
	for i := range candidates {
		candidates[i] = models.CandidateProfile{ID: string(rune('a' + i)), Summary: "engineer"}
	}

	Rerank(context.Background(), scorer, Config{BatchSize: 2}, testRequirement(), candidates, logger.NewTestLogger(t))

	require.Len(t, scorer.batches, 3)
	assert.Len(t, scorer.batches[0], 2)
	assert.Len(t, scorer.batches[1], 2)
	assert.Len(t, scorer.batches[2], 1)
}

func TestRerank_MinMaxCalibration(t *testing.T) {
	scorer := &stubScorer{}
	candidates := []models.CandidateProfile{
		{ID: "a", Summary: "go kubernetes engineer"},
		{ID: "b", Summary: "go developer"},
		{ID: "c", Summary: "chef"},
	}

	result := Rerank(
		context.Background(), scorer,
		Config{Calibration: calibrate.StrategyMinMax},
		testRequirement(), candidates, logger.NewTestLogger(t),
	)

	assert.InDelta(t, 1.0, result.Scores[0], 1e-12)
	assert.InDelta(t, 0.0, result.Scores[2], 1e-12)
	assert.Greater(t, result.Scores[1], 0.0)
	assert.Less(t, result.Scores[1], 1.0)
}

func TestRerank_SectionScores(t *testing.T) {
	scorer := &stubScorer{}
	req := &models.RequirementDocument{
		ID:             "req-1",
		Title:          "Go Engineer",
		RequiredSkills: []string{"go"},
	}
	candidates := []models.CandidateProfile{{ID: "a", Summary: "go engineer"}}

	result := Rerank(
		context.Background(), scorer,
		Config{IncludeSections: true},
		req, candidates, logger.NewTestLogger(t),
	)

	require.NotNil(t, result.SectionScores)
	assert.Contains(t, result.SectionScores, "job_title")
	assert.Contains(t, result.SectionScores, "required_skills")
	assert.Len(t, result.SectionScores["job_title"], 1)
}

func TestRerank_FailedSectionOmitted(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model down"), failOn: 2}
	candidates := []models.CandidateProfile{{ID: "a", Summary: "go engineer"}}

	result := Rerank(
		context.Background(), scorer,
		Config{IncludeSections: true},
		testRequirement(), candidates, logger.NewTestLogger(t),
	)

	// aggregate call, then one call per section; the first section fails
	require.Len(t, scorer.batches, 3)
	assert.Equal(t, models.SemanticOK, result.Status[0])
	assert.NotContains(t, result.SectionScores, "job_title")
	assert.Contains(t, result.SectionScores, "required_skills")
}
