// internal/ranking/semantic/reranker.go
package semantic

import (
	"context"
	"time"

	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/calibrate"
)

// Defaults for reranker orchestration.
const (
	DefaultBatchSize = 8
	DefaultTimeout   = 30 * time.Second
)

// PairScorer scores one query against many texts; higher means more
// relevant. Implementations are expected to be a single model call per
// invocation, so the orchestrator controls batching and timeouts.
type PairScorer interface {
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Config controls one rerank invocation.
type Config struct {
	Calibration     string // none, minmax or zscore
	BatchSize       int
	Timeout         time.Duration
	IncludeSections bool
	Sections        []string // defaults to all non-empty requirement sections
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Calibration == "" {
		c.Calibration = calibrate.StrategyNone
	}
	return c
}

// Result carries per-candidate semantic scores, parallel to the input
// candidate slice. A candidate is never dropped; absence is expressed
// through its status flag.
type Result struct {
	Scores        []float64
	Raw           []float64
	Status        []string
	SectionScores map[string][]float64
}

// Rerank scores every candidate text against the requirement's aggregate
// text. Candidates with no text get score 0 and status no_text; model
// failures mark the affected candidates unavailable and the batch
// continues. Calibration is applied across the successfully scored subset.
func Rerank(
	ctx context.Context,
	scorer PairScorer,
	cfg Config,
	req *models.RequirementDocument,
	candidates []models.CandidateProfile,
	log logger.Logger,
) Result {
	cfg = cfg.withDefaults()
	n := len(candidates)
	result := Result{
		Scores: make([]float64, n),
		Raw:    make([]float64, n),
		Status: make([]string, n),
	}
	if n == 0 {
		return result
	}

	query := RequirementText(req)
	if query == "" {
		for i := range result.Status {
			result.Status[i] = models.SemanticUnavailable
		}
		log.Warn("requirement has no text, semantic signal absent", map[string]interface{}{
			"requirement_id": req.ID,
		})
		return result
	}

	texts := make([]string, n)
	scoreable := make([]int, 0, n)
	for i := range candidates {
		texts[i] = CandidateText(&candidates[i])
		if texts[i] == "" {
			result.Status[i] = models.SemanticNoText
			continue
		}
		result.Status[i] = models.SemanticOK
		scoreable = append(scoreable, i)
	}
	if len(scoreable) == 0 {
		return result
	}

	raw := scoreBatched(ctx, scorer, cfg, query, texts, scoreable, result.Status, log)

	// calibrate over the successfully scored subset only; a failed batch's
	// placeholders must not shift anyone else's calibrated score
	scored := make([]int, 0, len(scoreable))
	scoredRaw := make([]float64, 0, len(scoreable))
	for bi, ci := range scoreable {
		if result.Status[ci] != models.SemanticOK {
			continue
		}
		result.Raw[ci] = raw[bi]
		scored = append(scored, ci)
		scoredRaw = append(scoredRaw, raw[bi])
	}
	calibrated := calibrate.Apply(cfg.Calibration, scoredRaw)
	for si, ci := range scored {
		result.Scores[ci] = calibrated[si]
	}

	if cfg.IncludeSections {
		result.SectionScores = scoreSections(ctx, scorer, cfg, req, texts, scoreable, n, log)
	}
	return result
}

// scoreBatched issues the pair-scoring calls in bounded batches, each under
// its own timeout. A failed batch zeroes and flags only its own candidates.
func scoreBatched(
	ctx context.Context,
	scorer PairScorer,
	cfg Config,
	query string,
	texts []string,
	scoreable []int,
	status []string,
	log logger.Logger,
) []float64 {
	out := make([]float64, len(scoreable))
	for start := 0; start < len(scoreable); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(scoreable) {
			end = len(scoreable)
		}
		batchTexts := make([]string, 0, end-start)
		for _, ci := range scoreable[start:end] {
			batchTexts = append(batchTexts, texts[ci])
		}

		callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		scores, err := scorer.ScorePairs(callCtx, query, batchTexts)
		cancel()

		if err != nil || len(scores) != len(batchTexts) {
			log.Warn("pair scoring batch failed, degrading to absent", map[string]interface{}{
				"batch_start": start, "batch_size": len(batchTexts), "error": errMsg(err),
			})
			for _, ci := range scoreable[start:end] {
				status[ci] = models.SemanticUnavailable
			}
			continue
		}
		copy(out[start:end], scores)
	}
	return out
}

// scoreSections produces per-requirement-section score vectors for
// explainability. A section whose call fails is omitted from the map
// entirely; an all-zero vector would read as genuine zero relevance.
func scoreSections(
	ctx context.Context,
	scorer PairScorer,
	cfg Config,
	req *models.RequirementDocument,
	texts []string,
	scoreable []int,
	n int,
	log logger.Logger,
) map[string][]float64 {
	sections := cfg.Sections
	if len(sections) == 0 {
		sections = RequirementSections(req)
	}
	out := make(map[string][]float64, len(sections))
	for _, section := range sections {
		sectionQuery := SectionText(req, section)
		if sectionQuery == "" {
			continue
		}
		batchTexts := make([]string, 0, len(scoreable))
		for _, ci := range scoreable {
			batchTexts = append(batchTexts, texts[ci])
		}
		callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		scores, err := scorer.ScorePairs(callCtx, sectionQuery, batchTexts)
		cancel()
		if err != nil || len(scores) != len(batchTexts) {
			log.Warn("section scoring failed", map[string]interface{}{
				"section": section, "error": errMsg(err),
			})
			continue
		}
		scores = calibrate.Apply(cfg.Calibration, scores)
		sectionScores := make([]float64, n)
		for bi, ci := range scoreable {
			sectionScores[ci] = scores[bi]
		}
		out[section] = sectionScores
	}
	return out
}

func errMsg(err error) string {
	if err == nil {
		return "score count mismatch"
	}
	return err.Error()
}
