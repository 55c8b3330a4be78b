// internal/ranking/fusion/engine.go
package fusion

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"profile-ranker/internal/common/config"
	"profile-ranker/internal/common/errors"
	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/common/metrics"
	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/calibrate"
	"profile-ranker/internal/ranking/impact"
	"profile-ranker/internal/ranking/lexical"
	"profile-ranker/internal/ranking/semantic"
	"profile-ranker/internal/ranking/taxonomy"
)

// Signal names used in weights and presence maps.
const (
	SignalVector   = "vector"
	SignalLexical  = "lexical"
	SignalSemantic = "semantic"
)

// Rerank modes reported in batch metadata.
const (
	RerankModeCrossEncoder = "cross_encoder"
	RerankModeNone         = "none"
)

// MinImpactEvents is how many scored achievements a candidate needs before
// the impact component applies at all. A single event is too noisy to act on.
const MinImpactEvents = 2

// VectorSource fills in vector similarity for candidates that did not arrive
// with one. vectorsearch.Store satisfies it.
type VectorSource interface {
	Backfill(ctx context.Context, candidates []models.CandidateProfile, embed impact.EmbedFunc) (int, error)
	Similarity(ctx context.Context, queryVector []float64, candidateIDs []string) (map[string]float64, error)
}

// Deps carries the engine's collaborators. Taxonomy and Logger are required;
// everything else degrades to an absent signal when nil.
type Deps struct {
	Taxonomy *taxonomy.Taxonomy
	Resolver *taxonomy.Resolver
	Scorer   semantic.PairScorer
	Embed    impact.EmbedFunc
	Vectors  VectorSource
	Logger   logger.Logger
}

// Engine runs full ranking passes: per-signal scoring, skill coverage,
// impact extraction, fusion and ordering.
type Engine struct {
	cfg      *config.Config
	tax      *taxonomy.Taxonomy
	resolver *taxonomy.Resolver
	scorer   semantic.PairScorer
	embed    impact.EmbedFunc
	vectors  VectorSource
	logger   logger.Logger
	errs     *errors.ErrorHandler
}

func New(cfg *config.Config, deps Deps) *Engine {
	log := deps.Logger.WithFields(map[string]interface{}{"component": "fusion"})
	return &Engine{
		cfg:      cfg,
		tax:      deps.Taxonomy,
		resolver: deps.Resolver,
		scorer:   deps.Scorer,
		embed:    deps.Embed,
		vectors:  deps.Vectors,
		logger:   log,
		errs:     errors.NewErrorHandler(log),
	}
}

// candidateState accumulates everything computed for one candidate before
// fusion.
type candidateState struct {
	components models.ScoreComponents
	impactRaw  float64
	hasVector  bool
	hasLexical bool
	hasSemantic bool
}

// Rank scores every candidate against the requirement and returns the
// ordered, truncated result list plus batch metadata.
func (e *Engine) Rank(ctx context.Context, req *models.RankRequest) (*models.RankResponse, error) {
	if len(req.Candidates) == 0 {
		return nil, errors.NewEmptyCandidateSetError()
	}
	if req.Requirement.IsEmpty() {
		return nil, errors.NewEmptyRequirementError(req.Requirement.ID)
	}

	passID := uuid.New().String()
	start := time.Now()
	n := len(req.Candidates)
	candidates := req.Candidates

	topK := req.TopK
	if topK <= 0 {
		topK = e.cfg.Scoring.TopK
	}

	groups := taxonomy.BuildSkillGroups(&req.Requirement, e.tax)

	e.logger.Info("ranking pass started", map[string]interface{}{
		"passId":         passID,
		"requirementId":  req.Requirement.ID,
		"candidates":     n,
		"mandatorySkills": len(groups.Mandatory),
		"optionalSkills":  len(groups.Optional),
	})

	states := make([]candidateState, n)

	// Vector signal: carried-in similarities first, then the search index
	// for whatever is still missing.
	e.fillVectorScores(ctx, passID, &req.Requirement, candidates, states)

	// Lexical signal: one BM25 pass over the whole batch.
	bm25Norm := e.fillLexicalScores(&req.Requirement, candidates, states)

	// Semantic signal: optional cross-encoder rerank.
	rerankMode := RerankModeNone
	if e.cfg.Semantic.Enabled && e.scorer != nil {
		rerankMode = RerankModeCrossEncoder
		e.fillSemanticScores(ctx, &req.Requirement, candidates, states)
	}

	// Coverage and impact extraction fan out per candidate.
	if err := e.fillCoverageAndImpact(ctx, groups, candidates, states); err != nil {
		metrics.RankingPassesFailed.WithLabelValues(string(errors.AsStandard(err).Code)).Inc()
		return nil, err
	}

	// Impact calibration needs the whole batch's raw scores.
	impactRaw := make([]float64, n)
	for i := range states {
		impactRaw[i] = states[i].impactRaw
	}
	impactCalibrated := calibrate.Apply(e.cfg.Scoring.ImpactCalibration, impactRaw)

	weights, present := e.effectiveWeights(states)

	results := e.fuse(candidates, states, impactCalibrated, weights)
	skipped := n - len(results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		return results[i].CandidateID < results[j].CandidateID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	metrics.RankingPassesCompleted.WithLabelValues(rerankMode).Inc()
	metrics.RankingPassDuration.WithLabelValues(rerankMode).Observe(time.Since(start).Seconds())
	metrics.CandidatesScored.WithLabelValues(rerankMode).Add(float64(n - skipped))

	e.logger.Info("ranking pass completed", map[string]interface{}{
		"passId":     passID,
		"returned":   len(results),
		"skipped":    skipped,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &models.RankResponse{
		Results: results,
		Meta: models.BatchMeta{
			PassID:         passID,
			RerankMode:     rerankMode,
			Weights:        weights,
			SignalsPresent: present,
			BM25Normalization: bm25Norm,
			CandidateCount:  n,
			SkippedNoSignal: skipped,
		},
	}, nil
}

// fillVectorScores resolves the vector similarity signal. Carried-in values
// win; the vector index covers the rest. Index failures degrade the signal
// for the affected candidates only.
func (e *Engine) fillVectorScores(
	ctx context.Context,
	passID string,
	req *models.RequirementDocument,
	candidates []models.CandidateProfile,
	states []candidateState,
) {
	missing := make([]string, 0)
	missingIdx := make(map[string]int)
	for i := range candidates {
		if candidates[i].VectorSimilarity != nil {
			v := *candidates[i].VectorSimilarity
			states[i].components.VectorScore = &v
			states[i].hasVector = true
			continue
		}
		if candidates[i].HasText() {
			missing = append(missing, candidates[i].ID)
			missingIdx[candidates[i].ID] = i
		}
	}
	if len(missing) == 0 || e.vectors == nil || e.embed == nil {
		for i := range states {
			if !states[i].hasVector {
				metrics.SignalAbsent.WithLabelValues(SignalVector).Inc()
			}
		}
		return
	}

	if _, err := e.vectors.Backfill(ctx, candidates, e.embed); err != nil {
		e.errs.Handle(passID, errors.NewVectorSearchError(err.Error()))
	}

	queryVectors, err := e.embed(ctx, []string{semantic.RequirementText(req)})
	if err != nil || len(queryVectors) != 1 {
		e.errs.Handle(passID, errors.NewEmbeddingFailedError("requirement embedding unavailable"))
		for i := range states {
			if !states[i].hasVector {
				metrics.SignalAbsent.WithLabelValues(SignalVector).Inc()
			}
		}
		return
	}

	scores, err := e.vectors.Similarity(ctx, queryVectors[0], missing)
	if err != nil {
		e.errs.Handle(passID, errors.NewVectorSearchError(err.Error()))
		scores = nil
	}
	for id, score := range scores {
		i := missingIdx[id]
		v := score
		states[i].components.VectorScore = &v
		states[i].hasVector = true
	}
	for i := range states {
		if !states[i].hasVector {
			metrics.SignalAbsent.WithLabelValues(SignalVector).Inc()
		}
	}
}

// fillLexicalScores runs one batch BM25 pass and records both the raw and
// the saturated score per candidate.
func (e *Engine) fillLexicalScores(
	req *models.RequirementDocument,
	candidates []models.CandidateProfile,
	states []candidateState,
) models.BM25Normalization {
	params := lexical.Params{
		K1:       e.cfg.Lexical.K1,
		B:        e.cfg.Lexical.B,
		Strategy: e.cfg.Lexical.KStrategy,
		FixedK:   e.cfg.Lexical.FixedK,
		MinK:     e.cfg.Lexical.MinK,
	}

	docs := make([]string, len(candidates))
	for i := range candidates {
		docs[i] = semantic.CandidateText(&candidates[i])
	}
	raw := lexical.Score(semantic.RequirementText(req), docs, params)
	saturated, k := lexical.Saturate(raw, params)

	for i := range candidates {
		if docs[i] == "" {
			metrics.SignalAbsent.WithLabelValues(SignalLexical).Inc()
			continue
		}
		r, s := raw[i], saturated[i]
		states[i].components.LexicalRaw = &r
		states[i].components.LexicalScore = &s
		states[i].hasLexical = true
	}
	return models.BM25Normalization{Method: "saturation", K: k}
}

// fillSemanticScores runs the cross-encoder rerank and transfers scores and
// statuses into the per-candidate states.
func (e *Engine) fillSemanticScores(
	ctx context.Context,
	req *models.RequirementDocument,
	candidates []models.CandidateProfile,
	states []candidateState,
) {
	cfg := semantic.Config{
		Calibration:     e.cfg.Semantic.Calibration,
		BatchSize:       e.cfg.Semantic.BatchSize,
		Timeout:         config.GetDuration(e.cfg.Semantic.TimeoutMS),
		IncludeSections: e.cfg.Semantic.IncludeSections,
	}
	res := semantic.Rerank(ctx, e.scorer, cfg, req, candidates, e.logger)

	for i := range states {
		states[i].components.SemanticStatus = res.Status[i]
		if res.Status[i] != models.SemanticOK {
			metrics.SignalAbsent.WithLabelValues(SignalSemantic).Inc()
			continue
		}
		r, s := res.Raw[i], res.Scores[i]
		states[i].components.SemanticRaw = &r
		states[i].components.SemanticScore = &s
		states[i].hasSemantic = true
		if len(res.SectionScores) > 0 {
			sections := make(map[string]float64, len(res.SectionScores))
			for section, scores := range res.SectionScores {
				sections[section] = scores[i]
			}
			states[i].components.SectionScores = sections
		}
	}
}

// fillCoverageAndImpact computes skill coverage, impact extraction and the
// impact relevance gate for every candidate, bounded by MaxConcurrency.
func (e *Engine) fillCoverageAndImpact(
	ctx context.Context,
	groups taxonomy.SkillGroups,
	candidates []models.CandidateProfile,
	states []candidateState,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Runtime.MaxConcurrency)

	for i := range candidates {
		i := i
		g.Go(func() error {
			c := &candidates[i]
			st := &states[i]

			skills := c.Skills
			if e.resolver != nil {
				skills = e.resolver.NormalizeAll(gctx, skills)
			}

			st.components.MandatoryCoverage, st.components.SkillMatches =
				taxonomy.Coverage(groups.Mandatory, skills, e.tax)
			st.components.OptionalCoverage, _ =
				taxonomy.Coverage(groups.Optional, skills, e.tax)

			features := impact.Extract(c)
			st.impactRaw = features.RawScore
			st.components.ImpactRawScore = features.RawScore
			st.components.ImpactEventCount = features.EventCount

			if features.EventCount > 0 {
				var ratio float64
				if e.cfg.Impact.SemanticFallbackEnabled && e.embed != nil {
					ratio, _, _ = impact.RelevanceWithFallback(
						gctx, features.Events, groups.Mandatory, e.tax,
						e.embed, e.cfg.Impact.SemanticRelevanceThreshold, e.logger,
					)
				} else {
					ratio, _ = impact.Relevance(features.Events, groups.Mandatory)
				}
				st.components.ImpactRelevance = ratio
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}

// effectiveWeights zeroes out batch-absent signals and renormalizes the rest
// to sum to 1. A non-positive configured sum falls back to an equal split
// over the present signals.
func (e *Engine) effectiveWeights(states []candidateState) (map[string]float64, map[string]bool) {
	present := map[string]bool{
		SignalVector:   false,
		SignalLexical:  false,
		SignalSemantic: false,
	}
	for i := range states {
		if states[i].hasVector {
			present[SignalVector] = true
		}
		if states[i].hasLexical {
			present[SignalLexical] = true
		}
		if states[i].hasSemantic {
			present[SignalSemantic] = true
		}
	}

	weights := map[string]float64{
		SignalVector:   e.cfg.Scoring.VectorWeight,
		SignalLexical:  e.cfg.Scoring.LexicalWeight,
		SignalSemantic: e.cfg.Scoring.SemanticWeight,
	}
	var sum float64
	presentCount := 0
	for signal, p := range present {
		if !p {
			weights[signal] = 0
			continue
		}
		presentCount++
		sum += weights[signal]
	}

	if presentCount == 0 {
		return weights, present
	}
	if sum <= 0 {
		for signal, p := range present {
			if p {
				weights[signal] = 1 / float64(presentCount)
			}
		}
		return weights, present
	}
	for signal := range weights {
		weights[signal] /= sum
	}
	return weights, present
}

// fuse combines the per-candidate signals into final scores. Candidates with
// no computable signal at all are dropped. Weights renormalize over the
// signals each candidate actually has, so a missing signal redistributes
// its weight instead of acting as a zero score.
func (e *Engine) fuse(
	candidates []models.CandidateProfile,
	states []candidateState,
	impactCalibrated []float64,
	weights map[string]float64,
) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(candidates))
	for i := range candidates {
		st := &states[i]
		if !st.hasVector && !st.hasLexical && !st.hasSemantic {
			continue
		}
		c := &st.components

		var weighted, wsum, plain float64
		signals := 0
		if st.hasVector {
			weighted += weights[SignalVector] * *c.VectorScore
			wsum += weights[SignalVector]
			plain += *c.VectorScore
			signals++
		}
		if st.hasLexical {
			weighted += weights[SignalLexical] * *c.LexicalScore
			wsum += weights[SignalLexical]
			plain += *c.LexicalScore
			signals++
		}
		if st.hasSemantic {
			weighted += weights[SignalSemantic] * *c.SemanticScore
			wsum += weights[SignalSemantic]
			plain += *c.SemanticScore
			signals++
		}
		// equal split when every present signal carries zero weight
		base := plain / float64(signals)
		if wsum > 0 {
			base = weighted / wsum
		}
		c.BaseScore = base

		c.SkillBonus = c.MandatoryCoverage*e.cfg.Scoring.MandatoryBonusWeight +
			c.OptionalCoverage*e.cfg.Scoring.OptionalBonusWeight
		c.BasePlusBonus = base + c.SkillBonus
		c.BoostedBase = c.BasePlusBonus * (1 + c.MandatoryCoverage*e.cfg.Scoring.MandatoryStrengthFactor)

		if c.ImpactEventCount >= MinImpactEvents {
			c.ImpactCalibrated = impactCalibrated[i]
			c.ImpactComponentRaw = e.cfg.Scoring.ImpactWeight * c.ImpactCalibrated
			if c.ImpactRelevance >= e.cfg.Scoring.ImpactMinRelevance {
				c.ImpactComponent = c.ImpactComponentRaw * c.ImpactRelevance
			}
		}
		c.FinalScore = c.BoostedBase + c.ImpactComponent

		results = append(results, models.RankedResult{
			CandidateID: candidates[i].ID,
			FinalScore:  c.FinalScore,
			Components:  *c,
		})
	}
	return results
}
