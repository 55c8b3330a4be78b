// internal/models/scoring.go
package models

// Semantic signal status flags carried through to the response.
const (
	SemanticOK          = "ok"
	SemanticNoText      = "no_text"
	SemanticUnavailable = "unavailable"
)

// SkillMatch explains the credit one required skill earned.
type SkillMatch struct {
	Skill   string  `json:"skill"`
	Credit  float64 `json:"credit"`
	Matched string  `json:"matched,omitempty"`
	Kind    string  `json:"kind"` // exact, family or none
}

// ScoreComponents holds every intermediate value produced for a candidate.
// Nothing here is discarded before the response is built; the evaluation
// harness and the feature store both consume it as-is.
type ScoreComponents struct {
	VectorScore    *float64 `json:"vector_score,omitempty"`
	LexicalRaw     *float64 `json:"lexical_raw,omitempty"`
	LexicalScore   *float64 `json:"lexical_score,omitempty"`
	SemanticRaw    *float64 `json:"semantic_raw,omitempty"`
	SemanticScore  *float64 `json:"semantic_score,omitempty"`
	SemanticStatus string   `json:"semantic_status,omitempty"`

	SectionScores map[string]float64 `json:"section_scores,omitempty"`

	MandatoryCoverage float64      `json:"mandatory_coverage"`
	OptionalCoverage  float64      `json:"optional_coverage"`
	SkillMatches      []SkillMatch `json:"skill_matches,omitempty"`

	SkillBonus    float64 `json:"skill_bonus"`
	BaseScore     float64 `json:"base_score"`
	BasePlusBonus float64 `json:"base_score_plus_skill_bonus"`
	BoostedBase   float64 `json:"boosted_base_after_mandatory"`

	ImpactRawScore     float64 `json:"impact_raw_score"`
	ImpactEventCount   int     `json:"impact_event_count"`
	ImpactCalibrated   float64 `json:"impact_score_calibrated"`
	ImpactRelevance    float64 `json:"impact_relevance_ratio"`
	ImpactComponentRaw float64 `json:"impact_component_raw"`
	ImpactComponent    float64 `json:"impact_component_final"`

	FinalScore float64 `json:"final_score"`
}

// RankedResult is one entry of the ordered response.
type RankedResult struct {
	CandidateID string          `json:"candidate_id"`
	Rank        int             `json:"rank"`
	FinalScore  float64         `json:"final_score"`
	Components  ScoreComponents `json:"components"`
}

// BM25Normalization records the saturation parameters a pass actually used.
type BM25Normalization struct {
	Method string  `json:"method"`
	K      float64 `json:"k"`
}

// BatchMeta is the aggregate metadata returned alongside the ranked list.
type BatchMeta struct {
	PassID            string             `json:"pass_id"`
	RerankMode        string             `json:"rerank_mode"`
	Weights           map[string]float64 `json:"weights"`
	SignalsPresent    map[string]bool    `json:"signals_present"`
	BM25Normalization BM25Normalization  `json:"bm25_normalization"`
	CandidateCount    int                `json:"candidate_count"`
	SkippedNoSignal   int                `json:"skipped_no_signal"`
}

// RankRequest is the full input of one ranking pass.
type RankRequest struct {
	Requirement RequirementDocument `json:"requirement"`
	Candidates  []CandidateProfile  `json:"candidates"`
	TopK        int                 `json:"top_k,omitempty"`
}

// RankResponse is the ordered, truncated output of one ranking pass.
type RankResponse struct {
	Results []RankedResult `json:"results"`
	Meta    BatchMeta      `json:"meta"`
}
