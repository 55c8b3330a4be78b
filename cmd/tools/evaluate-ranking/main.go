// cmd/tools/evaluate-ranking/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/evaluation"
)

// labeledRun is one stored ranking response plus its relevance labels.
type labeledRun struct {
	RequirementID string               `json:"requirement_id"`
	RelevantIDs   []string             `json:"relevant_ids"`
	Response      models.RankResponse  `json:"response"`
	Baseline      *models.RankResponse `json:"baseline,omitempty"`
}

type report struct {
	RequirementID  string               `json:"requirement_id"`
	PrecisionAtK   map[string]float64   `json:"precision_at_k"`
	ReciprocalRank float64              `json:"reciprocal_rank"`
	SpearmanVsBase *float64             `json:"spearman_vs_baseline,omitempty"`
	ImpactLift     evaluation.LiftStats `json:"impact_lift"`
}

func main() {
	inputPath := flag.String("input", "", "path to a labeled run JSON file")
	ks := flag.String("k", "3,5,10", "comma separated precision cutoffs")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Error: -input is required.")
		flag.Usage()
		os.Exit(1)
	}

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Printf("Error reading input: %v\n", err)
		os.Exit(1)
	}

	var run labeledRun
	if err := json.Unmarshal(raw, &run); err != nil {
		fmt.Printf("Error parsing input: %v\n", err)
		os.Exit(1)
	}

	out, err := evaluate(&run, parseCutoffs(*ks))
	if err != nil {
		fmt.Printf("Error evaluating run: %v\n", err)
		os.Exit(1)
	}

	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}

func evaluate(run *labeledRun, cutoffs []int) (*report, error) {
	if len(run.Response.Results) == 0 {
		return nil, fmt.Errorf("run has no ranked results")
	}

	relevant := make(map[string]bool, len(run.RelevantIDs))
	for _, id := range run.RelevantIDs {
		relevant[id] = true
	}

	rankedIDs := make([]string, len(run.Response.Results))
	pairs := make([]evaluation.ScorePair, len(run.Response.Results))
	for i, r := range run.Response.Results {
		rankedIDs[i] = r.CandidateID
		pairs[i] = evaluation.ScorePair{
			CandidateID: r.CandidateID,
			PreImpact:   r.Components.BoostedBase,
			Final:       r.FinalScore,
		}
	}

	out := &report{
		RequirementID:  run.RequirementID,
		PrecisionAtK:   make(map[string]float64, len(cutoffs)),
		ReciprocalRank: evaluation.ReciprocalRank(relevant, rankedIDs),
		ImpactLift:     evaluation.ComputeLiftStats(pairs),
	}
	for _, k := range cutoffs {
		out.PrecisionAtK[fmt.Sprintf("p@%d", k)] = evaluation.PrecisionAtK(relevant, rankedIDs, k)
	}

	if run.Baseline != nil {
		rho := spearmanAgainstBaseline(&run.Response, run.Baseline)
		out.SpearmanVsBase = &rho
	}
	return out, nil
}

// spearmanAgainstBaseline correlates the final scores of candidates present
// in both runs, in the current run's order.
func spearmanAgainstBaseline(current, baseline *models.RankResponse) float64 {
	baseScores := make(map[string]float64, len(baseline.Results))
	for _, r := range baseline.Results {
		baseScores[r.CandidateID] = r.FinalScore
	}

	var a, b []float64
	for _, r := range current.Results {
		base, ok := baseScores[r.CandidateID]
		if !ok {
			continue
		}
		a = append(a, r.FinalScore)
		b = append(b, base)
	}
	return evaluation.SpearmanRankCorr(a, b)
}

func parseCutoffs(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && n > 0 {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		out = []int{10}
	}
	return out
}
