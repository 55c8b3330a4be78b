// internal/ranking/lexical/bm25.go
package lexical

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Default BM25 parameters, tuned for short mixed-section documents.
const (
	DefaultK1   = 1.5
	DefaultB    = 0.75
	DefaultMinK = 1.0
)

// Saturation k strategies.
const (
	StrategyMedian = "median"
	StrategyMean   = "mean"
	StrategyFixed  = "fixed"
)

// Params configures one lexical scoring pass. The zero value is usable;
// unset fields fall back to the documented defaults.
type Params struct {
	K1       float64
	B        float64
	Strategy string  // saturation k strategy
	FixedK   float64 // used when Strategy is "fixed"
	MinK     float64 // floor for k, prevents division blowups
}

func (p Params) withDefaults() Params {
	if p.K1 <= 0 {
		p.K1 = DefaultK1
	}
	if p.B <= 0 {
		p.B = DefaultB
	}
	if p.Strategy == "" {
		p.Strategy = StrategyMedian
	}
	if p.MinK <= 0 {
		p.MinK = DefaultMinK
	}
	return p
}

// Tokenize lowercases text and splits it on non-alphanumeric boundaries.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Score computes raw BM25 scores of every document against the query.
// The document-frequency table is built fresh for the pass and discarded
// with it. Empty corpus returns an empty slice, an empty query all zeros.
func Score(query string, docs []string, params Params) []float64 {
	p := params.withDefaults()
	if len(docs) == 0 {
		return []float64{}
	}

	scores := make([]float64, len(docs))
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return scores
	}

	docTokens := make([][]string, len(docs))
	df := make(map[string]int)
	totalLen := 0
	for i, doc := range docs {
		tokens := Tokenize(doc)
		docTokens[i] = tokens
		totalLen += len(tokens)
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}
	avgdl := float64(totalLen) / float64(len(docs))
	n := float64(len(docs))

	for i, tokens := range docTokens {
		if len(tokens) == 0 {
			continue
		}
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		docLen := float64(len(tokens))

		var score float64
		for _, term := range queryTokens {
			freq := float64(tf[term])
			if freq == 0 {
				continue
			}
			idf := math.Log((n-float64(df[term])+0.5)/(float64(df[term])+0.5) + 1.0)
			numerator := freq * (p.K1 + 1)
			denominator := freq + p.K1*(1-p.B+p.B*(docLen/avgdl))
			score += idf * (numerator / denominator)
		}
		scores[i] = score
	}
	return scores
}

// Saturate maps raw scores into [0,1] via score/(score+k). The k value is
// picked from the raw distribution per the configured strategy and floored
// at MinK so near-zero batches stay stable. Returns the k actually used.
func Saturate(raw []float64, params Params) ([]float64, float64) {
	p := params.withDefaults()
	if len(raw) == 0 {
		return []float64{}, p.MinK
	}

	var k float64
	switch p.Strategy {
	case StrategyMean:
		k = mean(raw)
	case StrategyFixed:
		k = p.FixedK
	default:
		k = median(raw)
	}
	if k < p.MinK {
		k = p.MinK
	}

	normalized := make([]float64, len(raw))
	for i, s := range raw {
		if s > 0 {
			normalized[i] = s / (s + k)
		}
	}
	return normalized, k
}

// ScoreSaturated runs Score then Saturate in one call.
func ScoreSaturated(query string, docs []string, params Params) ([]float64, float64) {
	return Saturate(Score(query, docs, params), params)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
