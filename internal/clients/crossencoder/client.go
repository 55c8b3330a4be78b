// internal/clients/crossencoder/client.go
package crossencoder

import (
	"context"
	"fmt"
	"time"

	commonhttp "profile-ranker/internal/common/http"
	"profile-ranker/internal/common/metrics"
)

const serviceName = "cross_encoder"

// Client calls a cross-encoder scoring service over HTTP. It satisfies
// semantic.PairScorer.
type Client struct {
	httpClient *commonhttp.Client
	baseURL    string
	model      string
}

type scoreRequest struct {
	Model string   `json:"model,omitempty"`
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

func New(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: commonhttp.NewClient(timeout),
		baseURL:    baseURL,
		model:      model,
	}
}

// ScorePairs scores each (query, text) pair and returns one relevance score
// per text, in input order.
func (c *Client) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	var resp scoreResponse
	err := c.httpClient.PostJSON(ctx, c.baseURL+"/score", scoreRequest{
		Model: c.model,
		Query: query,
		Texts: texts,
	}, &resp)
	metrics.ModelCallDuration.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ModelCallFailures.WithLabelValues(serviceName).Inc()
		return nil, fmt.Errorf("cross-encoder score call: %w", err)
	}

	if len(resp.Scores) != len(texts) {
		metrics.ModelCallFailures.WithLabelValues(serviceName).Inc()
		return nil, fmt.Errorf("cross-encoder returned %d scores for %d texts", len(resp.Scores), len(texts))
	}

	return resp.Scores, nil
}
