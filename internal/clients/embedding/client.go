// internal/clients/embedding/client.go
package embedding

import (
	"context"
	"fmt"
	"time"

	commonhttp "profile-ranker/internal/common/http"
	"profile-ranker/internal/common/metrics"
	"profile-ranker/internal/ranking/impact"
)

const serviceName = "embedding"

// Client calls a sentence embedding service over HTTP.
type Client struct {
	httpClient *commonhttp.Client
	baseURL    string
	model      string
}

type embedRequest struct {
	Model string   `json:"model,omitempty"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func New(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: commonhttp.NewClient(timeout),
		baseURL:    baseURL,
		model:      model,
	}
}

// Embed returns one embedding vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	var resp embedResponse
	err := c.httpClient.PostJSON(ctx, c.baseURL+"/embed", embedRequest{
		Model: c.model,
		Texts: texts,
	}, &resp)
	metrics.ModelCallDuration.WithLabelValues(serviceName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ModelCallFailures.WithLabelValues(serviceName).Inc()
		return nil, fmt.Errorf("embedding call: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		metrics.ModelCallFailures.WithLabelValues(serviceName).Inc()
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	return resp.Embeddings, nil
}

// EmbedFunc exposes the client as the callback type the impact relevance
// gate consumes.
func (c *Client) EmbedFunc() impact.EmbedFunc {
	return c.Embed
}
