// internal/clients/vectorsearch/store.go
package vectorsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"profile-ranker/internal/common/database"
	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/impact"
	"profile-ranker/internal/ranking/semantic"
)

// Store keeps candidate profile embeddings in an Elasticsearch dense_vector
// index and answers cosine similarity lookups against a requirement vector.
type Store struct {
	es     *database.ElasticsearchClient
	logger logger.Logger
}

func New(es *database.ElasticsearchClient, log logger.Logger) *Store {
	return &Store{
		es:     es,
		logger: log.WithFields(map[string]interface{}{"component": "vectorsearch"}),
	}
}

// EnsureIndex creates the embeddings index if it does not exist yet.
func (s *Store) EnsureIndex(ctx context.Context, dims int) error {
	exists, err := s.es.Client.Indices.Exists(
		[]string{s.es.Index},
		s.es.Client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.es.Index, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"candidate_id": map[string]interface{}{"type": "keyword"},
				"embedding": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
	body, _ := json.Marshal(mapping)

	res, err := s.es.Client.Indices.Create(
		s.es.Index,
		s.es.Client.Indices.Create.WithContext(ctx),
		s.es.Client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.es.Index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.es.Index, res.Status())
	}
	return nil
}

// MissingIDs returns the subset of ids that have no stored embedding.
func (s *Store) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"ids": map[string]interface{}{"values": ids},
		},
		"_source": false,
		"size":    len(ids),
	}
	body, _ := json.Marshal(query)

	req := esapi.SearchRequest{
		Index: []string{s.es.Index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, fmt.Errorf("lookup stored embeddings: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		// Index not created yet, everything is missing.
		out := make([]string, len(ids))
		copy(out, ids)
		return out, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("lookup stored embeddings: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embedding lookup response: %w", err)
	}

	found := make(map[string]bool, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		found[hit.ID] = true
	}

	missing := make([]string, 0)
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Upsert stores a candidate embedding keyed by candidate ID.
func (s *Store) Upsert(ctx context.Context, candidateID string, vector []float64) error {
	doc := map[string]interface{}{
		"candidate_id": candidateID,
		"embedding":    vector,
	}
	body, _ := json.Marshal(doc)

	req := esapi.IndexRequest{
		Index:      s.es.Index,
		DocumentID: candidateID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return fmt.Errorf("index embedding for %s: %w", candidateID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index embedding for %s: %s", candidateID, res.Status())
	}
	return nil
}

// Backfill embeds and stores only the candidates that have no stored
// embedding yet. Candidates with no usable text are skipped.
func (s *Store) Backfill(ctx context.Context, candidates []models.CandidateProfile, embed impact.EmbedFunc) (int, error) {
	byID := make(map[string]models.CandidateProfile, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasText() {
			continue
		}
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	missing, err := s.MissingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(missing) == 0 {
		return 0, nil
	}

	texts := make([]string, len(missing))
	for i, id := range missing {
		c := byID[id]
		texts[i] = semantic.CandidateText(&c)
	}

	vectors, err := embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d candidate profiles: %w", len(missing), err)
	}
	if len(vectors) != len(missing) {
		return 0, fmt.Errorf("embedding service returned %d vectors for %d profiles", len(vectors), len(missing))
	}

	stored := 0
	for i, id := range missing {
		if err := s.Upsert(ctx, id, vectors[i]); err != nil {
			return stored, err
		}
		stored++
	}

	s.logger.Info("backfilled candidate embeddings", map[string]interface{}{
		"requested": len(ids),
		"stored":    stored,
	})
	return stored, nil
}

// Similarity scores the given candidates against a requirement vector using
// cosine similarity mapped into [0,1]. Candidates without a stored embedding
// are absent from the result map.
func (s *Store) Similarity(ctx context.Context, queryVector []float64, candidateIDs []string) (map[string]float64, error) {
	if len(candidateIDs) == 0 || len(queryVector) == 0 {
		return map[string]float64{}, nil
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"script_score": map[string]interface{}{
				"query": map[string]interface{}{
					"ids": map[string]interface{}{"values": candidateIDs},
				},
				"script": map[string]interface{}{
					"source": "(cosineSimilarity(params.query_vector, 'embedding') + 1.0) / 2.0",
					"params": map[string]interface{}{"query_vector": queryVector},
				},
			},
		},
		"_source": false,
		"size":    len(candidateIDs),
	}
	body, _ := json.Marshal(query)

	req := esapi.SearchRequest{
		Index: []string{s.es.Index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es.Client)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("similarity search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID    string  `json:"_id"`
				Score float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode similarity response: %w", err)
	}

	scores := make(map[string]float64, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}
