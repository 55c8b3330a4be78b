// internal/storage/features/store.go
package features

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/models"
)

// Store persists per-candidate score components so ranking passes can be
// audited and compared offline.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "feature_store"}),
	}
}

const upsertQuery = `
INSERT INTO ranking_features (requirement_id, candidate_id, pass_id, rank, final_score, components, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())
ON CONFLICT (requirement_id, candidate_id)
DO UPDATE SET pass_id = EXCLUDED.pass_id,
              rank = EXCLUDED.rank,
              final_score = EXCLUDED.final_score,
              components = EXCLUDED.components,
              created_at = NOW()`

// SaveResults upserts one row per ranked candidate for the given pass.
func (s *Store) SaveResults(ctx context.Context, requirementID, passID string, results []models.RankedResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feature upsert: %w", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		components, err := json.Marshal(r.Components)
		if err != nil {
			return fmt.Errorf("marshal components for %s: %w", r.CandidateID, err)
		}

		if _, err := tx.ExecContext(ctx, upsertQuery,
			requirementID, r.CandidateID, passID, r.Rank, r.FinalScore, components,
		); err != nil {
			return fmt.Errorf("upsert features for %s: %w", r.CandidateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit feature upsert: %w", err)
	}

	s.logger.Debug("persisted ranking features", map[string]interface{}{
		"requirementId": requirementID,
		"passId":        passID,
		"rows":          len(results),
	})
	return nil
}

const loadQuery = `
SELECT candidate_id, rank, final_score, components
FROM ranking_features
WHERE requirement_id = $1
ORDER BY rank ASC`

// LoadResults reads back the most recently stored results for a requirement.
func (s *Store) LoadResults(ctx context.Context, requirementID string) ([]models.RankedResult, error) {
	rows, err := s.db.QueryContext(ctx, loadQuery, requirementID)
	if err != nil {
		return nil, fmt.Errorf("load features for %s: %w", requirementID, err)
	}
	defer rows.Close()

	var results []models.RankedResult
	for rows.Next() {
		var r models.RankedResult
		var components []byte
		if err := rows.Scan(&r.CandidateID, &r.Rank, &r.FinalScore, &components); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		if err := json.Unmarshal(components, &r.Components); err != nil {
			return nil, fmt.Errorf("decode components for %s: %w", r.CandidateID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
