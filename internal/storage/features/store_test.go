// internal/storage/features/store_test.go
package features

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/models"
)

func testResults() []models.RankedResult {
	return []models.RankedResult{
		{
			CandidateID: "cand-1",
			Rank:        1,
			FinalScore:  0.82,
			Components:  models.ScoreComponents{MandatoryCoverage: 1.0, FinalScore: 0.82},
		},
		{
			CandidateID: "cand-2",
			Rank:        2,
			FinalScore:  0.61,
			Components:  models.ScoreComponents{MandatoryCoverage: 0.5, FinalScore: 0.61},
		},
	}
}

func TestSaveResults_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO ranking_features`).
		WithArgs("req-1", "cand-1", "pass-1", 1, 0.82, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO ranking_features`).
		WithArgs("req-1", "cand-2", "pass-1", 2, 0.61, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store := New(db, logger.NewTestLogger(t))
	err = store.SaveResults(context.Background(), "req-1", "pass-1", testResults())

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveResults_RollsBackOnExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO ranking_features`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	store := New(db, logger.NewTestLogger(t))
	err = store.SaveResults(context.Background(), "req-1", "pass-1", testResults())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert features for cand-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveResults_EmptyResultSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	store := New(db, logger.NewTestLogger(t))
	err = store.SaveResults(context.Background(), "req-1", "pass-1", nil)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadResults_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"candidate_id", "rank", "final_score", "components"}).
		AddRow("cand-1", 1, 0.82, []byte(`{"mandatory_coverage":1,"final_score":0.82}`)).
		AddRow("cand-2", 2, 0.61, []byte(`{"mandatory_coverage":0.5,"final_score":0.61}`))
	mock.ExpectQuery(`SELECT candidate_id, rank, final_score, components`).
		WithArgs("req-1").
		WillReturnRows(rows)

	store := New(db, logger.NewTestLogger(t))
	results, err := store.LoadResults(context.Background(), "req-1")

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cand-1", results[0].CandidateID)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 1.0, results[0].Components.MandatoryCoverage)
	assert.Equal(t, 0.5, results[1].Components.MandatoryCoverage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadResults_BadComponentsJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"candidate_id", "rank", "final_score", "components"}).
		AddRow("cand-1", 1, 0.82, []byte(`not json`))
	mock.ExpectQuery(`SELECT candidate_id, rank, final_score, components`).
		WithArgs("req-1").
		WillReturnRows(rows)

	store := New(db, logger.NewTestLogger(t))
	_, err = store.LoadResults(context.Background(), "req-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode components for cand-1")
}
