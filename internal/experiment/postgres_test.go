package experiment

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-optimizer/internal/model"
)

var pgColumns = []string{
	"id", "name", "description", "content_type", "platform", "test_type", "status",
	"variants", "results", "winner_variant_id", "confidence_level", "start_date",
	"end_date", "created_at", "updated_at",
}

func pgExperimentRow(mock pgxmock.PgxPoolIface, id string, status model.ExperimentStatus, created time.Time) *pgxmock.Rows {
	variants := `[{"id":"control","name":"Control","content":"Original","type":"title","created_at":"2026-01-01T00:00:00Z"},` +
		`{"id":"variant_1","name":"Variant 1","content":"Rewritten","type":"title","created_at":"2026-01-01T00:00:00Z"}]`
	return mock.NewRows(pgColumns).AddRow(
		id, "Headline Test", "desc", "blog", nil, "title", string(status),
		[]byte(variants), []byte(`[]`), nil, 0.0, nil, nil, created, created,
	)
}

func TestPostgresStore_GetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM experiments WHERE id = \$1`).
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresFromPool(mock)
	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM experiments WHERE id = \$1`).
		WithArgs("exp-1").
		WillReturnRows(pgExperimentRow(mock, "exp-1", model.StatusDraft, created))

	store := NewPostgresFromPool(mock)
	got, err := store.Get(context.Background(), "exp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "exp-1", got.ID)
	assert.Equal(t, model.StatusDraft, got.Status)
	assert.Len(t, got.Variants, 2)
	assert.Equal(t, model.ControlVariantID, got.Variants[0].ID)
	assert.Empty(t, got.Results)
	assert.Nil(t, got.WinnerVariantID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM experiments WHERE id = \$1`).
		WithArgs("nope").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewPostgresFromPool(mock)
	err = store.Delete(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	insertArgs := make([]any, 15)
	for i := range insertArgs {
		insertArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec(`INSERT INTO experiments`).
		WithArgs(insertArgs...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresFromPool(mock)
	exp := testExperiment("exp-1", "Headline Test")
	require.NoError(t, store.Create(context.Background(), exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM experiments WHERE 1=1 AND status = \$1 ORDER BY created_at DESC`).
		WithArgs("running").
		WillReturnRows(pgExperimentRow(mock, "exp-1", model.StatusRunning, created))

	store := NewPostgresFromPool(mock)
	got, err := store.List(context.Background(), Filter{Status: model.StatusRunning})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "exp-1", got[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM experiments WHERE id = \$1 FOR UPDATE`).
		WithArgs("exp-1").
		WillReturnRows(pgExperimentRow(mock, "exp-1", model.StatusDraft, created))
	updateArgs := make([]any, 12)
	for i := range updateArgs {
		updateArgs[i] = pgxmock.AnyArg()
	}
	mock.ExpectExec(`UPDATE experiments SET`).
		WithArgs(updateArgs...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	store := NewPostgresFromPool(mock)
	running := model.StatusRunning
	updated, err := store.Update(context.Background(), "exp-1", Update{Status: &running})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRunning, updated.Status)
	require.NotNil(t, updated.StartDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateIllegalTransition(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM experiments WHERE id = \$1 FOR UPDATE`).
		WithArgs("exp-1").
		WillReturnRows(pgExperimentRow(mock, "exp-1", model.StatusCompleted, created))
	mock.ExpectRollback()

	store := NewPostgresFromPool(mock)
	running := model.StatusRunning
	_, err = store.Update(context.Background(), "exp-1", Update{Status: &running})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition")
	require.NoError(t, mock.ExpectationsWereMet())
}
