package experiment

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/content-optimizer/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "experiments.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func testExperiment(id, name string) *model.Experiment {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Experiment{
		ID:          id,
		Name:        name,
		Description: "homepage hero headline test",
		ContentType: model.ContentTypeBlog,
		Platform:    "website",
		TestType:    model.TestTypeTitle,
		Status:      model.StatusDraft,
		Variants: []model.Variant{
			{ID: model.ControlVariantID, Name: "Control", Content: "Original headline", Type: model.TestTypeTitle, CreatedAt: now},
			{ID: "variant_1", Name: "Variant 1", Content: "Rewritten headline", Type: model.TestTypeTitle, CreatedAt: now},
		},
		Results:   []model.VariantResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exp := testExperiment("exp-1", "Hero Headline Test")
	require.NoError(t, store.Create(ctx, exp))

	got, err := store.Get(ctx, "exp-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, exp.ID, got.ID)
	assert.Equal(t, exp.Name, got.Name)
	assert.Equal(t, exp.Description, got.Description)
	assert.Equal(t, exp.ContentType, got.ContentType)
	assert.Equal(t, exp.Platform, got.Platform)
	assert.Equal(t, exp.TestType, got.TestType)
	assert.Equal(t, exp.Status, got.Status)
	assert.Equal(t, exp.Variants, got.Variants)
	assert.Equal(t, exp.Results, got.Results)
	assert.Nil(t, got.WinnerVariantID)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
	assert.True(t, exp.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.Delete(ctx, "exp-1"))

	got, err = store.Get(ctx, "exp-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListFiltersAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	oldest := testExperiment("exp-a", "Oldest")
	oldest.CreatedAt = time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)

	middle := testExperiment("exp-b", "Middle")
	middle.CreatedAt = time.Now().UTC().Add(-1 * time.Hour).Truncate(time.Second)
	middle.ContentType = model.ContentTypeSocial
	middle.Platform = "linkedin"

	newest := testExperiment("exp-c", "Newest")
	newest.CreatedAt = time.Now().UTC().Truncate(time.Second)
	newest.Status = model.StatusRunning

	for _, exp := range []*model.Experiment{oldest, middle, newest} {
		require.NoError(t, store.Create(ctx, exp))
	}

	all, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "exp-c", all[0].ID)
	assert.Equal(t, "exp-b", all[1].ID)
	assert.Equal(t, "exp-a", all[2].ID)

	running, err := store.List(ctx, Filter{Status: model.StatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "exp-c", running[0].ID)

	social, err := store.List(ctx, Filter{ContentType: model.ContentTypeSocial})
	require.NoError(t, err)
	require.Len(t, social, 1)
	assert.Equal(t, "exp-b", social[0].ID)

	linkedin, err := store.List(ctx, Filter{Platform: "linkedin"})
	require.NoError(t, err)
	require.Len(t, linkedin, 1)
	assert.Equal(t, "exp-b", linkedin[0].ID)

	none, err := store.List(ctx, Filter{Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_UpdateTransitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exp := testExperiment("exp-1", "Transition Test")
	require.NoError(t, store.Create(ctx, exp))

	running := model.StatusRunning
	updated, err := store.Update(ctx, "exp-1", Update{Status: &running})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRunning, updated.Status)
	require.NotNil(t, updated.StartDate)

	completed := model.StatusCompleted
	updated, err = store.Update(ctx, "exp-1", Update{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, updated.Status)

	_, err = store.Update(ctx, "exp-1", Update{Status: &running})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transition")
}

func TestSQLiteStore_UpdateMissing(t *testing.T) {
	store := newTestStore(t)

	name := "renamed"
	_, err := store.Update(context.Background(), "nope", Update{Name: &name})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_UpdateResults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exp := testExperiment("exp-1", "Results Test")
	require.NoError(t, store.Create(ctx, exp))

	results := []model.VariantResult{
		{VariantID: model.ControlVariantID, Impressions: 500, Clicks: 25, CTR: 5.0},
	}
	updated, err := store.Update(ctx, "exp-1", Update{Results: results})
	require.NoError(t, err)
	assert.Equal(t, results, updated.Results)

	got, err := store.Get(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, results, got.Results)
}
