package catalog

import (
	"context"
	"errors"
	"testing"

	"meal-catalog/internal/mealdb"
	"meal-catalog/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeClient struct {
	categories *mealdb.CategoriesResponse
	meals      *mealdb.MealsResponse
	details    *mealdb.MealDetailsResponse
	err        error
	lastArg    string
}

func (f *fakeClient) FetchCategories(ctx context.Context) (*mealdb.CategoriesResponse, error) {
	return f.categories, f.err
}

func (f *fakeClient) FetchMealsByCategory(ctx context.Context, category string) (*mealdb.MealsResponse, error) {
	f.lastArg = category
	return f.meals, f.err
}

func (f *fakeClient) FetchMealDetails(ctx context.Context, mealID string) (*mealdb.MealDetailsResponse, error) {
	f.lastArg = mealID
	return f.details, f.err
}

type fakeRecorder struct {
	recorded []metrics.FetchMetric
	err      error
}

func (f *fakeRecorder) Record(m metrics.FetchMetric) error {
	f.recorded = append(f.recorded, m)
	return f.err
}

// --- Tests ---

func TestRepositoryFetchAllCategories(t *testing.T) {
	client := &fakeClient{categories: &mealdb.CategoriesResponse{Categories: []mealdb.Category{{Name: "Beef"}}}}
	recorder := &fakeRecorder{}
	repo := NewRepository(client, recorder, nil)

	resp, err := repo.FetchAllCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Beef", resp.Categories[0].Name)

	require.Len(t, recorder.recorded, 1)
	assert.Equal(t, OpCategories, recorder.recorded[0].Operation)
	assert.False(t, recorder.recorded[0].Failed)
}

func TestRepositoryFetchMealsByCategory(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := &fakeClient{meals: &mealdb.MealsResponse{Meals: []mealdb.Meal{{ID: "1", Name: "Stew"}}}}
		repo := NewRepository(client, nil, nil)

		resp, err := repo.FetchMealsByCategory(context.Background(), "Beef")
		require.NoError(t, err)
		assert.Equal(t, "Beef", client.lastArg)
		assert.Len(t, resp.Meals, 1)
	})

	t.Run("ErrorPropagatesUnchanged", func(t *testing.T) {
		boom := errors.New("timeout")
		recorder := &fakeRecorder{}
		repo := NewRepository(&fakeClient{err: boom}, recorder, nil)

		_, err := repo.FetchMealsByCategory(context.Background(), "Beef")
		assert.Same(t, boom, err)
		require.Len(t, recorder.recorded, 1)
		assert.True(t, recorder.recorded[0].Failed)
		assert.Equal(t, "Beef", recorder.recorded[0].Target)
	})

	t.Run("RecorderFailureIsIgnored", func(t *testing.T) {
		client := &fakeClient{meals: &mealdb.MealsResponse{}}
		repo := NewRepository(client, &fakeRecorder{err: errors.New("db locked")}, nil)

		_, err := repo.FetchMealsByCategory(context.Background(), "Beef")
		assert.NoError(t, err)
	})
}

func TestRepositoryFetchMealDetail(t *testing.T) {
	t.Run("FirstRecord", func(t *testing.T) {
		client := &fakeClient{details: &mealdb.MealDetailsResponse{Meals: []mealdb.MealDetail{
			{ID: "1", Name: "First"},
			{ID: "1", Name: "Second"},
		}}}
		repo := NewRepository(client, nil, nil)

		d, err := repo.FetchMealDetail(context.Background(), "1")
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "First", d.Name)
	})

	t.Run("EmptyListIsAbsent", func(t *testing.T) {
		repo := NewRepository(&fakeClient{details: &mealdb.MealDetailsResponse{}}, nil, nil)

		d, err := repo.FetchMealDetail(context.Background(), "0")
		assert.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("Error", func(t *testing.T) {
		repo := NewRepository(&fakeClient{err: errors.New("offline")}, nil, nil)

		d, err := repo.FetchMealDetail(context.Background(), "1")
		assert.Error(t, err)
		assert.Nil(t, d)
	})
}

func TestRepositorySaveLocation(t *testing.T) {
	repo := NewRepository(&fakeClient{}, nil, nil)

	repo.SaveLocation("A", 1, 2)
	repo.SaveLocation("B", 3, 4)
	repo.SaveLocation("B", 3, 4)
	repo.SaveLocation("", 500, -500)

	assert.Equal(t, []SavedLocation{
		{Label: "A", Latitude: 1, Longitude: 2},
		{Label: "B", Latitude: 3, Longitude: 4},
		{Label: "B", Latitude: 3, Longitude: 4},
		{Label: "", Latitude: 500, Longitude: -500},
	}, repo.SavedLocations())

	// Callers get a copy.
	got := repo.SavedLocations()
	got[0].Label = "changed"
	assert.Equal(t, "A", repo.SavedLocations()[0].Label)
}
