package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"meal-catalog/internal/mealdb"
	"meal-catalog/internal/metrics"
)

// Operation names reported to the metrics recorder.
const (
	OpCategories      = "categories"
	OpMealsByCategory = "meals_by_category"
	OpMealDetail      = "meal_detail"
)

// SavedLocation is a user-attached (label, latitude, longitude) record.
type SavedLocation struct {
	Label     string
	Latitude  float64
	Longitude float64
}

// MetricsRecorder receives one metric per remote call.
type MetricsRecorder interface {
	Record(m metrics.FetchMetric) error
}

// Repository forwards catalog queries to the remote client and keeps the
// session's saved locations in memory. Nothing is cached.
type Repository struct {
	client   mealdb.Client
	recorder MetricsRecorder
	logger   *slog.Logger

	mu             sync.Mutex
	savedLocations []SavedLocation
}

// NewRepository creates a new Repository. recorder may be nil.
func NewRepository(client mealdb.Client, recorder MetricsRecorder, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		client:   client,
		recorder: recorder,
		logger:   logger,
	}
}

// FetchAllCategories returns every category. Errors from the client are returned as-is.
func (r *Repository) FetchAllCategories(ctx context.Context) (*mealdb.CategoriesResponse, error) {
	start := time.Now()
	resp, err := r.client.FetchCategories(ctx)
	r.record(OpCategories, "", start, err)
	return resp, err
}

// FetchMealsByCategory returns the meals filed under categoryName.
func (r *Repository) FetchMealsByCategory(ctx context.Context, categoryName string) (*mealdb.MealsResponse, error) {
	start := time.Now()
	resp, err := r.client.FetchMealsByCategory(ctx, categoryName)
	r.record(OpMealsByCategory, categoryName, start, err)
	return resp, err
}

// FetchMealDetail returns the first record matching mealID, or nil when the
// catalog has none.
func (r *Repository) FetchMealDetail(ctx context.Context, mealID string) (*mealdb.MealDetail, error) {
	start := time.Now()
	resp, err := r.client.FetchMealDetails(ctx, mealID)
	r.record(OpMealDetail, mealID, start, err)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Meals) == 0 {
		return nil, nil
	}
	return &resp.Meals[0], nil
}

// SaveLocation appends a location. Duplicates and out-of-range coordinates
// are accepted.
func (r *Repository) SaveLocation(label string, latitude, longitude float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.savedLocations = append(r.savedLocations, SavedLocation{Label: label, Latitude: latitude, Longitude: longitude})
}

// SavedLocations returns a copy of the saved locations in insertion order.
func (r *Repository) SavedLocations() []SavedLocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SavedLocation, len(r.savedLocations))
	copy(out, r.savedLocations)
	return out
}

func (r *Repository) record(op, target string, start time.Time, err error) {
	if r.recorder == nil {
		return
	}
	if recErr := r.recorder.Record(metrics.Since(op, target, start, err)); recErr != nil {
		r.logger.Warn("failed to record fetch metric", "operation", op, "error", recErr)
	}
}
