package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"meal-catalog/internal/config"
)

// Category is a meal-catalog grouping. SavedLatitude/SavedLongitude are 0,0
// until a location is attached, which is indistinguishable from a real point
// on the equator.
type Category struct {
	ID             string  `json:"idCategory"`
	Name           string  `json:"strCategory"`
	ThumbnailURL   string  `json:"strCategoryThumb"`
	Description    string  `json:"strCategoryDescription"`
	SavedLatitude  float64 `json:"-"`
	SavedLongitude float64 `json:"-"`
}

// HasSavedLocation reports whether both coordinates are non-zero.
func (c Category) HasSavedLocation() bool {
	return c.SavedLatitude != 0 && c.SavedLongitude != 0
}

// Meal is the list-item projection returned by the category filter.
type Meal struct {
	ID           string `json:"idMeal"`
	Name         string `json:"strMeal"`
	ThumbnailURL string `json:"strMealThumb"`
}

// CategoriesResponse is the envelope of categories.php.
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// MealsResponse is the envelope of filter.php. The API answers
// {"meals": null} for unknown categories, which decodes to a nil slice.
type MealsResponse struct {
	Meals []Meal `json:"meals"`
}

// MealDetailsResponse is the envelope of lookup.php.
type MealDetailsResponse struct {
	Meals []MealDetail `json:"meals"`
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mealdb api error: %s returned status %d", e.Endpoint, e.StatusCode)
}

// Client is an interface for a TheMealDB API client.
type Client interface {
	FetchCategories(ctx context.Context) (*CategoriesResponse, error)
	FetchMealsByCategory(ctx context.Context, category string) (*MealsResponse, error)
	FetchMealDetails(ctx context.Context, mealID string) (*MealDetailsResponse, error)
}

// mealDBClient is the concrete implementation of the TheMealDB client.
type mealDBClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new TheMealDB API client.
func NewClient(cfg *config.Config) Client {
	return &mealDBClient{
		httpClient: &http.Client{Timeout: cfg.MealDBTimeout},
		baseURL:    cfg.MealDBURL,
	}
}

// FetchCategories fetches every category.
func (c *mealDBClient) FetchCategories(ctx context.Context) (*CategoriesResponse, error) {
	var resp CategoriesResponse
	if err := c.get(ctx, "categories.php", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchMealsByCategory fetches the meals filed under a category name.
func (c *mealDBClient) FetchMealsByCategory(ctx context.Context, category string) (*MealsResponse, error) {
	var resp MealsResponse
	if err := c.get(ctx, "filter.php", url.Values{"c": {category}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchMealDetails looks a meal up by its identifier.
func (c *mealDBClient) FetchMealDetails(ctx context.Context, mealID string) (*MealDetailsResponse, error) {
	var resp MealDetailsResponse
	if err := c.get(ctx, "lookup.php", url.Values{"i": {mealID}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *mealDBClient) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	u := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
