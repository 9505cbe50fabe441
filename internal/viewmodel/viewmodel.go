package viewmodel

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"meal-catalog/internal/catalog"
	"meal-catalog/internal/mealdb"
	"meal-catalog/internal/observable"

	"github.com/google/uuid"
)

// Repository is what the view-model needs from the catalog layer.
type Repository interface {
	FetchAllCategories(ctx context.Context) (*mealdb.CategoriesResponse, error)
	FetchMealsByCategory(ctx context.Context, categoryName string) (*mealdb.MealsResponse, error)
	FetchMealDetail(ctx context.Context, mealID string) (*mealdb.MealDetail, error)
	SaveLocation(label string, latitude, longitude float64)
}

// CurrentLocation is the transient map-pin candidate.
type CurrentLocation struct {
	Latitude  float64
	Longitude float64
	IsLoading bool
}

type (
	CategoriesResource = Resource[[]mealdb.Category]
	MealsResource      = Resource[[]mealdb.Meal]
)

// ViewModel holds the observable state of one browsing session and turns
// user actions into repository calls. Each trigger starts at most one fetch
// and the last fetch to complete wins.
type ViewModel struct {
	id     string
	repo   Repository
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	categories      *observable.Cell[CategoriesResource]
	meals           *observable.Cell[MealsResource]
	chosenCategory  *observable.Cell[string]
	searchQuery     *observable.Cell[string]
	selectedMeal    *observable.Cell[*mealdb.MealDetail]
	savedLocations  *observable.Cell[[]catalog.SavedLocation]
	currentLocation *observable.Cell[*CurrentLocation]

	mu           sync.Mutex
	fetchedMeals []mealdb.Meal // unfiltered result of the last successful meals fetch

	initialLoad *Task
}

// New creates a session and immediately starts loading the category list.
func New(repo Repository, logger *slog.Logger) *ViewModel {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	vm := &ViewModel{
		id:              id,
		repo:            repo,
		logger:          logger.With("session", id),
		ctx:             ctx,
		cancel:          cancel,
		categories:      observable.NewCell(CategoriesResource{}),
		meals:           observable.NewCell(MealsResource{}),
		chosenCategory:  observable.NewCell(""),
		searchQuery:     observable.NewCell(""),
		selectedMeal:    observable.NewCell[*mealdb.MealDetail](nil),
		savedLocations:  observable.NewCell[[]catalog.SavedLocation](nil),
		currentLocation: observable.NewCell[*CurrentLocation](nil),
	}
	vm.initialLoad = vm.loadCategories()
	return vm
}

// ID identifies the session in logs.
func (vm *ViewModel) ID() string { return vm.id }

// InitialLoad is the category fetch started by New.
func (vm *ViewModel) InitialLoad() *Task { return vm.initialLoad }

// Cells exposed to the presentation layer. They are read-only by type.

func (vm *ViewModel) Categories() observable.ReadOnly[CategoriesResource] {
	return vm.categories
}

func (vm *ViewModel) Meals() observable.ReadOnly[MealsResource] {
	return vm.meals
}

func (vm *ViewModel) ChosenCategory() observable.ReadOnly[string] {
	return vm.chosenCategory
}

func (vm *ViewModel) SearchQuery() observable.ReadOnly[string] {
	return vm.searchQuery
}

func (vm *ViewModel) SelectedMeal() observable.ReadOnly[*mealdb.MealDetail] {
	return vm.selectedMeal
}

func (vm *ViewModel) SavedLocations() observable.ReadOnly[[]catalog.SavedLocation] {
	return vm.savedLocations
}

func (vm *ViewModel) CurrentLocation() observable.ReadOnly[*CurrentLocation] {
	return vm.currentLocation
}

// SelectCategory makes name the chosen category and fetches its meals.
func (vm *ViewModel) SelectCategory(name string) *Task {
	vm.chosenCategory.Set(name)
	return vm.loadMeals(name)
}

// UpdateSearchQuery stores query. An empty query re-fetches the chosen
// category; anything else filters the last fetched meals locally,
// case-insensitively, leaving the loading and error flags alone.
func (vm *ViewModel) UpdateSearchQuery(query string) *Task {
	vm.searchQuery.Set(query)

	if query == "" {
		return vm.loadMeals(vm.chosenCategory.Get())
	}

	vm.mu.Lock()
	filtered := filterMeals(vm.fetchedMeals, query)
	vm.mu.Unlock()

	vm.meals.Update(func(r MealsResource) MealsResource { return r.WithResult(filtered) })
	return completedTask(nil)
}

// FetchMealDetail loads a meal into SelectedMeal. A failed fetch leaves the
// previous selection in place; the error is only reported on the task.
func (vm *ViewModel) FetchMealDetail(mealID string) *Task {
	task := newTask()
	go func() {
		detail, err := vm.repo.FetchMealDetail(vm.ctx, mealID)
		if err != nil {
			vm.logger.Debug("meal detail fetch failed", "meal_id", mealID, "error", err)
			task.finish(err)
			return
		}
		vm.selectedMeal.Set(detail)
		task.finish(nil)
	}()
	return task
}

// SaveLocation records a location in the repository and appends it to
// SavedLocations. There is no validation and no error path.
func (vm *ViewModel) SaveLocation(label string, latitude, longitude float64) {
	vm.repo.SaveLocation(label, latitude, longitude)
	loc := catalog.SavedLocation{Label: label, Latitude: latitude, Longitude: longitude}
	vm.savedLocations.Update(func(s []catalog.SavedLocation) []catalog.SavedLocation {
		out := make([]catalog.SavedLocation, len(s), len(s)+1)
		copy(out, s)
		return append(out, loc)
	})
}

// SaveSelectedMealLocation saves a location labelled with the selected
// meal's name. It reports false when no meal is selected.
func (vm *ViewModel) SaveSelectedMealLocation(latitude, longitude float64) bool {
	meal := vm.selectedMeal.Get()
	if meal == nil {
		return false
	}
	vm.SaveLocation(meal.Name, latitude, longitude)
	return true
}

// SetCurrentLocation overwrites the map-pin candidate.
func (vm *ViewModel) SetCurrentLocation(latitude, longitude float64, isLoading bool) {
	vm.currentLocation.Set(&CurrentLocation{Latitude: latitude, Longitude: longitude, IsLoading: isLoading})
}

// Close ends the session. In-flight fetches are cancelled and any write
// they attempt afterwards is dropped.
func (vm *ViewModel) Close() {
	vm.cancel()
	vm.categories.Close()
	vm.meals.Close()
	vm.chosenCategory.Close()
	vm.searchQuery.Close()
	vm.selectedMeal.Close()
	vm.savedLocations.Close()
	vm.currentLocation.Close()
}

func (vm *ViewModel) loadCategories() *Task {
	task := newTask()
	vm.categories.Update(CategoriesResource.Loading)
	go func() {
		resp, err := vm.repo.FetchAllCategories(vm.ctx)
		if err != nil {
			vm.logger.Warn("failed to fetch categories", "error", err)
			vm.categories.Update(func(r CategoriesResource) CategoriesResource { return r.Failed(err) })
			task.finish(err)
			return
		}

		var categories []mealdb.Category
		if resp != nil {
			categories = resp.Categories
		}
		vm.categories.Update(func(r CategoriesResource) CategoriesResource { return r.Succeeded(categories) })
		task.finish(nil)
	}()
	return task
}

func (vm *ViewModel) loadMeals(category string) *Task {
	task := newTask()
	vm.meals.Update(MealsResource.Loading)
	go func() {
		resp, err := vm.repo.FetchMealsByCategory(vm.ctx, category)
		if err != nil {
			vm.logger.Warn("failed to fetch meals", "category", category, "error", err)
			vm.meals.Update(func(r MealsResource) MealsResource { return r.Failed(err) })
			task.finish(err)
			return
		}

		var meals []mealdb.Meal
		if resp != nil {
			meals = resp.Meals
		}
		vm.mu.Lock()
		vm.fetchedMeals = meals
		vm.mu.Unlock()

		vm.meals.Update(func(r MealsResource) MealsResource { return r.Succeeded(meals) })
		task.finish(nil)
	}()
	return task
}

func filterMeals(meals []mealdb.Meal, query string) []mealdb.Meal {
	q := strings.ToLower(query)
	filtered := []mealdb.Meal{}
	for _, m := range meals {
		if strings.Contains(strings.ToLower(m.Name), q) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
