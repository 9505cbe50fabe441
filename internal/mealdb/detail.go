package mealdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The API flattens ingredients into numbered columns.
const maxIngredients = 20

// Ingredient is one ingredient line of a meal.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// MealDetail is the full record returned by lookup.php.
type MealDetail struct {
	ID           string       `json:"idMeal"`
	Name         string       `json:"strMeal"`
	ThumbnailURL string       `json:"strMealThumb"`
	Category     string       `json:"strCategory"`
	Area         string       `json:"strArea"`
	Instructions string       `json:"strInstructions"`
	YoutubeURL   string       `json:"strYoutube"`
	SourceURL    string       `json:"strSource"`
	Tags         []string     `json:"-"`
	Ingredients  []Ingredient `json:"-"`
}

// UnmarshalJSON decodes the flat API record, splitting strTags and
// collecting the strIngredientN/strMeasureN pairs.
func (d *MealDetail) UnmarshalJSON(data []byte) error {
	type plain MealDetail
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Tags = splitTags(stringField(raw, "strTags"))
	for i := 1; i <= maxIngredients; i++ {
		name := strings.TrimSpace(stringField(raw, fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		p.Ingredients = append(p.Ingredients, Ingredient{
			Name:    name,
			Measure: strings.TrimSpace(stringField(raw, fmt.Sprintf("strMeasure%d", i))),
		})
	}

	*d = MealDetail(p)
	return nil
}

// stringField returns raw[key] when it is a string; null and missing become "".
func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
