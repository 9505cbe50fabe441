package telegram

import (
	"fmt"
	"strings"

	"meal-catalog/internal/catalog"
	"meal-catalog/internal/mealdb"
	"meal-catalog/internal/metrics"
	"meal-catalog/internal/viewmodel"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxListedMeals caps how many meals go into one message.
const maxListedMeals = 30

const helpText = `🍽 *Meal Catalog*

/categories - list meal categories
/category <name> - list meals in a category
/search <text> - filter the current list (empty to reset)
/meal <id> - show a meal
/locations - show saved locations

Share a location after opening a meal to pin it.`

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatCategories(res viewmodel.CategoriesResource) string {
	if res.IsLoading {
		return "⏳ Loading categories..."
	}
	if res.IsError {
		return fmt.Sprintf("❌ *Could not load categories:* %s", esc(res.Error))
	}
	if len(res.Result) == 0 {
		return "_No categories found_"
	}

	var sb strings.Builder
	sb.WriteString("📂 *Categories*\n\n")
	for _, c := range res.Result {
		sb.WriteString(fmt.Sprintf("• %s", esc(c.Name)))
		if c.HasSavedLocation() {
			sb.WriteString(fmt.Sprintf(" 📍 %.4f, %.4f", c.SavedLatitude, c.SavedLongitude))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nPick one with /category <name>")
	return sb.String()
}

func formatMeals(category, query string, res viewmodel.MealsResource) string {
	var sb strings.Builder
	title := category
	if title == "" {
		title = "All"
	}
	sb.WriteString(fmt.Sprintf("🍲 *%s*", esc(title)))
	if query != "" {
		sb.WriteString(fmt.Sprintf(" (search: _%s_)", esc(query)))
	}
	sb.WriteString("\n\n")

	switch {
	case res.IsLoading:
		sb.WriteString("⏳ Loading meals...\n")
	case res.IsError:
		sb.WriteString(fmt.Sprintf("❌ *Could not load meals:* %s\n", esc(res.Error)))
	}

	if len(res.Result) == 0 {
		sb.WriteString("_No meals found_")
		return sb.String()
	}

	for i, m := range res.Result {
		if i == maxListedMeals {
			sb.WriteString(fmt.Sprintf("…and %d more. Narrow it with /search\n", len(res.Result)-maxListedMeals))
			break
		}
		sb.WriteString(fmt.Sprintf("• %s - /meal %s\n", esc(m.Name), m.ID))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMealDetail(d *mealdb.MealDetail) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍽 *%s*\n", esc(d.Name)))
	sb.WriteString(fmt.Sprintf("_%s · %s_\n", esc(d.Category), esc(d.Area)))
	if len(d.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags: %s\n", esc(strings.Join(d.Tags, ", "))))
	}

	if len(d.Ingredients) > 0 {
		sb.WriteString("\n*Ingredients*\n")
		for _, ing := range d.Ingredients {
			if ing.Measure != "" {
				sb.WriteString(fmt.Sprintf("• %s %s\n", esc(ing.Measure), esc(ing.Name)))
			} else {
				sb.WriteString(fmt.Sprintf("• %s\n", esc(ing.Name)))
			}
		}
	}

	if d.Instructions != "" {
		sb.WriteString("\n*Instructions*\n")
		sb.WriteString(esc(d.Instructions))
		sb.WriteString("\n")
	}
	if d.YoutubeURL != "" {
		sb.WriteString(fmt.Sprintf("\n▶️ %s\n", esc(d.YoutubeURL)))
	}
	sb.WriteString("\nShare a location to pin this meal.")
	return sb.String()
}

func formatLocations(locs []catalog.SavedLocation) string {
	if len(locs) == 0 {
		return "_No saved locations yet_"
	}
	var sb strings.Builder
	sb.WriteString("📍 *Saved Locations*\n\n")
	for _, l := range locs {
		sb.WriteString(fmt.Sprintf("• %s: %.5f, %.5f\n", esc(l.Label), l.Latitude, l.Longitude))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.SysHealth, sessions int) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Catalog Fetches*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d fetches, %d failed, %.0fms avg\n", d.Date, d.TotalFetches, d.Failures, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Sessions: %d\n", sessions))
	sb.WriteString(fmt.Sprintf("• Host: %d%% memory, %d%% disk\n", health.HostMemory, health.DataDiskUsage))
	sb.WriteString(fmt.Sprintf("• Metrics DB: %s", health.DBSize))
	return sb.String()
}
