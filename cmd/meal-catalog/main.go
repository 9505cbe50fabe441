package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"meal-catalog/internal/catalog"
	"meal-catalog/internal/config"
	"meal-catalog/internal/database"
	"meal-catalog/internal/mealdb"
	"meal-catalog/internal/metrics"
	"meal-catalog/internal/viewmodel"
)

const commandTimeout = time.Minute

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	repo := catalog.NewRepository(mealdb.NewClient(cfg), metricsStore, logger)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch os.Args[1] {
	case "categories":
		vm := viewmodel.New(repo, logger)
		defer vm.Close()
		if err := vm.InitialLoad().Wait(ctx); err != nil {
			log.Fatalf("Failed to fetch categories: %v", err)
		}
		for _, c := range vm.Categories().Get().Result {
			fmt.Printf("%-4s %s\n", c.ID, c.Name)
		}
	case "meals":
		mealsCmd := flag.NewFlagSet("meals", flag.ExitOnError)
		search := mealsCmd.String("search", "", "Filter meals by name (case-insensitive)")
		mealsCmd.Parse(os.Args[2:])
		if mealsCmd.NArg() != 1 {
			fmt.Println("Usage: meal-catalog meals [-search text] <category>")
			os.Exit(1)
		}

		vm := viewmodel.New(repo, logger)
		defer vm.Close()
		if err := vm.SelectCategory(mealsCmd.Arg(0)).Wait(ctx); err != nil {
			log.Fatalf("Failed to fetch meals: %v", err)
		}
		if *search != "" {
			vm.UpdateSearchQuery(*search).Wait(ctx)
		}
		meals := vm.Meals().Get().Result
		for _, m := range meals {
			fmt.Printf("%-6s %s\n", m.ID, m.Name)
		}
		fmt.Printf("%d meal(s)\n", len(meals))
	case "meal":
		if len(os.Args) != 3 {
			fmt.Println("Usage: meal-catalog meal <id>")
			os.Exit(1)
		}
		detail, err := repo.FetchMealDetail(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Failed to fetch meal: %v", err)
		}
		if detail == nil {
			fmt.Printf("No meal found with id %s\n", os.Args[2])
			os.Exit(1)
		}
		printMeal(detail)
	case "usage":
		usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := usageCmd.Int("days", 7, "Report the last N days")
		usageCmd.Parse(os.Args[2:])

		usage, err := metricsStore.GetDailyUsage(*days)
		if err != nil {
			log.Fatalf("Failed to read usage: %v", err)
		}
		for _, d := range usage {
			fmt.Printf("%s  %4d fetches  %3d failed  %6.0fms avg\n", d.Date, d.TotalFetches, d.Failures, d.AvgLatencyMS)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := metricsStore.Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printMeal(d *mealdb.MealDetail) {
	fmt.Printf("%s (%s)\n", d.Name, d.ID)
	fmt.Printf("%s / %s\n", d.Category, d.Area)
	if len(d.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(d.Tags, ", "))
	}
	fmt.Println()
	for _, ing := range d.Ingredients {
		fmt.Printf("  - %s %s\n", ing.Measure, ing.Name)
	}
	if d.Instructions != "" {
		fmt.Printf("\n%s\n", d.Instructions)
	}
}

func printUsage() {
	fmt.Println("Usage: meal-catalog <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  categories                      List meal categories")
	fmt.Println("  meals [-search text] <category> List meals in a category")
	fmt.Println("  meal <id>                       Show a meal")
	fmt.Println("  usage [-days N]                 Show daily fetch metrics")
	fmt.Println("  metrics-cleanup [-days N]       Remove metrics older than N days")
}
