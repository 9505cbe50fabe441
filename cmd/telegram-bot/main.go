package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meal-catalog/internal/catalog"
	"meal-catalog/internal/config"
	"meal-catalog/internal/database"
	"meal-catalog/internal/mealdb"
	"meal-catalog/internal/metrics"
	"meal-catalog/internal/telegram"
	"meal-catalog/internal/viewmodel"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	janitorInterval  = 5 * time.Minute
	metricsRetention = 30
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 2. Metrics database
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)
	if n, err := metricsStore.Cleanup(metricsRetention); err != nil {
		logger.Warn("metrics cleanup failed", "error", err)
	} else if n > 0 {
		logger.Info("removed old metric records", "count", n)
	}

	// 3. Catalog layers, one view-model per chat
	repo := catalog.NewRepository(mealdb.NewClient(cfg), metricsStore, logger)
	sessions := telegram.NewSessions(func() *viewmodel.ViewModel {
		return viewmodel.New(repo, logger)
	}, telegram.DefaultSessionTTL)
	defer sessions.CloseAll()

	// 4. Telegram Bot
	bot, err := telegram.NewBot(cfg, sessions, metricsStore, logger)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go sessions.RunJanitor(ctx, janitorInterval, logger)

	// 5. Start Server with Graceful Shutdown
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	bot.Routes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
