package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"meal-catalog/internal/config"
	"meal-catalog/internal/metrics"
	"meal-catalog/internal/viewmodel"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	requestTimeout  = 30 * time.Second
	maxMessageRunes = 4000
	usageDays       = 7
)

// Sender delivers outgoing messages. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UsageReporter provides the daily fetch summary for /metrics.
type UsageReporter interface {
	GetDailyUsage(days int) ([]metrics.DailyUsage, error)
}

// Bot renders catalog sessions into Telegram chats.
type Bot struct {
	sender   Sender
	sessions *Sessions
	usage    UsageReporter
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewBot initializes the Telegram API and sets the webhook.
func NewBot(cfg *config.Config, sessions *Sessions, usage UsageReporter, logger *slog.Logger) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	b := newBot(api, sessions, usage, cfg, logger)
	b.logger.Info("authorized on telegram", "account", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	b.logger.Info("webhook set", "description", resp.Description)

	return b, nil
}

func newBot(sender Sender, sessions *Sessions, usage UsageReporter, cfg *config.Config, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		sender:   sender,
		sessions: sessions,
		usage:    usage,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Routes mounts the webhook and health endpoints.
func (b *Bot) Routes(r chi.Router) {
	r.Post("/webhook", b.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", "error", err)
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	if !b.isAllowed(msg.From.ID) {
		b.logger.Warn("unauthorized access attempt", "user_id", msg.From.ID, "username", msg.From.UserName)
		return
	}

	go b.processMessage(msg)
}

// isAllowed reports whether userID may use the bot. An empty allow list
// opens the bot to everyone.
func (b *Bot) isAllowed(userID int64) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	return slices.Contains(b.cfg.TelegramAllowedUserIDs, userID)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	chatID := msg.Chat.ID
	vm := b.sessions.Get(chatID, b.now())

	if msg.Location != nil {
		b.handleLocation(vm, chatID, msg.Location)
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "categories":
		b.handleCategories(ctx, vm, chatID)
	case "category":
		b.handleCategory(ctx, vm, chatID, args)
	case "search":
		b.handleSearch(ctx, vm, chatID, args)
	case "meal":
		b.handleMeal(ctx, vm, chatID, args)
	case "locations":
		b.reply(chatID, formatLocations(vm.SavedLocations().Get()))
	case "metrics":
		b.handleMetrics(chatID, msg.From.ID)
	default:
		b.reply(chatID, helpText)
	}
}

func (b *Bot) handleCategories(ctx context.Context, vm *viewmodel.ViewModel, chatID int64) {
	if err := vm.InitialLoad().Wait(ctx); err != nil {
		b.logger.Debug("category load finished with error", "chat_id", chatID, "error", err)
	}
	b.reply(chatID, formatCategories(vm.Categories().Get()))
}

func (b *Bot) handleCategory(ctx context.Context, vm *viewmodel.ViewModel, chatID int64, name string) {
	if name == "" {
		b.reply(chatID, "Usage: /category <name>")
		return
	}
	if err := vm.SelectCategory(name).Wait(ctx); err != nil {
		b.logger.Debug("meals load finished with error", "chat_id", chatID, "category", name, "error", err)
	}
	b.replyMeals(vm, chatID)
}

func (b *Bot) handleSearch(ctx context.Context, vm *viewmodel.ViewModel, chatID int64, query string) {
	if err := vm.UpdateSearchQuery(query).Wait(ctx); err != nil {
		b.logger.Debug("search finished with error", "chat_id", chatID, "query", query, "error", err)
	}
	b.replyMeals(vm, chatID)
}

func (b *Bot) replyMeals(vm *viewmodel.ViewModel, chatID int64) {
	b.reply(chatID, formatMeals(vm.ChosenCategory().Get(), vm.SearchQuery().Get(), vm.Meals().Get()))
}

func (b *Bot) handleMeal(ctx context.Context, vm *viewmodel.ViewModel, chatID int64, mealID string) {
	if mealID == "" {
		b.reply(chatID, "Usage: /meal <id>")
		return
	}

	// Failures are not surfaced; the chat only sees whether the meal is selected.
	_ = vm.FetchMealDetail(mealID).Wait(ctx)

	detail := vm.SelectedMeal().Get()
	if detail == nil || detail.ID != mealID {
		b.reply(chatID, fmt.Sprintf("_No details found for meal %s_", esc(mealID)))
		return
	}
	b.reply(chatID, formatMealDetail(detail))
}

func (b *Bot) handleLocation(vm *viewmodel.ViewModel, chatID int64, loc *tgbotapi.Location) {
	vm.SetCurrentLocation(loc.Latitude, loc.Longitude, false)

	meal := vm.SelectedMeal().Get()
	if meal == nil || !vm.SaveSelectedMealLocation(loc.Latitude, loc.Longitude) {
		b.reply(chatID, "Open a meal with /meal <id> before sharing a location.")
		return
	}
	b.reply(chatID, fmt.Sprintf("📍 Pinned *%s* at %.5f, %.5f", esc(meal.Name), loc.Latitude, loc.Longitude))
}

func (b *Bot) handleMetrics(chatID, userID int64) {
	if userID != b.cfg.AdminTelegramID {
		b.reply(chatID, "⛔ *Access Denied*: Admin only.")
		return
	}
	if b.usage == nil {
		b.reply(chatID, "_Metrics are disabled_")
		return
	}

	usage, err := b.usage.GetDailyUsage(usageDays)
	if err != nil {
		b.logger.Error("failed to fetch usage", "error", err)
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath)
	b.reply(chatID, formatMetrics(usage, health, b.sessions.Count()))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageRunes))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Warn("failed to send message", "chat_id", chatID, "error", err)
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
