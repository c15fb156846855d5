// Package telegram is a chat front-end over the same planner, search and
// session machinery the web server uses. Sessions are keyed per chat so a
// conversation carries its own profile and targets.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"diet-plan-assistant/internal/config"
	"diet-plan-assistant/internal/metrics"
	"diet-plan-assistant/internal/nutrition"
	"diet-plan-assistant/internal/planner"
	"diet-plan-assistant/internal/session"
	"diet-plan-assistant/internal/usda"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API, the diet planner, and food search.
type Bot struct {
	api          *tgbotapi.BotAPI
	planner      *planner.Planner
	searcher     planner.FoodSearcher
	sessions     *session.Store
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	p *planner.Planner,
	searcher planner.FoodSearcher,
	sessions *session.Store,
	metricsStore *metrics.Store,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, _ := tgbotapi.NewWebhook(webhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		planner:      p,
		searcher:     searcher,
		sessions:     sessions,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	if b.cfg.TelegramAllowUserID != 0 && update.Message.From.ID != b.cfg.TelegramAllowUserID {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

// sessionKey ties a chat to its own entry in the shared store.
func sessionKey(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	cmd, args := splitCommand(text)

	switch cmd {
	case "/start", "/help":
		b.reply(msg.Chat.ID, startMessage)
	case "/profile":
		b.handleProfile(msg.Chat.ID, args)
	case "/macros":
		b.handleMacros(msg.Chat.ID)
	case "/plan":
		b.handlePlan(msg.Chat.ID)
	case "/food":
		b.handleFood(msg.Chat.ID, args)
	case "/cuisine":
		b.handleCuisine(msg.Chat.ID, args)
	case "/restart":
		b.sessions.Clear(sessionKey(msg.Chat.ID))
		b.reply(msg.Chat.ID, "🔄 Session cleared. Send /profile to start over.")
	case "/metrics":
		b.handleMetricsRequest(msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Send /help to see what I can do.")
	}
}

const startMessage = `👋 *Diet Plan Assistant*

I calculate your daily calorie and macro targets and build a one-day meal plan around them.

• /profile <age> <weight-kg> <height-cm> <sex> <activity> <goal> [cuisine]
• /macros — show your current targets
• /plan — generate a meal plan
• /food <query> — look up nutrition facts
• /cuisine <name> — change cuisine preference
• /restart — forget everything about you

Example: ` + "`/profile 30 80 180 male moderate lose italian`"

func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	// Commands in groups arrive as /cmd@botname.
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	return cmd, fields[1:]
}

func (b *Bot) handleProfile(chatID int64, args []string) {
	if len(args) < 6 {
		b.reply(chatID, "Usage: `/profile <age> <weight-kg> <height-cm> <sex> <activity> <goal> [cuisine]`\nExample: `/profile 30 80 180 male moderate lose italian`")
		return
	}

	input := nutrition.ProfileInput{
		Age:      args[0],
		Weight:   args[1],
		Height:   args[2],
		Sex:      args[3],
		Activity: args[4],
		Goal:     args[5],
	}
	cuisine := "italian"
	if len(args) > 6 {
		cuisine = strings.ToLower(args[6])
	}

	profile, err := nutrition.ParseProfile(input)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ %v", err))
		return
	}
	if !planner.ValidCuisine(cuisine) {
		b.reply(chatID, fmt.Sprintf("❌ Unknown cuisine %q. Options: %s", cuisine, strings.Join(planner.Cuisines(), ", ")))
		return
	}

	macros, err := nutrition.ComputeMacros(profile)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ %v", err))
		return
	}

	key := sessionKey(chatID)
	b.sessions.SetProfile(key, profile)
	if err := b.sessions.SetMacros(key, macros); err != nil {
		log.Printf("failed to store macros for chat %d: %v", chatID, err)
		b.reply(chatID, "❌ Something went wrong, please try again.")
		return
	}
	if err := b.sessions.SetCuisine(key, cuisine); err != nil {
		log.Printf("failed to store cuisine for chat %d: %v", chatID, err)
	}

	b.reply(chatID, "✅ *Profile saved!*\n\n"+formatMacros(macros)+"\n\nSend /plan to get a meal plan.")
}

func (b *Bot) handleMacros(chatID int64) {
	macros, err := b.sessions.Macros(sessionKey(chatID))
	if err != nil {
		b.reply(chatID, "I don't know you yet. Send /profile first.")
		return
	}
	b.reply(chatID, formatMacros(macros))
}

func (b *Bot) handlePlan(chatID int64) {
	key := sessionKey(chatID)
	profile, err := b.sessions.Profile(key)
	if err != nil {
		b.reply(chatID, "I don't know you yet. Send /profile first.")
		return
	}
	macros, err := b.sessions.Macros(key)
	if err != nil {
		b.reply(chatID, "I don't know you yet. Send /profile first.")
		return
	}
	cuisine, err := b.sessions.Cuisine(key)
	if err != nil || cuisine == "" {
		cuisine = "italian"
	}

	statusText := "🧑‍🍳 *Thinking...* \n(Looking up foods and generating your plan)"
	replyMsg := tgbotapi.NewMessage(chatID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	plan, err := b.planner.GeneratePlan(ctx, profile, macros, cuisine)

	if b.metricsStore != nil {
		if err := b.metricsStore.RecordMeta(plan.Meta); err != nil {
			log.Printf("failed to record metrics: %v", err)
		}
	}

	var finalText string
	if err != nil {
		log.Printf("Error generating plan for chat %d: %v", chatID, err)
		finalText = "❌ Could not generate a plan right now, please try again."
	} else {
		finalText = plan.Text
	}
	edit := tgbotapi.NewEditMessageText(chatID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func (b *Bot) handleFood(chatID int64, args []string) {
	query := strings.Join(args, " ")
	if query == "" {
		b.reply(chatID, "Usage: `/food <query>`\nExample: `/food chicken breast`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	foods, err := b.searcher.Search(ctx, query, 5)
	if err != nil {
		log.Printf("food search failed for chat %d: %v", chatID, err)
		b.reply(chatID, "❌ Food search is unavailable right now, please try again.")
		return
	}
	if len(foods) == 0 {
		b.reply(chatID, fmt.Sprintf("No foods found for %q.", query))
		return
	}
	b.reply(chatID, formatFoods(foods))
}

func (b *Bot) handleCuisine(chatID int64, args []string) {
	if len(args) == 0 {
		b.reply(chatID, "Options: "+strings.Join(planner.Cuisines(), ", "))
		return
	}
	cuisine := strings.ToLower(args[0])
	if !planner.ValidCuisine(cuisine) {
		b.reply(chatID, fmt.Sprintf("❌ Unknown cuisine %q. Options: %s", cuisine, strings.Join(planner.Cuisines(), ", ")))
		return
	}
	if err := b.sessions.SetCuisine(sessionKey(chatID), cuisine); err != nil {
		b.reply(chatID, "I don't know you yet. Send /profile first.")
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ Cuisine updated to *%s*.", cuisine))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth()

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))

	b.reply(chatID, sb.String())
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func formatMacros(m nutrition.Macros) string {
	var sb strings.Builder
	sb.WriteString("🎯 *Daily Targets*\n\n")
	sb.WriteString(fmt.Sprintf("• Calories: %d kcal\n", m.Calories))
	sb.WriteString(fmt.Sprintf("• Protein: %dg\n", m.ProteinG))
	sb.WriteString(fmt.Sprintf("• Carbs: %dg\n", m.CarbsG))
	sb.WriteString(fmt.Sprintf("• Fats: %dg\n", m.FatsG))
	return sb.String()
}

func formatFoods(foods []usda.Food) string {
	var sb strings.Builder
	sb.WriteString("🔍 *Nutrition per 100g*\n\n")
	for _, f := range foods {
		sb.WriteString(fmt.Sprintf("*%s*\n", f.Name))
		sb.WriteString(fmt.Sprintf("  %s kcal · %sg protein · %sg carbs · %sg fat\n",
			formatValue(f.Nutrients.Calories),
			formatValue(f.Nutrients.Protein),
			formatValue(f.Nutrients.Carbs),
			formatValue(f.Nutrients.Fat)))
	}
	return sb.String()
}

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}
