// Package telegram runs the Telegram frontend over long polling.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/pbhm215/everyday-pda/assistant"
	"github.com/pbhm215/everyday-pda/store"
)

const (
	// answerTimeout bounds a single conversational turn.
	answerTimeout = 5 * time.Minute

	welcomeText = "Hallo! Verknüpfe zuerst dein Konto mit /start <benutzername>."
	linkedText  = "Konto verknüpft. Frag mich nach Aktien, News, Wetter, Mensa, Vorlesungen, Reisen, Hotels oder Flügen."
)

// Bot bridges Telegram chats to the assistant. Chat links live in memory
// only, so users re-link with /start after a restart.
type Bot struct {
	api          *tgbotapi.BotAPI
	orchestrator *assistant.Orchestrator
	store        *store.Store

	mu    sync.RWMutex
	chats map[string]int64 // username -> chat id
}

func NewBot(token string, orchestrator *assistant.Orchestrator, store *store.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Telegram bot")
	}

	return &Bot{
		api:          api,
		orchestrator: orchestrator,
		store:        store,
		chats:        make(map[string]int64),
	}, nil
}

// Start polls for updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	slog.Info("telegram bot started", slog.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("telegram bot stopped")
			return
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	chatID := message.Chat.ID

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	username, ok := b.usernameFor(chatID)
	if !ok {
		b.send(chatID, welcomeText)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, answerTimeout)
	defer cancel()

	response, err := b.orchestrator.Answer(ctx, text, username)
	if err != nil {
		slog.Error("telegram answer failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		b.send(chatID, fmt.Sprintf("Das hat leider nicht geklappt: %v", err))
		return
	}
	b.send(chatID, response)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		username := strings.TrimSpace(message.CommandArguments())
		if username == "" {
			b.send(message.Chat.ID, welcomeText)
			return
		}
		if _, err := b.store.GetUser(ctx, username); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				b.send(message.Chat.ID, fmt.Sprintf("Benutzer %q ist nicht registriert.", username))
				return
			}
			slog.Error("telegram user lookup failed", slog.String("error", err.Error()))
			b.send(message.Chat.ID, "Das hat leider nicht geklappt, versuch es später noch einmal.")
			return
		}

		b.mu.Lock()
		b.chats[username] = message.Chat.ID
		b.mu.Unlock()
		b.send(message.Chat.ID, linkedText)
	default:
		b.send(message.Chat.ID, welcomeText)
	}
}

// Notify pushes scheduled briefings to every linked chat.
func (b *Bot) Notify(ctx context.Context, summaries []assistant.UserSummary) {
	for _, summary := range summaries {
		if summary.Response == nil {
			continue
		}
		b.mu.RLock()
		chatID, ok := b.chats[summary.UserID]
		b.mu.RUnlock()
		if !ok {
			continue
		}
		b.send(chatID, *summary.Response)
	}
}

func (b *Bot) usernameFor(chatID int64) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for username, id := range b.chats {
		if id == chatID {
			return username, true
		}
	}
	return "", false
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Warn("telegram send failed", slog.String("error", err.Error()))
	}
}
