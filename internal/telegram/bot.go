// Package telegram is the chat transport: a long-polling bot that hands every
// incoming message to the app dispatcher and delivers its reply.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vidsage/internal/app"
	"vidsage/internal/config"
	"vidsage/internal/observability"
)

const defaultMaxMessageLen = 4000

// Bot polls Telegram for updates and dispatches them. Each message is handled
// on its own goroutine; per-user ordering is enforced by the app layer.
type Bot struct {
	api           *tgbotapi.BotAPI
	service       *app.Service
	updateTimeout int
	maxMessageLen int
	dropPending   bool
}

// NewBot authenticates with Telegram (DI constructor).
func NewBot(cfg *config.TelegramConfig, service *app.Service) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("authenticate bot: %w", err)
	}

	maxLen := cfg.MaxMessageLen
	if maxLen <= 0 {
		maxLen = defaultMaxMessageLen
	}

	return &Bot{
		api:           api,
		service:       service,
		updateTimeout: cfg.UpdateTimeout,
		maxMessageLen: maxLen,
		dropPending:   cfg.DropPendingOld,
	}, nil
}

// Run polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	logger := observability.FromContext(ctx)
	logger.Info("telegram bot started",
		observability.String("username", b.api.Self.UserName))

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = b.updateTimeout
	if b.dropPending {
		// Skip the backlog accumulated while the bot was down.
		updateCfg.Offset = -1
	}

	updates := b.api.GetUpdatesChan(updateCfg)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			logger.Info("telegram bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
				continue
			}
			go b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	logger := observability.FromContext(ctx)
	userID := strconv.FormatInt(msg.From.ID, 10)

	// Show "typing" while the pipeline works; delivery failures are harmless.
	if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		logger.Debug("chat action failed", observability.Error(err))
	}

	reply := b.service.HandleMessage(ctx, userID, msg.Text)

	for _, part := range splitMessage(reply, b.maxMessageLen) {
		out := tgbotapi.NewMessage(msg.Chat.ID, part)
		out.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.api.Send(out); err != nil {
			// Markdown from the model can be malformed; retry as plain text.
			out.ParseMode = ""
			if _, err := b.api.Send(out); err != nil {
				logger.Error("message delivery failed",
					observability.String("user_id", userID),
					observability.Error(err))
				return
			}
		}
	}
}

// splitMessage breaks long replies into transport-sized parts, preferring
// paragraph and line boundaries over mid-sentence cuts.
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > maxLen {
		cut := strings.LastIndex(text[:maxLen], "\n\n")
		if cut < maxLen/2 {
			cut = strings.LastIndex(text[:maxLen], "\n")
		}
		if cut < maxLen/2 {
			cut = strings.LastIndex(text[:maxLen], " ")
		}
		if cut < maxLen/2 {
			cut = maxLen
		}
		parts = append(parts, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
