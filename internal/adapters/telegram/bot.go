// Package telegram binds Telegram commands and messages to the chat service.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/stoalabs/ratebot/internal/app/chat"
	"github.com/stoalabs/ratebot/internal/domain"
	"github.com/stoalabs/ratebot/internal/observability"
)

const (
	// activeMarker wraps the active session name in /ls output.
	activeMarker = "*"

	pollTimeoutSeconds = 30
)

type Bot struct {
	api *tgbotapi.BotAPI
	svc *chat.Service
}

func New(token string, svc *chat.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, svc: svc}, nil
}

// Run starts the long-polling receive loop and blocks until ctx is
// cancelled. Each update is handled in its own goroutine; turns for the same
// user are serialized by the chat service.
func (b *Bot) Run(ctx context.Context) error {
	observability.Logger().Info("telegram bot started", "username", b.api.Self.UserName)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			observability.Logger().Info("telegram bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	ctx = observability.WithRequestID(ctx, uuid.NewString())
	userID := domain.UserID(strconv.FormatInt(msg.From.ID, 10))

	var reply string
	if msg.IsCommand() {
		reply = b.handleCommand(ctx, userID, msg)
	} else {
		reply = b.handleTurn(ctx, userID, msg.Text)
	}

	if reply == "" {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		observability.LoggerFromContext(ctx).Error("sending reply failed",
			"user_id", userID,
			"error", err,
		)
	}
}

func (b *Bot) handleCommand(ctx context.Context, userID domain.UserID, msg *tgbotapi.Message) string {
	arg := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "ns":
		name, err := b.svc.AddSession(ctx, userID, arg)
		if err != nil {
			observability.LoggerFromContext(ctx).Error("add session failed", "user_id", userID, "error", err)
			return "Could not create the session, please try again."
		}
		return "New session added: " + name

	case "cs":
		if arg == "" {
			return "Usage: /cs <session name>"
		}
		if err := b.svc.SwitchSession(ctx, userID, arg); err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return "No session named " + arg + ". Use /ls to see your sessions."
			}
			observability.LoggerFromContext(ctx).Error("switch session failed", "user_id", userID, "error", err)
			return "Could not switch session, please try again."
		}
		return "Switched to session: " + arg

	case "ls":
		return formatSessionList(b.svc.ListSessions(userID), b.svc.ActiveSessionName(userID))

	default:
		// unknown commands are treated as plain conversation, like any
		// other text
		return b.handleTurn(ctx, userID, msg.Text)
	}
}

func (b *Bot) handleTurn(ctx context.Context, userID domain.UserID, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	reply, err := b.svc.SendMessage(ctx, userID, text)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("turn failed", "user_id", userID, "error", err)
		return "Sorry, I could not get a reply right now. Please try again."
	}
	return reply
}

// formatSessionList renders one session name per line, the active one
// wrapped in the marker character on both sides.
func formatSessionList(names []string, active string) string {
	lines := make([]string, 0, len(names))
	for _, n := range names {
		if n == active {
			lines = append(lines, activeMarker+n+activeMarker)
		} else {
			lines = append(lines, n)
		}
	}
	return strings.Join(lines, "\n")
}
