package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/domain"
	"github.com/set-night/campusdesk/internal/telegram"
)

func telegramSessionID(chatID int64) string {
	return fmt.Sprintf("tg_%d", chatID)
}

// HandleText runs a dialogue turn for a plain text message.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.text(ctx, b, update)
}

func (h *Handler) text(ctx context.Context, s telegram.Sender, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || strings.HasPrefix(msg.Text, "/") {
		return
	}
	chatID := msg.Chat.ID

	stopTyping := telegram.StartTyping(ctx, s, chatID)
	reply, err := h.dialogue.HandleTurn(ctx, telegramSessionID(chatID), msg.Text)
	stopTyping()

	if err != nil {
		text := "❌ Sorry, something went wrong."
		switch {
		case errors.Is(err, domain.ErrMessageTooLong):
			text = fmt.Sprintf("✂️ Your message is too long. Please keep it under %d characters.", config.MaxMessageLen)
		case errors.Is(err, domain.ErrEmptyMessage):
			return
		}
		slog.Warn("telegram turn rejected", "chat_id", chatID, "error", err)
		_ = telegram.SendText(ctx, s, chatID, text)
		return
	}

	if err := telegram.SendReply(ctx, s, chatID, reply, msg.ID); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}
