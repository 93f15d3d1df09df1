package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/campusdesk/internal/telegram"
)

func (h *Handler) handleEnd(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.end(ctx, b, update)
}

func (h *Handler) end(ctx context.Context, s telegram.Sender, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := "🔄 Conversation cleared. Ask a new question any time."
	if !h.sessions.End(telegramSessionID(chatID)) {
		text = "There is no active conversation."
	}
	if err := telegram.SendText(ctx, s, chatID, text); err != nil {
		slog.Error("send end message", "error", err, "chat_id", chatID)
	}
}
