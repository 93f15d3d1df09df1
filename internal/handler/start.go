package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/campusdesk/internal/telegram"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.start(ctx, b, update)
}

func (h *Handler) start(ctx context.Context, s telegram.Sender, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := fmt.Sprintf(
		"👋 Hi! I'm the %s.\n\n"+
			"Ask me about courses, deadlines, and %s services.\n\n"+
			"/end starts a new conversation.",
		h.cfg.AssistantName, h.cfg.OrganizationName,
	)
	if err := telegram.SendText(ctx, s, update.Message.Chat.ID, text); err != nil {
		slog.Error("send start message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
