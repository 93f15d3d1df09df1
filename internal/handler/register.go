package handler

import (
	"github.com/go-telegram/bot"
)

// RegisterBot registers the Telegram command handlers. Plain text goes
// through the bot's default handler, see HandleText.
func (h *Handler) RegisterBot(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/end", bot.MatchTypePrefix, h.handleEnd)
}
