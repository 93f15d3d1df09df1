package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/campusdesk/internal/config"
)

// Sender is the subset of *bot.Bot used to deliver replies.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

// SendReply delivers an assistant reply, splitting it to Telegram's size
// limit. Parts that fail to parse as Markdown are resent as plain text.
func SendReply(ctx context.Context, s Sender, chatID int64, text string, replyToID int) error {
	parts := SplitMessage(FixMarkdown(text), config.MaxTelegramMessageLen)

	for i, part := range parts {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      part,
			ParseMode: models.ParseModeMarkdownV1,
		}
		if i == 0 && replyToID != 0 {
			params.ReplyParameters = &models.ReplyParameters{MessageID: replyToID}
		}

		if _, err := s.SendMessage(ctx, params); err != nil {
			slog.Warn("markdown send failed, falling back to plain text", "chat_id", chatID, "error", err)
			params.ParseMode = ""
			if _, err := s.SendMessage(ctx, params); err != nil {
				return fmt.Errorf("send reply part %d/%d: %w", i+1, len(parts), err)
			}
		}
	}
	return nil
}

// SendText sends a short plain message.
func SendText(ctx context.Context, s Sender, chatID int64, text string) error {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	return err
}

// StartTyping shows the typing indicator until the returned cancel is called.
func StartTyping(ctx context.Context, s Sender, chatID int64) context.CancelFunc {
	ctx, cancel := context.WithCancel(ctx)
	send := func() {
		_, _ = s.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: models.ChatActionTyping,
		})
	}
	go func() {
		ticker := time.NewTicker(config.TypingInterval)
		defer ticker.Stop()
		send()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			}
		}
	}()
	return cancel
}
