package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/set-night/campusdesk/internal/config"
)

// OpsNotifier posts operational errors to a Telegram chat topic. A zero
// chat id disables it.
type OpsNotifier struct {
	sender  Sender
	chatID  int64
	topicID int
	now     func() time.Time
}

func NewOpsNotifier(s Sender, cfg *config.Config) *OpsNotifier {
	return &OpsNotifier{
		sender:  s,
		chatID:  cfg.LogTelegramChatID,
		topicID: cfg.LogTopicError,
		now:     time.Now,
	}
}

// Enabled reports whether notifications are delivered anywhere.
func (n *OpsNotifier) Enabled() bool {
	return n != nil && n.sender != nil && n.chatID != 0
}

// ReportError implements service.ErrorReporter.
func (n *OpsNotifier) ReportError(err error, where string) {
	if !n.Enabled() || err == nil {
		return
	}
	n.post(fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		where, err.Error(), n.now().Format("2006-01-02 15:04:05")))
}

func (n *OpsNotifier) post(text string) {
	if len([]rune(text)) > config.MaxTelegramMessageLen {
		text = string([]rune(text)[:config.MaxTelegramMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:          n.chatID,
		Text:            FixMarkdown(text),
		ParseMode:       "Markdown",
		MessageThreadID: n.topicID,
	}
	if _, err := n.sender.SendMessage(ctx, params); err != nil {
		slog.Error("failed to send telegram ops message", "error", err)
	}
}
