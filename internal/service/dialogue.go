package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/domain"
)

// Replies substituted when the model cannot answer.
const (
	FallbackReply    = "Sorry, I'm having trouble generating a response right now. Please try again."
	UnavailableReply = "AI service is currently unavailable. Please try again later."
)

// Model produces an assistant reply for an ordered message list whose first
// entry is the system context.
type Model interface {
	Generate(ctx context.Context, messages []domain.Message) (string, error)
}

// PromptSource yields the current knowledge prompt.
type PromptSource interface {
	CurrentPrompt() string
}

// ErrorReporter forwards absorbed failures to operators.
type ErrorReporter interface {
	ReportError(err error, where string)
}

// DialogueService runs one request/response cycle for any channel.
type DialogueService struct {
	sessions  *SessionStore
	knowledge PromptSource
	model     Model
	reporter  ErrorReporter
	timeout   time.Duration
}

// NewDialogueService wires the orchestrator. model may be nil when no
// provider credential is configured; turns then get UnavailableReply.
func NewDialogueService(sessions *SessionStore, knowledge PromptSource, model Model, reporter ErrorReporter) *DialogueService {
	return &DialogueService{
		sessions:  sessions,
		knowledge: knowledge,
		model:     model,
		reporter:  reporter,
		timeout:   config.RequestTimeout,
	}
}

// ValidateMessage checks an already trimmed user message.
func ValidateMessage(text string) error {
	if text == "" {
		return domain.Validation("handle turn", domain.ErrEmptyMessage)
	}
	if utf8.RuneCountInString(text) > config.MaxMessageLen {
		return domain.Validation("handle turn", domain.ErrMessageTooLong)
	}
	return nil
}

// HandleTurn records the user message, asks the model with the current
// knowledge prompt plus the full history, records and returns the reply.
// Only validation failures are returned; model failures are replaced with
// a fallback reply.
func (d *DialogueService) HandleTurn(ctx context.Context, sessionID, userText string) (string, error) {
	text := strings.TrimSpace(userText)
	if err := ValidateMessage(text); err != nil {
		turnsTotal.WithLabelValues("rejected").Inc()
		return "", err
	}

	d.sessions.Append(sessionID, domain.RoleUser, text)

	prompt := d.knowledge.CurrentPrompt()
	history := d.sessions.History(sessionID)
	messages := make([]domain.Message, 0, len(history)+1)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: prompt})
	messages = append(messages, history...)

	reply := d.generate(ctx, sessionID, messages)
	d.sessions.Append(sessionID, domain.RoleAssistant, reply)
	return reply, nil
}

func (d *DialogueService) generate(ctx context.Context, sessionID string, messages []domain.Message) string {
	if d.model == nil {
		turnsTotal.WithLabelValues("unavailable").Inc()
		return UnavailableReply
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	reply, err := d.callModel(ctx, messages)
	modelLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		turnsTotal.WithLabelValues("fallback").Inc()
		err = domain.Collaborator("generate reply", err)
		slog.Error("generate reply", "error", err, "session_id", sessionID, "timed_out", ctx.Err() != nil)
		d.report(err, "generate reply for "+sessionID)
		return FallbackReply
	}

	turnsTotal.WithLabelValues("ok").Inc()
	return reply
}

// callModel turns a panicking provider into an ordinary error.
func (d *DialogueService) callModel(ctx context.Context, messages []domain.Message) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panic: %v", r)
		}
	}()
	return d.model.Generate(ctx, messages)
}

func (d *DialogueService) report(err error, where string) {
	if d.reporter != nil {
		d.reporter.ReportError(err, where)
	}
}
