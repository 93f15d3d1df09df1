package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrorReporter receives recovered panics.
type ErrorReporter interface {
	ReportError(err error, where string)
}

// Recover returns middleware that recovers from panics in bot handlers.
// reporter may be nil.
func Recover(reporter ErrorReporter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in handler",
						"panic", r,
						"update_id", update.ID,
						"stack", string(debug.Stack()),
					)
					if reporter != nil {
						reporter.ReportError(fmt.Errorf("panic: %v", r), "telegram update")
					}
				}
			}()
			next(ctx, b, update)
		}
	}
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(err error, where string)

func (f ReporterFunc) ReportError(err error, where string) { f(err, where) }
