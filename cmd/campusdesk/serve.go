package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/handler"
	"github.com/set-night/campusdesk/internal/middleware"
	"github.com/set-night/campusdesk/internal/service"
	"github.com/set-night/campusdesk/internal/telegram"
	"github.com/set-night/campusdesk/internal/twiml"
)

func serveCMD() *cobra.Command {
	var noTelegram bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, voice webhooks and the optional Telegram bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if noTelegram {
				cfg.TelegramBotToken = ""
			}
			return serve(cfg)
		},
	}
	cmd.Flags().BoolVar(&noTelegram, "no-telegram", false, "do not start the Telegram bot even if a token is set")
	return cmd
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := service.NewSessionStore(cfg.SessionMaxMessages, cfg.SessionIdleTTL)
	if err := service.RegisterSessionGauge(prometheus.DefaultRegisterer, sessions); err != nil {
		return fmt.Errorf("register session gauge: %w", err)
	}

	knowledge := buildKnowledge(ctx, cfg, cfg.WebsiteURLs)

	model, err := newModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	// Handler and notifier pointers for use in bot closures
	var h *handler.Handler
	var ops *telegram.OpsNotifier

	var b *bot.Bot
	if cfg.TelegramBotToken != "" {
		b, err = bot.New(cfg.TelegramBotToken,
			bot.WithMiddlewares(
				middleware.Recover(middleware.ReporterFunc(func(err error, where string) {
					ops.ReportError(err, where)
				})),
				middleware.Logging(),
			),
			bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
				if h != nil {
					h.HandleText(ctx, b, update)
				}
			}),
		)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		ops = telegram.NewOpsNotifier(b, cfg)
	}

	dialogue := service.NewDialogueService(sessions, knowledge, model, ops)
	docs := twiml.NewBuilder(twiml.OptionsFromConfig(cfg))
	h = handler.New(handler.Deps{
		Cfg:       cfg,
		Sessions:  sessions,
		Dialogue:  dialogue,
		Knowledge: knowledge,
		Voice:     service.NewVoiceService(sessions, dialogue, docs),
		Docs:      docs,
	})
	e := handler.NewServer(h)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting http server", "addr", cfg.Addr())
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sessions.RunSweeper(gctx, config.SessionSweepInterval)
		return nil
	})

	if b != nil {
		h.RegisterBot(b)
		g.Go(func() error {
			slog.Info("starting telegram bot")
			b.Start(gctx)
			return nil
		})
	}

	err = g.Wait()
	slog.Info("stopped gracefully")
	return err
}
