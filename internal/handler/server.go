package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/set-night/campusdesk/internal/domain"
	"github.com/set-night/campusdesk/internal/middleware"
)

// NewServer builds the echo instance with middleware and every route.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h.RegisterRoutes(e)

	if h.cfg != nil && h.cfg.StaticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Skipper: func(c echo.Context) bool { return c.Request().Method != http.MethodGet },
			Root:    h.cfg.StaticDir,
			Index:   "index.html",
			HTML5:   true,
		}))
	}
	return e
}

// RegisterRoutes mounts the chat, call, voice and knowledge endpoints.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Chat
	e.POST("/chat", h.chat)
	e.GET("/conversation/:id", h.getConversation)
	e.DELETE("/conversation/:id", h.clearConversation)

	// Browser calls
	e.POST("/start_call", h.startCall)
	e.POST("/end_call", h.endCall)

	// Telephony webhooks
	e.GET("/voice", h.voiceReady)
	e.POST("/voice", h.voiceStart)
	e.POST("/process_speech", h.processSpeech)
	e.POST("/voice/status", h.voiceStatus)
	e.GET("/test-voice", h.testVoice)
	e.POST("/test-voice", h.testVoice)

	// Knowledge
	e.POST("/update-websites", h.updateWebsites)
	e.POST("/voice/update-websites", h.updateWebsites)
}

// httpError maps a classified domain error to an HTTP error.
func httpError(err error) error {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case domain.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return err
	}
}

func errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	if c.Response().Committed {
		return
	}
	req := c.Request()
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "status", code, "method", req.Method, "path", req.URL.Path, "remote_ip", c.RealIP(), "error", err)
	}
	if req.Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}
