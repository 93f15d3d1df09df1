package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type callRequest struct {
	SessionID string `json:"session_id"`
}

type callResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// startCall opens a fresh session for a browser voice call.
func (h *Handler) startCall(c echo.Context) error {
	id := "session_" + uuid.NewString()
	h.sessions.Create(id)
	slog.Info("started session", "session_id", id)
	return c.JSON(http.StatusOK, callResponse{Message: "Call started.", SessionID: id})
}

func (h *Handler) endCall(c echo.Context) error {
	var req callRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" || !h.sessions.End(req.SessionID) {
		return c.JSON(http.StatusNotFound, callResponse{Message: "Session not found"})
	}
	return c.JSON(http.StatusOK, callResponse{Message: "Call ended."})
}
