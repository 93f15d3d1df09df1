package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/set-night/campusdesk/internal/domain"
)

const defaultSessionID = "default"

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

type conversationResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		req.SessionID = defaultSessionID
	}

	reply, err := h.dialogue.HandleTurn(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, chatResponse{Response: reply, SessionID: req.SessionID})
}

func (h *Handler) getConversation(c echo.Context) error {
	id := c.Param("id")
	return c.JSON(http.StatusOK, conversationResponse{
		SessionID: id,
		Messages:  h.sessions.History(id),
	})
}

func (h *Handler) clearConversation(c echo.Context) error {
	if !h.sessions.End(c.Param("id")) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Session not found"})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Conversation cleared"})
}
