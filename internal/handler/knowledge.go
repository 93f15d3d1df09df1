package handler

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/set-night/campusdesk/internal/config"
)

type updateWebsitesRequest struct {
	URLs []string `json:"urls"`
}

type updateWebsitesResponse struct {
	Message       string   `json:"message"`
	ContentLength int      `json:"content_length"`
	URLs          []string `json:"urls"`
	Generation    uint64   `json:"generation"`
}

func (h *Handler) updateWebsites(c echo.Context) error {
	var req updateWebsitesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No URLs provided")
	}
	urls := config.CleanURLs(req.URLs)
	if len(urls) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No URLs provided")
	}

	snap, err := h.knowledge.Update(c.Request().Context(), urls)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updateWebsitesResponse{
		Message:       fmt.Sprintf("Updated with %d URLs", len(urls)),
		ContentLength: utf8.RuneCountInString(snap.DynamicText),
		URLs:          urls,
		Generation:    snap.Generation,
	})
}
