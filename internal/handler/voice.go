package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const mimeTextXML = "text/xml"

// callID returns the provider's call identifier, or a per-address
// fallback when the payload has none.
func callID(c echo.Context) string {
	if id := c.FormValue("CallSid"); id != "" {
		return id
	}
	return "voice_" + c.RealIP()
}

func xmlDocument(c echo.Context, doc string) error {
	return c.Blob(http.StatusOK, mimeTextXML, []byte(doc))
}

func (h *Handler) voiceReady(c echo.Context) error {
	return xmlDocument(c, h.docs.Ready())
}

func (h *Handler) voiceStart(c echo.Context) error {
	return xmlDocument(c, h.voice.StartCall(callID(c)))
}

func (h *Handler) processSpeech(c echo.Context) error {
	doc := h.voice.HandleSpeech(c.Request().Context(), callID(c), c.FormValue("SpeechResult"))
	return xmlDocument(c, doc)
}

func (h *Handler) voiceStatus(c echo.Context) error {
	h.voice.HandleStatus(c.FormValue("CallSid"), c.FormValue("CallStatus"))
	return c.NoContent(http.StatusOK)
}

func (h *Handler) testVoice(c echo.Context) error {
	return xmlDocument(c, h.docs.Test())
}
