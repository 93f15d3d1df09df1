package handler

import (
	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/service"
	"github.com/set-night/campusdesk/internal/twiml"
)

// Handler holds the dependencies shared by the HTTP routes and the
// Telegram bot handlers.
type Handler struct {
	cfg       *config.Config
	sessions  *service.SessionStore
	dialogue  *service.DialogueService
	knowledge *service.KnowledgeAggregator
	voice     *service.VoiceService
	docs      *twiml.Builder
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Cfg       *config.Config
	Sessions  *service.SessionStore
	Dialogue  *service.DialogueService
	Knowledge *service.KnowledgeAggregator
	Voice     *service.VoiceService
	Docs      *twiml.Builder
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		cfg:       deps.Cfg,
		sessions:  deps.Sessions,
		dialogue:  deps.Dialogue,
		knowledge: deps.Knowledge,
		voice:     deps.Voice,
		docs:      deps.Docs,
	}
}
