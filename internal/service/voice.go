package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/domain"
	"github.com/set-night/campusdesk/internal/twiml"
)

// VoiceService drives a phone call through independent webhook deliveries.
// The call state lives on the session keyed by the call identifier.
type VoiceService struct {
	sessions    *SessionStore
	dialogue    *DialogueService
	docs        *twiml.Builder
	turnTimeout time.Duration
}

func NewVoiceService(sessions *SessionStore, dialogue *DialogueService, docs *twiml.Builder) *VoiceService {
	return &VoiceService{
		sessions:    sessions,
		dialogue:    dialogue,
		docs:        docs,
		turnTimeout: config.VoiceTurnTimeout,
	}
}

// StartCall ensures a session for callID and returns the greeting document.
// If the call cannot be set up the caller hears an apology and the call ends.
func (v *VoiceService) StartCall(callID string) (doc string) {
	defer v.recoverTurn(callID, "start call", func() { doc = v.docs.Failure() })

	voiceEventsTotal.WithLabelValues("start").Inc()
	if v.sessions.Ensure(callID) {
		slog.Info("voice call started", "call_id", callID)
	}
	v.transition(callID, domain.EventCallStarted)
	return v.docs.Greeting()
}

// HandleSpeech processes one speech-collected callback. An empty result
// re-prompts without touching history. Any failure still yields a
// document that keeps the call open. The turn is bounded by the voice
// turn timeout so the reply lands inside the provider's webhook window.
func (v *VoiceService) HandleSpeech(ctx context.Context, callID, speech string) (doc string) {
	defer v.recoverTurn(callID, "handle speech", func() { doc = v.docs.Apology() })

	speech = strings.TrimSpace(speech)
	if speech == "" {
		voiceEventsTotal.WithLabelValues("speech_empty").Inc()
		v.transition(callID, domain.EventSpeechEmpty)
		return v.docs.Reprompt()
	}

	voiceEventsTotal.WithLabelValues("speech").Inc()
	v.sessions.Ensure(callID)
	v.transition(callID, domain.EventSpeechReceived)
	defer v.transition(callID, domain.EventTurnFinished)

	ctx, cancel := context.WithTimeout(ctx, v.turnTimeout)
	defer cancel()

	reply, err := v.dialogue.HandleTurn(ctx, callID, speech)
	if err != nil {
		voiceEventsTotal.WithLabelValues("apology").Inc()
		slog.Warn("voice turn rejected", "call_id", callID, "error", err)
		return v.docs.Apology()
	}
	return v.docs.Reply(SpeakableText(reply))
}

// HandleStatus ends the call's session on a terminal status. It reports
// whether a session was removed; unknown calls are a no-op.
func (v *VoiceService) HandleStatus(callID, status string) bool {
	slog.Info("voice call status", "call_id", callID, "status", status)
	if callID == "" || !domain.TerminalCallStatus(status) {
		return false
	}
	voiceEventsTotal.WithLabelValues("terminated").Inc()
	v.transition(callID, domain.EventCallTerminated)
	if !v.sessions.End(callID) {
		return false
	}
	slog.Info("cleaned up voice session", "call_id", callID)
	return true
}

// recoverTurn must be deferred directly. It absorbs a panic, reports it and
// lets fallback replace the returned document.
func (v *VoiceService) recoverTurn(callID, op string, fallback func()) {
	r := recover()
	if r == nil {
		return
	}
	voiceEventsTotal.WithLabelValues("panic").Inc()
	err := domain.Internal(op, fmt.Errorf("panic: %v", r))
	slog.Error("voice webhook panic", "call_id", callID, "op", op, "error", err)
	v.dialogue.report(err, op+" for "+callID)
	fallback()
}

func (v *VoiceService) transition(callID string, ev domain.CallEvent) {
	state, err := v.sessions.Transition(callID, ev)
	switch {
	case err == nil:
		slog.Debug("call transition", "call_id", callID, "event", ev.String(), "state", state.String())
	case errors.Is(err, domain.ErrSessionNotFound):
	default:
		slog.Warn("call transition", "call_id", callID, "event", ev.String(), "error", err)
	}
}

// SpeakableText strips emphasis markers and caps the reply for speech.
func SpeakableText(reply string) string {
	text := strings.TrimSpace(strings.ReplaceAll(reply, "*", ""))
	if utf8.RuneCountInString(text) > config.MaxSpokenReplyLen {
		text = TruncateRunes(text, config.MaxSpokenReplyLen-3, "...")
	}
	return text
}
