// Package twiml renders the voice documents returned to the telephony
// provider's webhooks.
package twiml

import (
	"fmt"
	"log/slog"

	tw "github.com/twilio/twilio-go/twiml"

	"github.com/set-night/campusdesk/internal/config"
)

// FallbackDocument is served when rendering fails. It is always valid.
const FallbackDocument = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>We're experiencing technical difficulties. Please try again later.</Say><Hangup/></Response>`

const (
	promptSpeakNow     = "Please speak now."
	promptAnother      = "Do you have another question? Please speak now, or hang up to end the call."
	promptWhatElse     = "What else can I help with?"
	noInputGoodbye     = "We didn't hear your question. Please call back and try again. Goodbye!"
	shortGoodbye       = "Thank you for calling. Goodbye!"
	didNotHear         = "I didn't hear anything. Please try again."
	apology            = "Sorry, I encountered an error. Please try again."
	testConfirmation   = "If you can hear this, your voice system is working!"
	greetingTemplate   = "Hello! Welcome to the %s. I can help you with course information, deadlines, and university services. Please ask your question after the beep."
	farewellTemplate   = "Thank you for calling the %s. Have a great day!"
	readyTemplate      = "%s is ready for your call!"
	testGreetingFormat = "Hello! This is a test from %s."

	technicalDifficulties = "We're experiencing technical difficulties. Please try again later."
)

type Options struct {
	Voice         string
	Language      string
	SpeechAction  string
	AssistantName string
}

// OptionsFromConfig builds Options from the service configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Voice:         cfg.VoiceName,
		Language:      cfg.VoiceLanguage,
		SpeechAction:  cfg.SpeechActionURL(),
		AssistantName: cfg.AssistantName,
	}
}

// Builder produces complete documents. Every method returns well-formed
// markup; on a rendering failure it returns FallbackDocument.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	if opts.SpeechAction == "" {
		opts.SpeechAction = "/process_speech"
	}
	return &Builder{opts: opts}
}

// Greeting opens a call: greet, collect speech, then hang up if nothing was said.
func (b *Builder) Greeting() string {
	return b.render("greeting",
		b.say(fmt.Sprintf(greetingTemplate, b.opts.AssistantName)),
		b.gather(promptSpeakNow),
		b.say(noInputGoodbye),
		&tw.VoiceHangup{},
	)
}

// Reprompt asks the caller to repeat after an empty speech result.
func (b *Builder) Reprompt() string {
	return b.collectAgain(didNotHear)
}

// Apology keeps the call alive after a failed turn.
func (b *Builder) Apology() string {
	return b.collectAgain(apology)
}

// Reply speaks text and listens for the next question.
func (b *Builder) Reply(text string) string {
	elements := make([]tw.Element, 0, 4)
	if text != "" {
		elements = append(elements, b.say(text))
	}
	elements = append(elements,
		b.gather(promptAnother),
		b.say(fmt.Sprintf(farewellTemplate, b.opts.AssistantName)),
		&tw.VoiceHangup{},
	)
	return b.render("reply", elements...)
}

// Failure apologizes and ends the call. It is used when the call cannot
// continue at all.
func (b *Builder) Failure() string {
	return b.render("failure",
		b.say(technicalDifficulties),
		&tw.VoiceHangup{},
	)
}

// Ready answers a plain GET on the voice endpoint.
func (b *Builder) Ready() string {
	return b.render("ready", b.say(fmt.Sprintf(readyTemplate, b.opts.AssistantName)))
}

func (b *Builder) Test() string {
	return b.render("test",
		b.say(fmt.Sprintf(testGreetingFormat, b.opts.AssistantName)),
		b.say(testConfirmation),
		&tw.VoiceHangup{},
	)
}

func (b *Builder) collectAgain(lead string) string {
	return b.render("reprompt",
		b.say(lead),
		b.gather(promptWhatElse),
		b.say(shortGoodbye),
		&tw.VoiceHangup{},
	)
}

func (b *Builder) say(text string) *tw.VoiceSay {
	return &tw.VoiceSay{
		Message:  text,
		Voice:    b.opts.Voice,
		Language: b.opts.Language,
	}
}

func (b *Builder) gather(prompt string) *tw.VoiceGather {
	return &tw.VoiceGather{
		Input:         "speech",
		Action:        b.opts.SpeechAction,
		Method:        "POST",
		SpeechTimeout: config.SpeechTimeout,
		SpeechModel:   "phone_call",
		Language:      b.opts.Language,
		Enhanced:      "true",
		InnerElements: []tw.Element{b.say(prompt)},
	}
}

func (b *Builder) render(name string, elements ...tw.Element) string {
	doc, err := tw.Voice(elements)
	if err != nil {
		slog.Error("render voice document", "document", name, "error", err)
		return FallbackDocument
	}
	return doc
}
