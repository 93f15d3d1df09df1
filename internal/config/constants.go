package config

import "time"

const (
	// Inbound message limit, in characters
	MaxMessageLen = 1000

	// Total character budget shared by all web sources
	WebContentBudget = 15000

	// Static document text kept in the prompt, in characters
	StaticTextLimit = 15000

	// Spoken replies longer than this are cut and end with "..."
	MaxSpokenReplyLen = 500

	// Model request timeout
	RequestTimeout = 90 * time.Second

	// Whole voice turn, kept under the provider's 15s webhook timeout
	VoiceTurnTimeout = 12 * time.Second

	// Per-URL fetch timeout
	FetchTimeout = 10 * time.Second

	// Concurrent web fetches during aggregation
	FetchConcurrency = 4

	// Maximum HTML body read per source
	MaxFetchBody = 5 << 20

	// Seconds of silence before the provider closes speech collection
	SpeechTimeout = "3"

	// Idle session sweep interval
	SessionSweepInterval = 5 * time.Minute

	// Graceful HTTP shutdown
	ShutdownTimeout = 10 * time.Second

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Typing indicator refresh while a turn is generated
	TypingInterval = 4 * time.Second
)
