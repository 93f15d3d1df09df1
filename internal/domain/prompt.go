package domain

import "time"

// KnowledgeSnapshot is one immutable generation of the shared knowledge
// context. Prompt is always rendered from StaticText and DynamicText of the
// same snapshot.
type KnowledgeSnapshot struct {
	Generation  uint64
	StaticText  string
	DynamicText string
	Prompt      string
	Sources     []string
	UpdatedAt   time.Time
}
