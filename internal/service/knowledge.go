package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/domain"
)

// Placeholders that stand in for missing content inside the prompt.
const (
	NoManualContent   = "No PDF content available."
	NoWebSources      = "No website URLs configured."
	NoSourceContent   = "[No content available from this source.]"
	sourceBlockFormat = "Content from %s:\n%s"
)

const promptTemplate = "You are a Student Assistant AI for %[1]s. Use the information below " +
	"from both the PDF manual and official websites to answer questions accurately. " +
	"If the answer is not found in the provided information, politely say so and suggest " +
	"checking the official %[1]s website.\n\n" +
	"PDF MANUAL CONTENT:\n%[2]s\n\n" +
	"WEBSITE CONTENT:\n%[3]s\n\n" +
	"Keep responses helpful, accurate and concise enough to be read aloud over the phone."

// Fetcher returns the readable text of one web source, trimmed to budget
// characters.
type Fetcher interface {
	Fetch(ctx context.Context, url string, budget int) (string, error)
}

// KnowledgeAggregator owns the knowledge context shared by every
// conversation. Readers get an immutable snapshot; updates build a new
// snapshot and swap it in with a single atomic store.
type KnowledgeAggregator struct {
	fetcher      Fetcher
	organization string
	budget       int

	// updateMu serializes writers so generations are applied in order.
	updateMu sync.Mutex
	current  atomic.Pointer[domain.KnowledgeSnapshot]
	now      func() time.Time
}

func NewKnowledgeAggregator(fetcher Fetcher, organization string, budget int) *KnowledgeAggregator {
	a := &KnowledgeAggregator{
		fetcher:      fetcher,
		organization: organization,
		budget:       budget,
		now:          time.Now,
	}
	a.current.Store(a.snapshot(0, NoManualContent, NoWebSources, nil))
	return a
}

// Initialize loads the static document text and aggregates the initial web
// sources. It never fails: unusable inputs become placeholders.
func (a *KnowledgeAggregator) Initialize(ctx context.Context, staticText string, sources []string) *domain.KnowledgeSnapshot {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()

	staticText = strings.TrimSpace(staticText)
	if staticText == "" {
		slog.Warn("manual content empty, using placeholder")
		staticText = NoManualContent
	}
	staticText = TruncateRunes(staticText, config.StaticTextLimit, "")

	sources = config.CleanURLs(sources)
	dynamic := a.aggregate(ctx, sources)

	snap := a.snapshot(a.current.Load().Generation+1, staticText, dynamic, sources)
	a.publish(snap)
	slog.Info("knowledge initialized",
		"generation", snap.Generation,
		"static_chars", len(staticText),
		"web_chars", len(dynamic),
		"sources", len(sources),
	)
	return snap
}

// Update re-aggregates the web sources and swaps the prompt for all later
// readers. Turns that already read the previous snapshot keep using it.
// When ctx ends during aggregation the previous snapshot stays active.
func (a *KnowledgeAggregator) Update(ctx context.Context, sources []string) (*domain.KnowledgeSnapshot, error) {
	sources = config.CleanURLs(sources)
	if len(sources) == 0 {
		return nil, domain.Validation("update knowledge", domain.ErrNoURLs)
	}

	a.updateMu.Lock()
	defer a.updateMu.Unlock()

	dynamic := a.aggregate(ctx, sources)
	if err := ctx.Err(); err != nil {
		return nil, domain.Internal("update knowledge", err)
	}
	prev := a.current.Load()
	snap := a.snapshot(prev.Generation+1, prev.StaticText, dynamic, sources)
	a.publish(snap)
	slog.Info("knowledge updated", "generation", snap.Generation, "web_chars", len(dynamic), "sources", len(sources))
	return snap, nil
}

// Current returns the active snapshot. It is never nil.
func (a *KnowledgeAggregator) Current() *domain.KnowledgeSnapshot {
	return a.current.Load()
}

func (a *KnowledgeAggregator) CurrentPrompt() string {
	return a.current.Load().Prompt
}

// aggregate fetches every source concurrently and joins the labeled blocks
// in source order. Each source gets budget/len(sources) characters; the
// remainder of the division is not redistributed.
func (a *KnowledgeAggregator) aggregate(ctx context.Context, sources []string) string {
	if len(sources) == 0 {
		return NoWebSources
	}
	perSource := a.budget / len(sources)
	blocks := make([]string, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.FetchConcurrency)
	for i, src := range sources {
		g.Go(func() error {
			text, err := a.fetcher.Fetch(gctx, src, perSource)
			if err == nil && strings.TrimSpace(text) == "" {
				err = errors.New("empty content")
			}
			if err != nil {
				sourceFetchTotal.WithLabelValues("failed").Inc()
				slog.Warn("web source unavailable", "url", src, "error", err)
				blocks[i] = fmt.Sprintf(sourceBlockFormat, src, NoSourceContent)
				return nil
			}
			sourceFetchTotal.WithLabelValues("ok").Inc()
			blocks[i] = fmt.Sprintf(sourceBlockFormat, src, text)
			return nil
		})
	}
	_ = g.Wait()

	return strings.Join(blocks, "\n\n")
}

func (a *KnowledgeAggregator) snapshot(gen uint64, staticText, dynamicText string, sources []string) *domain.KnowledgeSnapshot {
	return &domain.KnowledgeSnapshot{
		Generation:  gen,
		StaticText:  staticText,
		DynamicText: dynamicText,
		Prompt:      RenderPrompt(a.organization, staticText, dynamicText),
		Sources:     slices.Clone(sources),
		UpdatedAt:   a.now(),
	}
}

func (a *KnowledgeAggregator) publish(snap *domain.KnowledgeSnapshot) {
	a.current.Store(snap)
	knowledgeGeneration.Set(float64(snap.Generation))
}

// RenderPrompt builds the context message from the instructional preamble
// and both knowledge sections.
func RenderPrompt(organization, staticText, dynamicText string) string {
	return fmt.Sprintf(promptTemplate, organization, staticText, dynamicText)
}
