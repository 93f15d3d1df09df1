package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/campusdesk/internal/domain"
)

type fakeModel struct {
	mu    sync.Mutex
	reply string
	err   error
	delay time.Duration
	calls [][]domain.Message
}

func (m *fakeModel) Generate(ctx context.Context, messages []domain.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.reply, m.err
}

func (m *fakeModel) lastCall() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

type panicModel struct{}

func (panicModel) Generate(context.Context, []domain.Message) (string, error) {
	panic("provider client bug")
}

type staticPrompt string

func (p staticPrompt) CurrentPrompt() string { return string(p) }

type recordingReporter struct {
	mu     sync.Mutex
	errors []error
}

func (r *recordingReporter) ReportError(err error, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func TestDialogueService_HandleTurn(t *testing.T) {
	store := NewSessionStore(0, 0)
	model := &fakeModel{reply: "The library opens at 8."}
	svc := NewDialogueService(store, staticPrompt("CONTEXT"), model, nil)

	reply, err := svc.HandleTurn(context.Background(), "s1", "  What are the opening hours?  ")
	require.NoError(t, err)
	assert.Equal(t, "The library opens at 8.", reply)

	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, domain.Message{Role: domain.RoleUser, Content: "What are the opening hours?"}, history[0])
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.NotEmpty(t, history[1].Content)

	sent := model.lastCall()
	require.Len(t, sent, 2)
	assert.Equal(t, domain.Message{Role: domain.RoleSystem, Content: "CONTEXT"}, sent[0])
	assert.Equal(t, "What are the opening hours?", sent[1].Content)
}

func TestDialogueService_HistoryCarriesAcrossTurns(t *testing.T) {
	store := NewSessionStore(0, 0)
	model := &fakeModel{reply: "ok"}
	svc := NewDialogueService(store, staticPrompt("CONTEXT"), model, nil)

	_, err := svc.HandleTurn(context.Background(), "s1", "first")
	require.NoError(t, err)
	_, err = svc.HandleTurn(context.Background(), "s1", "second")
	require.NoError(t, err)

	sent := model.lastCall()
	require.Len(t, sent, 4)
	assert.Equal(t, "first", sent[1].Content)
	assert.Equal(t, "ok", sent[2].Content)
	assert.Equal(t, "second", sent[3].Content)
	assert.Len(t, store.History("s1"), 4)
}

func TestDialogueService_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", domain.ErrEmptyMessage},
		{"whitespace", "   \n", domain.ErrEmptyMessage},
		{"too long", strings.Repeat("a", 1001), domain.ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewSessionStore(0, 0)
			model := &fakeModel{reply: "ok"}
			svc := NewDialogueService(store, staticPrompt("CONTEXT"), model, nil)

			_, err := svc.HandleTurn(context.Background(), "s1", tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.False(t, store.Exists("s1"))
			assert.Empty(t, model.calls)
		})
	}
}

func TestDialogueService_AcceptsExactlyMaxLength(t *testing.T) {
	store := NewSessionStore(0, 0)
	svc := NewDialogueService(store, staticPrompt("CONTEXT"), &fakeModel{reply: "ok"}, nil)

	_, err := svc.HandleTurn(context.Background(), "s1", strings.Repeat("ä", 1000))
	require.NoError(t, err)
	assert.Len(t, store.History("s1"), 2)
}

func TestDialogueService_ModelFailureFallsBack(t *testing.T) {
	store := NewSessionStore(0, 0)
	reporter := &recordingReporter{}
	svc := NewDialogueService(store, staticPrompt("CONTEXT"), &fakeModel{err: errors.New("quota exceeded")}, reporter)

	reply, err := svc.HandleTurn(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)

	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, FallbackReply, history[1].Content)

	require.Len(t, reporter.errors, 1)
	assert.Equal(t, domain.KindCollaborator, domain.KindOf(reporter.errors[0]))
}

func TestDialogueService_ModelPanicFallsBack(t *testing.T) {
	store := NewSessionStore(0, 0)
	reporter := &recordingReporter{}
	svc := NewDialogueService(store, staticPrompt("CONTEXT"), panicModel{}, reporter)

	var reply string
	require.NotPanics(t, func() {
		var err error
		reply, err = svc.HandleTurn(context.Background(), "s1", "hello")
		require.NoError(t, err)
	})
	assert.Equal(t, FallbackReply, reply)

	history := store.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, FallbackReply, history[1].Content)

	require.Len(t, reporter.errors, 1)
	assert.Equal(t, domain.KindCollaborator, domain.KindOf(reporter.errors[0]))
	assert.Contains(t, reporter.errors[0].Error(), "provider client bug")
}

func TestDialogueService_ModelTimeoutFallsBack(t *testing.T) {
	store := NewSessionStore(0, 0)
	svc := NewDialogueService(store, staticPrompt("CONTEXT"), &fakeModel{reply: "late", delay: time.Second}, nil)
	svc.timeout = 20 * time.Millisecond

	reply, err := svc.HandleTurn(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)
}

func TestDialogueService_NoModelConfigured(t *testing.T) {
	store := NewSessionStore(0, 0)
	svc := NewDialogueService(store, staticPrompt("CONTEXT"), nil, nil)

	reply, err := svc.HandleTurn(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, UnavailableReply, reply)
	assert.Len(t, store.History("s1"), 2)
}

func TestDialogueService_UsesPromptCapturedAtTurnStart(t *testing.T) {
	agg := NewKnowledgeAggregator(newFakeFetcher(), "Test University", 15000)
	agg.Initialize(context.Background(), "Manual", []string{"https://old.example"})

	store := NewSessionStore(0, 0)
	model := &fakeModel{reply: "ok"}
	svc := NewDialogueService(store, agg, model, nil)

	_, err := svc.HandleTurn(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Contains(t, model.lastCall()[0].Content, "https://old.example")

	_, err = agg.Update(context.Background(), []string{"https://new.example"})
	require.NoError(t, err)

	_, err = svc.HandleTurn(context.Background(), "s1", "again")
	require.NoError(t, err)
	assert.Contains(t, model.lastCall()[0].Content, "https://new.example")
}
