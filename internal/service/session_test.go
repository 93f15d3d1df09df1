package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/campusdesk/internal/domain"
)

func TestSessionStore_AppendPreservesOrder(t *testing.T) {
	store := NewSessionStore(0, 0)

	for i := 0; i < 5; i++ {
		store.Append("s1", domain.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	history := store.History("s1")
	require.Len(t, history, 5)
	for i, m := range history {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), m.Content)
	}
}

func TestSessionStore_AppendCreatesSession(t *testing.T) {
	store := NewSessionStore(0, 0)
	assert.False(t, store.Exists("new"))

	store.Append("new", domain.RoleUser, "hello")

	assert.True(t, store.Exists("new"))
	assert.Len(t, store.History("new"), 1)
}

func TestSessionStore_HistoryUnknownIsEmpty(t *testing.T) {
	store := NewSessionStore(0, 0)

	history := store.History("missing")
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestSessionStore_HistoryIsCopy(t *testing.T) {
	store := NewSessionStore(0, 0)
	store.Append("s1", domain.RoleUser, "original")

	history := store.History("s1")
	history[0].Content = "mutated"

	assert.Equal(t, "original", store.History("s1")[0].Content)
}

func TestSessionStore_End(t *testing.T) {
	store := NewSessionStore(0, 0)

	assert.False(t, store.End("unknown"))
	assert.Equal(t, 0, store.Len())

	store.Append("s1", domain.RoleUser, "hi")
	assert.True(t, store.End("s1"))
	assert.False(t, store.Exists("s1"))
	assert.Empty(t, store.History("s1"))
	assert.False(t, store.End("s1"))
}

func TestSessionStore_CreateClearsHistory(t *testing.T) {
	store := NewSessionStore(0, 0)
	store.Append("s1", domain.RoleUser, "hi")

	store.Create("s1")

	assert.True(t, store.Exists("s1"))
	assert.Empty(t, store.History("s1"))
}

func TestSessionStore_EnsureDoesNotClobber(t *testing.T) {
	store := NewSessionStore(0, 0)

	assert.True(t, store.Ensure("s1"))
	store.Append("s1", domain.RoleUser, "hi")
	assert.False(t, store.Ensure("s1"))
	assert.Len(t, store.History("s1"), 1)
}

func TestSessionStore_MaxMessagesDropsOldest(t *testing.T) {
	store := NewSessionStore(3, 0)

	for i := 0; i < 5; i++ {
		store.Append("s1", domain.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	history := store.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, "msg-2", history[0].Content)
	assert.Equal(t, "msg-4", history[2].Content)
}

func TestSessionStore_SweepEvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(0, time.Hour)
	store.now = func() time.Time { return now }

	store.Append("old", domain.RoleUser, "hi")
	now = now.Add(50 * time.Minute)
	store.Append("fresh", domain.RoleUser, "hi")
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	assert.False(t, store.Exists("old"))
	assert.True(t, store.Exists("fresh"))
}

func TestSessionStore_SweepDisabled(t *testing.T) {
	store := NewSessionStore(0, 0)
	store.Append("s1", domain.RoleUser, "hi")
	assert.Equal(t, 0, store.Sweep())
	assert.True(t, store.Exists("s1"))
}

func TestSessionStore_Transition(t *testing.T) {
	store := NewSessionStore(0, 0)

	_, err := store.Transition("call", domain.EventCallStarted)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	store.Ensure("call")
	state, err := store.Transition("call", domain.EventCallStarted)
	require.NoError(t, err)
	assert.Equal(t, domain.CallAwaitingSpeech, state)

	state, err = store.Transition("call", domain.EventSpeechReceived)
	require.NoError(t, err)
	assert.Equal(t, domain.CallProcessingTurn, state)

	info, ok := store.Info("call")
	require.True(t, ok)
	assert.Equal(t, domain.CallProcessingTurn, info.State)
}

func TestSessionStore_ConcurrentAppendsSameSession(t *testing.T) {
	store := NewSessionStore(0, 0)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				store.Append("shared", domain.RoleUser, fmt.Sprintf("%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	history := store.History("shared")
	require.Len(t, history, writers*perWriter)

	// Each writer's own messages stay in the order it wrote them.
	last := make(map[int]int)
	for _, m := range history {
		var w, i int
		_, err := fmt.Sscanf(m.Content, "%d-%d", &w, &i)
		require.NoError(t, err)
		if prev, ok := last[w]; ok {
			assert.Greater(t, i, prev)
		}
		last[w] = i
	}
}

func TestSessionStore_DeleteRacingAppend(t *testing.T) {
	store := NewSessionStore(0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Append("race", domain.RoleUser, "x")
		}()
		go func() {
			defer wg.Done()
			store.End("race")
		}()
	}
	wg.Wait()

	// Whatever won, the surviving history is a well-formed run of appends.
	for _, m := range store.History("race") {
		assert.Equal(t, "x", m.Content)
	}
	store.End("race")
	assert.Empty(t, store.History("race"))
}
