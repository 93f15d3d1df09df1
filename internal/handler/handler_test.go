package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/domain"
	"github.com/set-night/campusdesk/internal/service"
	"github.com/set-night/campusdesk/internal/twiml"
)

type stubModel struct {
	mu     sync.Mutex
	reply  string
	err    error
	panics bool
}

func (m *stubModel) Generate(context.Context, []domain.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panics {
		panic("nil response from provider")
	}
	return m.reply, m.err
}

type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, u string, _ int) (string, error) {
	return "page " + u, nil
}

type testEnv struct {
	h        *Handler
	e        *echo.Echo
	sessions *service.SessionStore
	model    *stubModel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AssistantName:    "Campus Assistant",
		OrganizationName: "Test University",
		VoiceName:        "alice",
		VoiceLanguage:    "en-US",
	}
	sessions := service.NewSessionStore(0, 0)
	knowledge := service.NewKnowledgeAggregator(stubFetcher{}, cfg.OrganizationName, config.WebContentBudget)
	model := &stubModel{reply: "Hello from the assistant."}
	dialogue := service.NewDialogueService(sessions, knowledge, model, nil)
	docs := twiml.NewBuilder(twiml.OptionsFromConfig(cfg))

	h := New(Deps{
		Cfg:       cfg,
		Sessions:  sessions,
		Dialogue:  dialogue,
		Knowledge: knowledge,
		Voice:     service.NewVoiceService(sessions, dialogue, docs),
		Docs:      docs,
	})
	return &testEnv{h: h, e: NewServer(h), sessions: sessions, model: model}
}

func (env *testEnv) do(method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) postJSON(target, body string) *httptest.ResponseRecorder {
	return env.do(http.MethodPost, target, echo.MIMEApplicationJSON, body)
}

func (env *testEnv) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return env.do(http.MethodPost, target, echo.MIMEApplicationForm, form.Encode())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHTTPErrorMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest,
		httpError(domain.Validation("op", domain.ErrEmptyMessage)).(*echo.HTTPError).Code)
	assert.Equal(t, http.StatusNotFound,
		httpError(domain.NotFound("op", domain.ErrSessionNotFound)).(*echo.HTTPError).Code)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	errorHandler(httpError(domain.Internal("op", assert.AnError)), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
