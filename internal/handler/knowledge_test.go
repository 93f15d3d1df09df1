package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateWebsites(t *testing.T) {
	for _, path := range []string{"/update-websites", "/voice/update-websites"} {
		t.Run(path, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.postJSON(path, `{"urls":["https://a.example"," https://b.example ",""]}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			resp := decode[updateWebsitesResponse](t, rec)
			assert.Equal(t, "Updated with 2 URLs", resp.Message)
			assert.Equal(t, []string{"https://a.example", "https://b.example"}, resp.URLs)
			assert.Positive(t, resp.ContentLength)
			assert.Equal(t, uint64(1), resp.Generation)

			assert.Contains(t, env.h.knowledge.CurrentPrompt(), "page https://b.example")
		})
	}
}

func TestUpdateWebsitesRequiresURLs(t *testing.T) {
	env := newTestEnv(t)
	before := env.h.knowledge.Current()

	for _, body := range []string{`{}`, `{"urls":[]}`, `{"urls":["  "]}`, `nope`} {
		rec := env.postJSON("/update-websites", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "No URLs provided", decode[map[string]string](t, rec)["error"])
	}
	assert.Same(t, before, env.h.knowledge.Current())
}
