package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsEditor(t *testing.T) {
	for _, name := range []string{"index.html", "app.js", "style.css"} {
		_, err := fs.Stat(FS(), name)
		assert.NoError(t, err, name)
	}
}

func TestHandler_ServesIndex(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Body.String(), `id="editor"`)
}

func TestHandler_ServesScript(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/app.js", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Header().Get("Content-Type"), "javascript"))
	assert.Contains(t, rr.Body.String(), "function transition(")
}

func TestHandler_ScriptRunsOneActionAtATime(t *testing.T) {
	b, err := fs.ReadFile(FS(), "app.js")
	require.NoError(t, err)
	script := string(b)

	start := strings.Index(script, "function run(action) {")
	require.NotEqual(t, -1, start)
	body := script[start:]
	gate := strings.Index(body, "if (busy())")
	begin := strings.Index(body, "transition({ type: 'start' })")
	require.NotEqual(t, -1, gate, "run must return early while loading")
	assert.Less(t, gate, begin, "the loading check must come before the start transition")

	assert.Contains(t, script, "button.disabled = busy()")
	assert.Contains(t, script, "el.upload.disabled = busy()")
}
