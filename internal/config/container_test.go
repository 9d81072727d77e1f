package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"office-web-server/pkg/logger"
)

func newTestContainer(t *testing.T) (*Container, *AppConfig) {
	t.Helper()
	clearEnv(t)
	t.Setenv("DOCUMENTS_DIR", t.TempDir())
	t.Setenv("UPLOAD_PATH", t.TempDir())
	t.Setenv("SOFFICE_BIN", filepath.Join(t.TempDir(), "missing-soffice"))

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	c, err := NewContainer(context.Background(), cfg, logger.NewLogger("error"))
	require.NoError(t, err)
	return c, cfg
}

func TestNewContainer_WiresServices(t *testing.T) {
	c, cfg := newTestContainer(t)

	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetLogger())
	assert.Nil(t, c.DocumentMirror)
	assert.NotNil(t, c.DocumentService)
	assert.NotNil(t, c.ConversionService)
	assert.NotNil(t, c.UploadService)
	assert.NotNil(t, c.ExportService)
	assert.NotNil(t, c.Scheduler)
	assert.False(t, c.ConversionService.Available())
}

func TestNewContainer_RejectsUnknownRenderer(t *testing.T) {
	clearEnv(t)
	t.Setenv("PDF_RENDERER", "wkhtmltopdf")
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	_, err = NewContainer(context.Background(), cfg, logger.NewLogger("error"))
	require.Error(t, err)
}

func TestNewContainer_RejectsBadSweepSchedule(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPLOAD_SWEEP_SCHEDULE", "not a schedule")
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	_, err = NewContainer(context.Background(), cfg, logger.NewLogger("error"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload sweep schedule")
}

func TestContainerRouter_SaveListOpen(t *testing.T) {
	c, cfg := newTestContainer(t)
	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/save", "application/json",
		strings.NewReader(`{"content":"<p>hi</p>","filename":"notes"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := os.ReadFile(filepath.Join(cfg.GetDocumentsDir(), "notes.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))

	resp, err = http.Get(srv.URL + "/api/list")
	require.NoError(t, err)
	var list struct {
		Documents []struct {
			Filename string `json:"filename"`
		} `json:"documents"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list.Documents, 1)
	assert.Equal(t, "notes.html", list.Documents[0].Filename)

	resp, err = http.Get(srv.URL + "/api/open/notes.html")
	require.NoError(t, err)
	var opened struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&opened))
	resp.Body.Close()
	assert.Equal(t, "<p>hi</p>", opened.Content)
}

func TestContainerRouter_InfoAndApp(t *testing.T) {
	c, _ := newTestContainer(t)
	srv := httptest.NewServer(c.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	var info struct {
		Status       string          `json:"status"`
		Dependencies map[string]bool `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	resp.Body.Close()
	assert.Equal(t, "running", info.Status)
	assert.Contains(t, info.Dependencies, "soffice")
	assert.Contains(t, info.Dependencies, "browser")
	assert.False(t, info.Dependencies["soffice"])

	resp, err = http.Get(srv.URL + "/app/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplyOverrides(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	cfg.ApplyOverrides("8081", "/srv/docs")
	assert.Equal(t, "8081", cfg.GetServerPort())
	assert.Equal(t, "/srv/docs", cfg.GetDocumentsDir())
	assert.Equal(t, "/srv/docs", cfg.GetConvertRoot())

	t.Setenv("CONVERT_ROOT", ConvertRootUnrestricted)
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	cfg.ApplyOverrides("", "/srv/other")
	assert.Equal(t, "5000", cfg.GetServerPort())
	assert.Equal(t, ConvertRootUnrestricted, cfg.GetConvertRoot())
}
