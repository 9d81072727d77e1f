package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"office-web-server/internal/domain"
)

func TestRunDoctor(t *testing.T) {
	var out bytes.Buffer
	err := runDoctor(&out, []dependencyStatus{
		{Name: "soffice", Detail: "/usr/bin/soffice", OK: true},
		{Name: "browser", Detail: "not found"},
	}, false)

	require.True(t, errors.Is(err, errMissingDependencies))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ok")
	assert.Contains(t, lines[0], "/usr/bin/soffice")
	assert.Contains(t, lines[1], "missing")
}

func TestRunDoctor_AllPresent(t *testing.T) {
	var out bytes.Buffer
	err := runDoctor(&out, []dependencyStatus{
		{Name: "soffice", Detail: "/usr/bin/soffice", OK: true},
		{Name: "browser", Detail: "/usr/bin/chromium", OK: true},
	}, false)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "missing")
}

func TestRunDoctor_JSON(t *testing.T) {
	var out bytes.Buffer
	err := runDoctor(&out, []dependencyStatus{
		{Name: "soffice", Detail: "soffice"},
	}, true)
	require.ErrorIs(t, err, errMissingDependencies)

	var got []dependencyStatus
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "soffice", got[0].Name)
	assert.False(t, got[0].OK)
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>file</p>"), 0o644))

	got, err := readInput(nil, path)
	require.NoError(t, err)
	assert.Equal(t, "<p>file</p>", got)

	got, err = readInput(strings.NewReader("<p>stdin</p>"), "-")
	require.NoError(t, err)
	assert.Equal(t, "<p>stdin</p>", got)

	_, err = readInput(nil, filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}

func TestRootCommand_HasSubcommandsAndServeFlags(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"serve", "doctor", "export"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.Flags().Lookup("port"))
	assert.NotNil(t, root.Flags().Lookup("documents-dir"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestExportCommand_MissingInput(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MIRROR_BACKEND", "")
	t.Setenv("DOCUMENTS_DIR", t.TempDir())
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"export", filepath.Join(t.TempDir(), "missing.html")})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.html")
}

func TestDoctorCommand_ReportsMissingSoffice(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SOFFICE_BIN", filepath.Join(t.TempDir(), "no-soffice"))
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"doctor"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "soffice  missing")
}

type fakeStore map[string]string

func (s fakeStore) OpenDocument(ctx context.Context, filename string) (*domain.Document, error) {
	content, ok := s[filename]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return &domain.Document{Filename: filename, Content: content}, nil
}

func TestLoadExportSource(t *testing.T) {
	store := fakeStore{"notes.html": "<p>stored</p>"}
	ctx := context.Background()

	got, err := loadExportSource(ctx, store, nil, "notes.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>stored</p>", got)

	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>file</p>"), 0o644))
	got, err = loadExportSource(ctx, store, nil, path)
	require.NoError(t, err)
	assert.Equal(t, "<p>file</p>", got)

	got, err = loadExportSource(ctx, store, strings.NewReader("<p>in</p>"), "-")
	require.NoError(t, err)
	assert.Equal(t, "<p>in</p>", got)
}
