// ABOUTME: Tests for the bookmarkd command line
// ABOUTME: Covers path resolution, flag parsing, list/import commands and the color log handler

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bookmarkd/internal/bookmark"
	"github.com/2389/bookmarkd/internal/config"
)

func TestGetConfigPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("BOOKMARKD_CONFIG", "/etc/bookmarkd.yaml")
		assert.Equal(t, "/etc/bookmarkd.yaml", getConfigPath())
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv("BOOKMARKD_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		assert.Equal(t, filepath.Join("/tmp/xdg", "bookmarkd", "config.yaml"), getConfigPath())
	})
}

func TestGetDataPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	assert.Equal(t, filepath.Join("/tmp/data", "bookmarkd"), getDataPath())
}

func TestParseListArgs(t *testing.T) {
	tests := []struct {
		args    []string
		want    listOptions
		wantErr bool
	}{
		{nil, listOptions{}, false},
		{[]string{"--category", "News"}, listOptions{category: "News"}, false},
		{[]string{"-c", "News", "--desc"}, listOptions{category: "News", desc: true}, false},
		{[]string{"--category=Lang"}, listOptions{category: "Lang"}, false},
		{[]string{"--category"}, listOptions{}, true},
		{[]string{"--verbose"}, listOptions{}, true},
		{[]string{"extra"}, listOptions{}, true},
	}

	for _, tt := range tests {
		got, err := parseListArgs(tt.args)
		if tt.wantErr {
			assert.Error(t, err, "args=%v", tt.args)
			continue
		}
		require.NoError(t, err, "args=%v", tt.args)
		assert.Equal(t, tt.want, got)
	}
}

func TestListOptions_Query(t *testing.T) {
	q := listOptions{category: "News", desc: true}.query()
	assert.True(t, q.Search)
	assert.Equal(t, "news", q.Category)
	assert.False(t, q.SortAscending)

	assert.Equal(t, bookmark.DefaultQuery(), listOptions{}.query())
}

// writeTestConfig points BOOKMARKD_CONFIG at a config using the given storage
func writeTestConfig(t *testing.T, storagePath string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_addr: "127.0.0.1:0"
storage:
  backend: file
  path: "` + storagePath + `"
session:
  secret: "0123456789abcdef0123456789abcdef"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("BOOKMARKD_CONFIG", path)
	t.Setenv("BOOKMARKD_STORAGE_PATH", "")
}

func TestImportThenList(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	writeTestConfig(t, filepath.Join(dir, "bookmarks.json"))

	legacy := filepath.Join(dir, "Bookmarks.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`[
  {"Id": 7, "Title": "Go", "Url": "https://go.dev", "Category": "Lang"},
  {"Id": 9, "Title": "Hacker News", "Url": "https://news.ycombinator.com", "Category": "News"},
  {"Id": 11, "Title": "Broken", "Url": "not a url", "Category": "News"}
]`), 0644))

	var out bytes.Buffer
	require.NoError(t, runImport(context.Background(), []string{legacy}, &out))
	assert.Contains(t, out.String(), "Imported 2 bookmark(s)")
	assert.Contains(t, out.String(), "skipped 1 invalid")

	out.Reset()
	require.NoError(t, runList(context.Background(), nil, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "1 "), "imported bookmarks get new ids: %q", lines[1])
	assert.Contains(t, lines[1], "Go")
	assert.Contains(t, lines[2], "Hacker News")

	out.Reset()
	require.NoError(t, runList(context.Background(), []string{"--category", "news"}, &out))
	assert.NotContains(t, out.String(), "go.dev")
	assert.Contains(t, out.String(), "Hacker News")
}

func TestImport_MissingFile(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, filepath.Join(dir, "bookmarks.json"))

	err := runImport(context.Background(), []string{filepath.Join(dir, "nope.json")}, &bytes.Buffer{})
	assert.Error(t, err)

	err = runImport(context.Background(), nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintBookmarks_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printBookmarks(&out, nil))
	assert.Equal(t, "No bookmarks.\n", out.String())
}

func TestColorHandler(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer

	logger := setupLogger(config.LoggingConfig{Level: "info", Format: "text"}, &out)
	logger.Debug("hidden")
	logger.With("component", "store").WithGroup("req").Info("saved", "id", 3)

	text := out.String()
	assert.NotContains(t, text, "hidden")
	assert.Contains(t, text, "INF saved")
	assert.Contains(t, text, "component=store")
	assert.Contains(t, text, "req.id=3")
}

func TestSetupLogger_JSON(t *testing.T) {
	var out bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &out)
	logger.Debug("visible")

	assert.Contains(t, out.String(), `"msg":"visible"`)
	assert.Equal(t, logger, slog.Default())
}
