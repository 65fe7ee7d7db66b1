package site

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_ZeroItemsStillValid(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.Write(time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC), nil))

	data, err := os.ReadFile(filepath.Join(dir, "news.json"))
	require.NoError(t, err)

	var feed Feed
	require.NoError(t, json.Unmarshal(data, &feed))
	assert.Equal(t, 0, feed.Count)
	assert.NotNil(t, feed.Items, "items must be an empty list, not null")
	assert.Equal(t, "2026-08-23T09:00:00Z", feed.GeneratedAt)

	page, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "今天没有抓到新闻")
}

func TestWriter_WritesItems(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	items := []Item{
		{
			Source:            "BBC News",
			SourceLang:        "en",
			Title:             "Hello <world>",
			TitleTranslated:   "你好世界",
			Link:              "https://e.com/a",
			PublishedAt:       "2026-08-23T18:00:00+09:00",
			Summary:           "A paragraph.",
			SummaryTranslated: "",
		},
	}
	require.NoError(t, w.Write(time.Now(), items))

	var feed Feed
	data, err := os.ReadFile(filepath.Join(dir, "news.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &feed))
	require.Equal(t, 1, feed.Count)
	assert.Equal(t, "Hello <world>", feed.Items[0].Title)

	page, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "你好世界")
	assert.Contains(t, html, "&lt;world&gt;", "titles are HTML-escaped")
	assert.Contains(t, html, "未翻译", "missing translation shows the marker")
}

func TestWriter_OverwritesWholesale(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.Write(time.Now(), []Item{{Title: "first run", Source: "s"}}))
	require.NoError(t, w.Write(time.Now(), nil))

	data, err := os.ReadFile(filepath.Join(dir, "news.json"))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "first run"))
}

func TestNewWriter_BadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := NewWriter(filepath.Join(file, "sub"))
	assert.Error(t, err)
}
