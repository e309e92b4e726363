package sysinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/system"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1.00 PB"},
		{1 << 60, "1.00 EB"},
		{^uint64(0), "16.00 EB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatBytes(c.in))
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "0 minutes"},
		{time.Minute, "1 minute"},
		{90 * time.Minute, "1 hour, 30 minutes"},
		{2 * time.Hour, "2 hours"},
		{26*time.Hour + 5*time.Minute, "1 day, 2 hours, 5 minutes"},
		{49 * time.Hour, "2 days, 1 hour"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatUptime(c.in))
	}
}

func seedTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"report.txt":        "hello",
		"notes.txt":         "more text",
		"song.mp3":          "xxxx",
		"sub/deep/plan.txt": "nested",
		"sub/photo.jpg":     "yy",
		"README":            "no extension",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestSearchFiles(t *testing.T) {
	a := NewAnalyzer(system.Detect())
	dir := seedTree(t)

	found, err := a.SearchFiles(dir, "*.txt", 100)
	require.NoError(t, err)
	assert.Len(t, found, 3)
	for _, f := range found {
		assert.Equal(t, ".txt", filepath.Ext(f))
	}
}

func TestSearchFilesHonorsLimit(t *testing.T) {
	a := NewAnalyzer(system.Detect())
	dir := seedTree(t)

	found, err := a.SearchFiles(dir, "*.txt", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestSearchFilesRejectsMissingRoot(t *testing.T) {
	a := NewAnalyzer(system.Detect())
	_, err := a.SearchFiles(filepath.Join(t.TempDir(), "nope"), "*", 10)
	assert.Error(t, err)
}

func TestAnalyzeFileTypes(t *testing.T) {
	a := NewAnalyzer(system.Detect())
	dir := seedTree(t)

	stats, err := a.AnalyzeFileTypes(dir)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalFiles)
	assert.NotZero(t, stats.TotalSize)

	require.NotEmpty(t, stats.Extensions)
	assert.Equal(t, ".txt", stats.Extensions[0].Ext)
	assert.Equal(t, 3, stats.Extensions[0].Count)
}

func TestMemorySnapshot(t *testing.T) {
	a := NewAnalyzer(system.Detect())
	m, err := a.Memory()
	require.NoError(t, err)
	assert.NotEmpty(t, m.Total)
	assert.GreaterOrEqual(t, m.UsedPercent, 0.0)
}

func TestCPUSnapshot(t *testing.T) {
	a := NewAnalyzer(system.Detect())
	c, err := a.CPU()
	require.NoError(t, err)
	assert.Greater(t, c.LogicalCores, 0)
}

func TestUptime(t *testing.T) {
	a := NewAnalyzer(system.Detect())
	up, err := a.Uptime()
	require.NoError(t, err)
	assert.Greater(t, up, time.Duration(0))
}
