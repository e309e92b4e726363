package system

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(Detect())
	require.NoError(t, err)
	return h
}

func TestResolvePath(t *testing.T) {
	h := newTestHandler(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~/notes.txt", filepath.Join(home, "notes.txt")},
		{"desktop/report.pdf", filepath.Join(home, "Desktop", "report.pdf")},
		{"Documents/work", filepath.Join(home, "Documents", "work")},
		{"downloads", filepath.Join(home, "Downloads")},
		{"scratch/a.txt", filepath.Join(wd, "scratch", "a.txt")},
		{"/var/tmp/x", filepath.Clean("/var/tmp/x")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.ResolvePath(tt.in), "input %q", tt.in)
	}
}

func TestCreateAndDeleteDirectory(t *testing.T) {
	h := newTestHandler(t)
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, h.CreateDirectory(dir))
	assert.True(t, h.DirExists(dir))

	require.NoError(t, h.DeleteItem(filepath.Dir(dir)))
	assert.False(t, h.DirExists(dir))
}

func TestCreateFileWithParents(t *testing.T) {
	h := newTestHandler(t)
	file := filepath.Join(t.TempDir(), "nested", "note.txt")

	require.NoError(t, h.CreateFile(file, "hello"))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, h.DeleteItem(file))
	_, err = os.Stat(file)
	assert.Error(t, err)
}

func TestDeleteMissingItem(t *testing.T) {
	h := newTestHandler(t)
	assert.Error(t, h.DeleteItem(filepath.Join(t.TempDir(), "nope")))
}

func TestRenameItem(t *testing.T) {
	h := newTestHandler(t)
	dir := filepath.Join(t.TempDir(), "old")
	require.NoError(t, h.CreateDirectory(dir))

	newPath, err := h.RenameItem(dir, "new")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(dir), "new"), newPath)
	assert.True(t, h.DirExists(newPath))
}

func TestExecuteCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix shell expected")
	}
	h := newTestHandler(t)

	out, err := h.ExecuteCommand(context.Background(), "echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)

	_, err = h.ExecuteCommand(context.Background(), "exit 3")
	assert.Error(t, err)
}

func TestResolveWebApp(t *testing.T) {
	for _, p := range []Platform{linuxPlatform{}, darwinPlatform{}, windowsPlatform{}} {
		plan, err := p.Resolve("YouTube")
		require.NoError(t, err, p.Name())
		assert.Equal(t, "https://www.youtube.com", plan.URL, p.Name())
	}
}

func TestResolveAlias(t *testing.T) {
	assert.Equal(t, "vscode", canonicalApp("Visual Studio Code"))
	assert.Equal(t, "chrome", canonicalApp(" browser "))
	assert.Equal(t, "firefox", canonicalApp("Firefox"))
}

func TestPlatformProbesCoverKinds(t *testing.T) {
	for _, p := range []Platform{linuxPlatform{}, darwinPlatform{}, windowsPlatform{}} {
		for _, kind := range []string{"usb", "monitor", "printer", "audio", "bluetooth"} {
			name, _, ok := p.Probe(kind)
			assert.True(t, ok, "%s/%s", p.Name(), kind)
			assert.NotEmpty(t, name)
		}
		_, _, ok := p.Probe("quantum")
		assert.False(t, ok)
	}
}
