package security

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("not an encrypted blob"), 0o600)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestDefaultsCreatedOnFirstRun(t *testing.T) {
	m := newTestManager(t)

	s := m.Settings()
	assert.True(t, s.CollectSystemInfo)
	assert.True(t, s.AllowFileSystemAccess)
	assert.Len(t, s.SensitiveDirectories, 3)
	assert.Contains(t, s.ExcludedFileTypes, ".pem")
	assert.True(t, m.HasSettingsFile())
	assert.True(t, m.HasStorageFile())
}

func TestSetToggle(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, m.SetToggle(AllowNetworkAccess, false))
	assert.False(t, m.Enabled(AllowNetworkAccess))

	// The change must survive a reload from disk.
	m2, err := NewManager(dir)
	require.NoError(t, err)
	assert.False(t, m2.Enabled(AllowNetworkAccess))
	assert.True(t, m2.Enabled(CollectSystemInfo))
}

func TestSetToggleUnknownKey(t *testing.T) {
	m := newTestManager(t)
	assert.Error(t, m.SetToggle(Toggle("telemetry"), true))
}

func TestSecureStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	type note struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}
	want := note{Title: "grocery list", Count: 7}
	require.NoError(t, m.StoreSecure("note", want))

	// Simulated restart: a fresh manager re-reads the encrypted blob with
	// the persisted key file.
	m2, err := NewManager(dir)
	require.NoError(t, err)

	var got note
	ok, err := m2.LoadSecure("note", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLoadSecureMissingKey(t *testing.T) {
	m := newTestManager(t)

	var v string
	ok, err := m.LoadSecure("nope", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteSecure(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.StoreSecure("token", "abc"))
	require.NoError(t, m.DeleteSecure("token"))

	var v string
	ok, _ := m.LoadSecure("token", &v)
	assert.False(t, ok)

	assert.NoError(t, m.DeleteSecure("token"))
}

func TestSensitivePaths(t *testing.T) {
	m := newTestManager(t)

	added, err := m.AddSensitiveDirectory("/srv/private")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.AddSensitiveDirectory("/srv/private")
	require.NoError(t, err)
	assert.False(t, added)

	assert.True(t, m.IsSensitivePath("/srv/private/diary.txt"))
	assert.True(t, m.IsSensitivePath("/tmp/id_rsa.pem"))
	assert.False(t, m.IsSensitivePath("/tmp/readme.md"))
}

func TestAllowFileAccess(t *testing.T) {
	m := newTestManager(t)

	assert.True(t, m.AllowFileAccess("/tmp/scratch.txt"))

	require.NoError(t, m.SetToggle(AllowFileSystemAccess, false))
	assert.False(t, m.AllowFileAccess("/tmp/scratch.txt"))
}

func TestAccessLogCapped(t *testing.T) {
	m := newTestManager(t)

	for i := 0; i < accessLogCap+10; i++ {
		m.LogAccess("test", "entry")
	}
	assert.Len(t, m.AccessLog(), accessLogCap)
}

func TestClearAll(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.StoreSecure("secret", "x"))
	require.NoError(t, m.SetToggle(CollectUsageData, false))
	_, err := m.AddSensitiveDirectory("/srv/private")
	require.NoError(t, err)

	require.NoError(t, m.ClearAll())

	var v string
	ok, _ := m.LoadSecure("secret", &v)
	assert.False(t, ok)
	assert.True(t, m.Enabled(CollectUsageData))
	assert.Len(t, m.Settings().SensitiveDirectories, 3)
}

func TestCorruptStorageRecreated(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)
	require.NoError(t, m.StoreSecure("k", "v"))

	// Garble the blob on disk; a fresh manager must start empty, not fail.
	require.NoError(t, writeGarbage(m.storageFile))

	m2, err := NewManager(dir)
	require.NoError(t, err)

	var v string
	ok, _ := m2.LoadSecure("k", &v)
	assert.False(t, ok)
}
