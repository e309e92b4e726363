package command

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/security"
	"jarvis/internal/system"
)

type fakeSpeaker struct {
	lines []string
}

func (s *fakeSpeaker) Speak(text string) { s.lines = append(s.lines, text) }

func (s *fakeSpeaker) reset() { s.lines = nil }

type fakePrompter struct {
	confirmAnswer bool
	askAnswer     string
	askOK         bool
	questions     []string
}

func (p *fakePrompter) Confirm(q string) bool {
	p.questions = append(p.questions, q)
	return p.confirmAnswer
}

func (p *fakePrompter) Ask(q string) (string, bool) {
	p.questions = append(p.questions, q)
	return p.askAnswer, p.askOK
}

func newTestProcessor(t *testing.T, cfg Config) (*Processor, *fakeSpeaker) {
	t.Helper()
	speaker := &fakeSpeaker{}
	cfg.Speaker = speaker
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	return NewProcessor(cfg), speaker
}

func newSystemHandler(t *testing.T) *system.Handler {
	t.Helper()
	h, err := system.NewHandler(system.Detect())
	require.NoError(t, err)
	return h
}

func TestEveryInputProducesOutput(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	inputs := []string{
		"what time is it",
		"what's the weather like",
		"thank you",
		"who are you",
		"help",
		"complete gibberish nobody planned for",
		"zzz",
	}
	for _, input := range inputs {
		speaker.reset()
		p.Process(context.Background(), input)
		assert.NotEmpty(t, speaker.lines, "input %q produced no utterance", input)
	}
}

func TestEmptyInput(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	p.Process(context.Background(), "   ")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "didn't catch that")
}

func TestTimeCommand(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	p.Process(context.Background(), "what time is it")
	require.Len(t, speaker.lines, 1)
	hasMeridiem := strings.Contains(speaker.lines[0], "AM") || strings.Contains(speaker.lines[0], "PM")
	assert.True(t, hasMeridiem, "expected a 12-hour clock time, got %q", speaker.lines[0])
}

func TestDateCommand(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	p.Process(context.Background(), "what's the date")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "Today is")
}

func TestCreateFolderSuccess(t *testing.T) {
	t.Chdir(t.TempDir())
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t)})

	p.Process(context.Background(), "create a folder called notes")

	require.Len(t, speaker.lines, 2)
	assert.Contains(t, speaker.lines[0], "Creating directory notes")
	assert.Contains(t, speaker.lines[1], "has been created")
	assert.DirExists(t, "notes")
}

func TestCreateFolderFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("blocker", nil, 0o644))
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t)})

	p.Process(context.Background(), "create a folder called blocker/sub")

	require.Len(t, speaker.lines, 2)
	assert.Contains(t, speaker.lines[0], "Creating directory")
	assert.Contains(t, speaker.lines[1], "couldn't create")
}

func TestDangerousCommandRefused(t *testing.T) {
	for _, input := range []string{
		"run command rm -rf /",
		"execute command rm -rf /home",
		"execute the command format c:",
		"run command del /f everything",
		"execute command drop database users",
	} {
		p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t)})
		p.Process(context.Background(), input)
		require.Len(t, speaker.lines, 1, "input %q", input)
		assert.Contains(t, speaker.lines[0], "potentially harmful")
	}
}

func TestExecuteCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell")
	}
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t)})
	p.Process(context.Background(), "run command echo hello")

	require.GreaterOrEqual(t, len(speaker.lines), 2)
	assert.Contains(t, speaker.lines[0], "Executing command")
	assert.Contains(t, speaker.lines[1], "executed successfully")
	assert.Contains(t, strings.Join(speaker.lines, " "), "hello")
}

// overlapSpeaker flags any two utterances voiced concurrently.
type overlapSpeaker struct {
	active  atomic.Int32
	overlap atomic.Bool
}

func (s *overlapSpeaker) Speak(string) {
	if s.active.Add(1) > 1 {
		s.overlap.Store(true)
	}
	time.Sleep(time.Millisecond)
	s.active.Add(-1)
}

func TestInjectedCommandsSerialize(t *testing.T) {
	sec, err := security.NewManager(t.TempDir())
	require.NoError(t, err)

	detector := &overlapSpeaker{}
	base := NewProcessor(Config{Speaker: detector, Security: sec, Seed: 1})
	clone := base.WithSpeaker(detector)
	assert.Same(t, base.mu, clone.mu)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		p, cmd := base, "enable network data collection"
		if i%2 == 1 {
			p, cmd = clone, "disable network data collection"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				p.Process(context.Background(), cmd)
			}
		}()
	}
	wg.Wait()

	assert.False(t, detector.overlap.Load(), "injected commands ran concurrently with the base processor")
}

func TestPrivacySettingMapping(t *testing.T) {
	sec, err := security.NewManager(t.TempDir())
	require.NoError(t, err)
	p, speaker := newTestProcessor(t, Config{Security: sec})

	p.Process(context.Background(), "disable network data collection")
	require.NotEmpty(t, speaker.lines)
	assert.Contains(t, speaker.lines[0], "disabled network")
	assert.False(t, sec.Enabled(security.AllowNetworkAccess))

	speaker.reset()
	p.Process(context.Background(), "enable internet data collection")
	assert.True(t, sec.Enabled(security.AllowNetworkAccess))

	speaker.reset()
	p.Process(context.Background(), "enable file access data collection")
	assert.True(t, sec.Enabled(security.AllowFileSystemAccess))
}

func TestUnknownPrivacySetting(t *testing.T) {
	sec, err := security.NewManager(t.TempDir())
	require.NoError(t, err)
	p, speaker := newTestProcessor(t, Config{Security: sec})

	p.Process(context.Background(), "enable telepathy data collection")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "not familiar")
	assert.Contains(t, speaker.lines[0], "usage data")
}

func TestShowPrivacySettingsIdempotent(t *testing.T) {
	sec, err := security.NewManager(t.TempDir())
	require.NoError(t, err)
	p, speaker := newTestProcessor(t, Config{Security: sec})

	p.Process(context.Background(), "show privacy settings")
	require.Len(t, speaker.lines, 1)
	first := speaker.lines[0]

	speaker.reset()
	p.Process(context.Background(), "show my privacy settings")
	require.Len(t, speaker.lines, 1)
	assert.Equal(t, first, speaker.lines[0])
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("victim.txt", []byte("x"), 0o644))

	prompter := &fakePrompter{confirmAnswer: false}
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t), Prompter: prompter})

	p.Process(context.Background(), "delete the file victim.txt")

	assert.FileExists(t, "victim.txt")
	require.NotEmpty(t, prompter.questions)
	assert.Contains(t, strings.Join(speaker.lines, " "), "cancelled")
}

func TestDeleteConfirmed(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("victim.txt", []byte("x"), 0o644))

	prompter := &fakePrompter{confirmAnswer: true}
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t), Prompter: prompter})

	p.Process(context.Background(), "delete the file victim.txt")

	assert.NoFileExists(t, "victim.txt")
	assert.Contains(t, strings.Join(speaker.lines, " "), "has been deleted")
}

func TestDeleteWithoutPrompterRefused(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("victim.txt", []byte("x"), 0o644))

	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t)})
	p.Process(context.Background(), "delete the file victim.txt")

	assert.FileExists(t, "victim.txt")
	assert.Contains(t, strings.Join(speaker.lines, " "), "won't proceed")
}

func TestRenameDirectoryViaPrompt(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.Mkdir("drafts", 0o755))

	prompter := &fakePrompter{askAnswer: "final", askOK: true}
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t), Prompter: prompter})

	p.Process(context.Background(), "update the folder called drafts")

	assert.DirExists(t, "final")
	assert.NoDirExists(t, "drafts")
	assert.Contains(t, strings.Join(speaker.lines, " "), "renamed")
}

func TestInsertIntoDirectory(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.Mkdir("inbox", 0o755))

	prompter := &fakePrompter{askAnswer: "note.txt", askOK: true}
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t), Prompter: prompter})

	p.Process(context.Background(), "insert into folder called inbox")

	assert.FileExists(t, filepath.Join("inbox", "note.txt"))
	assert.Contains(t, strings.Join(speaker.lines, " "), "has been created")
}

func TestSensitivePathRefused(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	sec, err := security.NewManager(filepath.Join(dir, "data"))
	require.NoError(t, err)

	secret := filepath.Join(dir, "vault")
	require.NoError(t, os.Mkdir(secret, 0o755))
	_, err = sec.AddSensitiveDirectory(secret)
	require.NoError(t, err)

	// Spoken input is lower-cased, so the command names the directory with
	// a relative path that survives normalization.
	p, speaker := newTestProcessor(t, Config{System: newSystemHandler(t), Security: sec})
	p.Process(context.Background(), "create a file called vault/diary.txt")

	assert.NoFileExists(t, filepath.Join(secret, "diary.txt"))
	assert.Contains(t, strings.Join(speaker.lines, " "), "protected")
}

func TestDeviceMonitoringUnavailable(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	p.Process(context.Background(), "tell me about my usb devices")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "device monitoring")
}

func TestAnalysisUnavailable(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	p.Process(context.Background(), "what's my cpu info")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "system analysis")
}

func TestShutdown(t *testing.T) {
	stopped := false
	p, speaker := newTestProcessor(t, Config{OnShutdown: func() { stopped = true }})
	p.Process(context.Background(), "goodbye")

	assert.True(t, stopped)
	assert.Contains(t, strings.Join(speaker.lines, " "), "Goodbye")
}

func TestWeatherWithoutLocation(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	p.Process(context.Background(), "what's the weather like")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "which location")
}

func TestWeatherWithLocation(t *testing.T) {
	p, speaker := newTestProcessor(t, Config{})
	p.Process(context.Background(), "what's the weather like in paris")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "paris")
}

func TestClearDataConfirmed(t *testing.T) {
	sec, err := security.NewManager(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, sec.SetToggle(security.AllowNetworkAccess, false))

	prompter := &fakePrompter{confirmAnswer: true}
	p, speaker := newTestProcessor(t, Config{Security: sec, Prompter: prompter})
	p.Process(context.Background(), "clear all my data")

	assert.Contains(t, strings.Join(speaker.lines, " "), "has been cleared")
	assert.True(t, sec.Enabled(security.AllowNetworkAccess), "settings reset to defaults")
}

func TestSecurityStatus(t *testing.T) {
	sec, err := security.NewManager(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, sec.StoreSecure("greeting", "hello"))

	p, speaker := newTestProcessor(t, Config{Security: sec})
	p.Process(context.Background(), "is my data secure")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "Your data is secure")
}

func TestAccessLogSpoken(t *testing.T) {
	sec, err := security.NewManager(t.TempDir())
	require.NoError(t, err)
	sec.LogAccess("system_info", "CPU details requested")

	p, speaker := newTestProcessor(t, Config{Security: sec})
	p.Process(context.Background(), "show data access log")
	require.Len(t, speaker.lines, 1)
	assert.Contains(t, speaker.lines[0], "CPU details requested")
	assert.Contains(t, speaker.lines[0], "Showing 1 of 1 total entries")
}
