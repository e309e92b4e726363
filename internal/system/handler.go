package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const execTimeout = 30 * time.Second

// Handler performs filesystem operations, application launches and shell
// execution on behalf of command handlers. All paths go through ResolvePath
// first.
type Handler struct {
	platform  Platform
	home      string
	desktop   string
	documents string
	downloads string
}

func NewHandler(platform Platform) (*Handler, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("user home: %w", err)
	}
	log.Info("system handler ready", "platform", platform.Name())
	return &Handler{
		platform:  platform,
		home:      home,
		desktop:   filepath.Join(home, "Desktop"),
		documents: filepath.Join(home, "Documents"),
		downloads: filepath.Join(home, "Downloads"),
	}, nil
}

func (h *Handler) Platform() Platform { return h.platform }

// ResolvePath turns a spoken path into an absolute one. A leading "~" is
// expanded; bare "desktop", "documents" and "downloads" prefixes resolve
// against the well-known user folders; anything else is taken relative to
// the working directory unless already absolute.
func (h *Handler) ResolvePath(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "~") {
		return filepath.Join(h.home, strings.TrimLeft(s[1:], `/\`))
	}

	lower := strings.ToLower(s)
	for prefix, root := range map[string]string{
		"desktop":   h.desktop,
		"documents": h.documents,
		"downloads": h.downloads,
	} {
		if strings.HasPrefix(lower, prefix) {
			rest := strings.TrimLeft(s[len(prefix):], `/\`)
			return filepath.Join(root, rest)
		}
	}

	if filepath.IsAbs(s) {
		return filepath.Clean(s)
	}
	wd, err := os.Getwd()
	if err != nil {
		return s
	}
	return filepath.Join(wd, s)
}

// CreateDirectory makes the directory (and any missing parents).
func (h *Handler) CreateDirectory(dir string) error {
	path := h.ResolvePath(dir)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	log.Info("created directory", "path", path)
	return nil
}

// CreateFile writes content to a new file, creating parent directories.
func (h *Handler) CreateFile(file, content string) error {
	path := h.ResolvePath(file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	log.Info("created file", "path", path)
	return nil
}

// DeleteItem removes a file or a whole directory tree.
func (h *Handler) DeleteItem(target string) error {
	path := h.ResolvePath(target)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	log.Info("deleted", "path", path, "dir", info.IsDir())
	return nil
}

// RenameItem renames a file or directory in place and returns the new path.
func (h *Handler) RenameItem(target, newName string) (string, error) {
	oldPath := h.ResolvePath(target)
	if _, err := os.Stat(oldPath); err != nil {
		return "", fmt.Errorf("stat %s: %w", oldPath, err)
	}
	newPath := filepath.Join(filepath.Dir(oldPath), newName)
	if err := os.Rename(oldPath, newPath); err != nil {
		return "", fmt.Errorf("rename %s: %w", oldPath, err)
	}
	log.Info("renamed", "from", oldPath, "to", newPath)
	return newPath, nil
}

// DirExists reports whether path resolves to an existing directory.
func (h *Handler) DirExists(path string) bool {
	info, err := os.Stat(h.ResolvePath(path))
	return err == nil && info.IsDir()
}

// ExecuteCommand runs line through the platform shell with a hard timeout.
// It returns combined-ish output: stdout on success, stderr (or the error)
// on failure.
func (h *Handler) ExecuteCommand(ctx context.Context, line string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()

	shell, args := h.platform.Shell()
	cmd := exec.CommandContext(ctx, shell, append(args, line)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("command timed out after %s", execTimeout)
	}
	if err != nil {
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		log.Error("command failed", "cmd", line, "err", reason)
		return "", errors.New(reason)
	}

	log.Info("command executed", "cmd", line)
	return stdout.String(), nil
}

// OpenApplication resolves an application name and launches it detached.
func (h *Handler) OpenApplication(name string, args ...string) error {
	plan, err := h.platform.Resolve(name)
	if err != nil {
		return err
	}
	if err := h.platform.Launch(plan, args...); err != nil {
		return fmt.Errorf("launch %s: %w", name, err)
	}
	return nil
}
