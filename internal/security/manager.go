package security

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// Toggle names a boolean privacy setting. The set is fixed; anything else
// is rejected on update.
type Toggle string

const (
	CollectSystemInfo      Toggle = "collect_system_info"
	CollectUsageData       Toggle = "collect_usage_data"
	StoreCommandHistory    Toggle = "store_command_history"
	AllowNetworkAccess     Toggle = "allow_network_access"
	AllowFileSystemAccess  Toggle = "allow_file_system_access"
	AllowProcessManagement Toggle = "allow_process_management"
)

// Toggles in display order.
var AllToggles = []Toggle{
	CollectSystemInfo,
	CollectUsageData,
	StoreCommandHistory,
	AllowNetworkAccess,
	AllowFileSystemAccess,
	AllowProcessManagement,
}

type PrivacySettings struct {
	CollectSystemInfo      bool     `json:"collect_system_info"`
	CollectUsageData       bool     `json:"collect_usage_data"`
	StoreCommandHistory    bool     `json:"store_command_history"`
	AllowNetworkAccess     bool     `json:"allow_network_access"`
	AllowFileSystemAccess  bool     `json:"allow_file_system_access"`
	AllowProcessManagement bool     `json:"allow_process_management"`
	SensitiveDirectories   []string `json:"sensitive_directories"`
	ExcludedFileTypes      []string `json:"excluded_file_types"`
}

func defaultSettings(home string) PrivacySettings {
	return PrivacySettings{
		CollectSystemInfo:      true,
		CollectUsageData:       true,
		StoreCommandHistory:    true,
		AllowNetworkAccess:     true,
		AllowFileSystemAccess:  true,
		AllowProcessManagement: true,
		SensitiveDirectories: []string{
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Pictures"),
		},
		ExcludedFileTypes: []string{
			".password", ".key", ".token", ".secret",
			".credential", ".pem", ".ppk", ".keystore",
		},
	}
}

// Manager owns the privacy settings file and the encrypted secure-storage
// blob. Both are held in memory and rewritten wholesale on every mutation.
type Manager struct {
	dataDir     string
	keyFile     string
	privacyFile string
	storageFile string

	aead     aead
	settings PrivacySettings
	storage  map[string]json.RawMessage
	home     string
}

type aead interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// NewManager loads (or creates) the key file, privacy settings and secure
// storage under dataDir. An empty dataDir means ~/.jarvis/data.
func NewManager(dataDir string) (*Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if dataDir == "" {
		dataDir = filepath.Join(home, ".jarvis", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	m := &Manager{
		dataDir:     dataDir,
		keyFile:     filepath.Join(dataDir, ".key"),
		privacyFile: filepath.Join(dataDir, "privacy_settings.json"),
		storageFile: filepath.Join(dataDir, "secure_storage.enc"),
		home:        home,
	}

	if err := m.initCipher(); err != nil {
		return nil, err
	}
	if err := m.loadSettings(); err != nil {
		return nil, err
	}
	m.loadStorage()

	log.Info("security manager ready", "dir", dataDir)
	return m, nil
}

func (m *Manager) initCipher() error {
	key, err := os.ReadFile(m.keyFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read key file: %w", err)
		}
		key = make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		if err := os.WriteFile(m.keyFile, key, 0o600); err != nil {
			return fmt.Errorf("write key file: %w", err)
		}
		log.Info("generated new storage key")
	}
	if len(key) != chacha20poly1305.KeySize {
		return fmt.Errorf("bad key length: %d", len(key))
	}

	c, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}
	m.aead = c
	return nil
}

func (m *Manager) loadSettings() error {
	// Missing keys in the file keep their defaults; the merged result is
	// written straight back so the file always carries the full key set.
	m.settings = defaultSettings(m.home)

	data, err := os.ReadFile(m.privacyFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read privacy settings: %w", err)
	default:
		if err := json.Unmarshal(data, &m.settings); err != nil {
			log.Error("privacy settings corrupted, resetting", "err", err)
			m.settings = defaultSettings(m.home)
		}
	}

	return m.saveSettings()
}

func (m *Manager) saveSettings() error {
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode privacy settings: %w", err)
	}
	if err := os.WriteFile(m.privacyFile, data, 0o600); err != nil {
		return fmt.Errorf("write privacy settings: %w", err)
	}
	return nil
}

func (m *Manager) loadStorage() {
	m.storage = make(map[string]json.RawMessage)

	blob, err := os.ReadFile(m.storageFile)
	if errors.Is(err, os.ErrNotExist) {
		if err := m.saveStorage(); err != nil {
			log.Error("init secure storage", "err", err)
		}
		return
	}
	if err != nil {
		log.Error("read secure storage", "err", err)
		return
	}

	plain, err := m.decrypt(blob)
	if err == nil {
		err = json.Unmarshal(plain, &m.storage)
	}
	if err != nil {
		// Undecryptable or garbled blob: start over rather than fail startup.
		log.Error("secure storage unreadable, recreating", "err", err)
		m.storage = make(map[string]json.RawMessage)
		if err := m.saveStorage(); err != nil {
			log.Error("recreate secure storage", "err", err)
		}
	}
}

func (m *Manager) saveStorage() error {
	plain, err := json.Marshal(m.storage)
	if err != nil {
		return fmt.Errorf("encode secure storage: %w", err)
	}
	blob, err := m.encrypt(plain)
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.storageFile, blob, 0o600); err != nil {
		return fmt.Errorf("write secure storage: %w", err)
	}
	return nil
}

func (m *Manager) encrypt(plain []byte) ([]byte, error) {
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return m.aead.Seal(nonce, nonce, plain, nil), nil
}

func (m *Manager) decrypt(blob []byte) ([]byte, error) {
	n := m.aead.NonceSize()
	if len(blob) < n {
		return nil, errors.New("blob too short")
	}
	return m.aead.Open(nil, blob[:n], blob[n:], nil)
}

// Settings returns a copy of the current privacy settings.
func (m *Manager) Settings() PrivacySettings {
	s := m.settings
	s.SensitiveDirectories = append([]string(nil), s.SensitiveDirectories...)
	s.ExcludedFileTypes = append([]string(nil), s.ExcludedFileTypes...)
	return s
}

// Enabled reports whether a boolean privacy toggle is on.
func (m *Manager) Enabled(t Toggle) bool {
	switch t {
	case CollectSystemInfo:
		return m.settings.CollectSystemInfo
	case CollectUsageData:
		return m.settings.CollectUsageData
	case StoreCommandHistory:
		return m.settings.StoreCommandHistory
	case AllowNetworkAccess:
		return m.settings.AllowNetworkAccess
	case AllowFileSystemAccess:
		return m.settings.AllowFileSystemAccess
	case AllowProcessManagement:
		return m.settings.AllowProcessManagement
	}
	return false
}

// SetToggle flips a boolean privacy toggle and rewrites the settings file.
func (m *Manager) SetToggle(t Toggle, on bool) error {
	switch t {
	case CollectSystemInfo:
		m.settings.CollectSystemInfo = on
	case CollectUsageData:
		m.settings.CollectUsageData = on
	case StoreCommandHistory:
		m.settings.StoreCommandHistory = on
	case AllowNetworkAccess:
		m.settings.AllowNetworkAccess = on
	case AllowFileSystemAccess:
		m.settings.AllowFileSystemAccess = on
	case AllowProcessManagement:
		m.settings.AllowProcessManagement = on
	default:
		return fmt.Errorf("unknown privacy toggle: %q", t)
	}
	return m.saveSettings()
}

// AddSensitiveDirectory records dir as protected. Returns false when it was
// already present; the settings file is only rewritten on change.
func (m *Manager) AddSensitiveDirectory(dir string) (bool, error) {
	for _, d := range m.settings.SensitiveDirectories {
		if d == dir {
			return false, nil
		}
	}
	m.settings.SensitiveDirectories = append(m.settings.SensitiveDirectories, dir)
	return true, m.saveSettings()
}

// IsSensitivePath reports whether path falls under a protected directory or
// carries an excluded extension.
func (m *Manager) IsSensitivePath(path string) bool {
	for _, dir := range m.settings.SensitiveDirectories {
		if strings.HasPrefix(path, dir) {
			return true
		}
	}
	for _, ext := range m.settings.ExcludedFileTypes {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// AllowFileAccess checks filesystem access against privacy settings.
func (m *Manager) AllowFileAccess(path string) bool {
	if !m.settings.AllowFileSystemAccess {
		log.Warn("file access denied by privacy settings", "path", path)
		return false
	}
	if m.IsSensitivePath(path) {
		log.Warn("access to sensitive path denied", "path", path)
		return false
	}
	return true
}

// StoreSecure writes a value into the encrypted blob under key.
func (m *Manager) StoreSecure(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	m.storage[key] = raw
	return m.saveStorage()
}

// LoadSecure reads a value back; the bool reports whether key was present.
func (m *Manager) LoadSecure(key string, v any) (bool, error) {
	raw, ok := m.storage[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// DeleteSecure removes a key from the blob. Deleting a missing key is a no-op.
func (m *Manager) DeleteSecure(key string) error {
	if _, ok := m.storage[key]; !ok {
		return nil
	}
	delete(m.storage, key)
	return m.saveStorage()
}

// HasStorageFile reports whether the encrypted blob exists on disk.
func (m *Manager) HasStorageFile() bool {
	_, err := os.Stat(m.storageFile)
	return err == nil
}

// HasSettingsFile reports whether the privacy settings file exists on disk.
func (m *Manager) HasSettingsFile() bool {
	_, err := os.Stat(m.privacyFile)
	return err == nil
}

// AccessEntry is one line of the data-access audit log.
type AccessEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	DataType    string    `json:"data_type"`
	Description string    `json:"description"`
}

const accessLogKey = "access_log"
const accessLogCap = 1000

// LogAccess appends an audit entry, keeping only the newest entries.
func (m *Manager) LogAccess(dataType, description string) {
	var entries []AccessEntry
	if _, err := m.LoadSecure(accessLogKey, &entries); err != nil {
		log.Error("read access log", "err", err)
		entries = nil
	}
	entries = append(entries, AccessEntry{
		Timestamp:   time.Now(),
		DataType:    dataType,
		Description: description,
	})
	if len(entries) > accessLogCap {
		entries = entries[len(entries)-accessLogCap:]
	}
	if err := m.StoreSecure(accessLogKey, entries); err != nil {
		log.Error("write access log", "err", err)
	}
}

// AccessLog returns the audit log, oldest first.
func (m *Manager) AccessLog() []AccessEntry {
	var entries []AccessEntry
	if _, err := m.LoadSecure(accessLogKey, &entries); err != nil {
		log.Error("read access log", "err", err)
		return nil
	}
	return entries
}

// ClearAll wipes secure storage and resets privacy settings to defaults.
func (m *Manager) ClearAll() error {
	m.storage = make(map[string]json.RawMessage)
	if err := m.saveStorage(); err != nil {
		return err
	}
	m.settings = defaultSettings(m.home)
	return m.saveSettings()
}
