package system

import (
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// LaunchPlan is a resolved launch target: either an executable with
// arguments or a URL to hand to the system opener.
type LaunchPlan struct {
	Path string
	Args []string
	URL  string
}

// Platform bundles the OS-specific pieces: application path resolution,
// process launching, the shell wrapper and the probe commands the inventory
// collaborators shell out to. One implementation per OS, selected once at
// startup.
type Platform interface {
	Name() string
	Resolve(app string) (LaunchPlan, error)
	Launch(plan LaunchPlan, extra ...string) error
	Shell() (string, []string)
	Probe(kind string) (string, []string, bool)
}

// Detect picks the platform implementation for the running OS.
func Detect() Platform {
	switch runtime.GOOS {
	case "windows":
		return windowsPlatform{}
	case "darwin":
		return darwinPlatform{}
	default:
		return linuxPlatform{}
	}
}

// Spoken names that map onto a canonical application key before any lookup.
var appAliases = map[string]string{
	"vs code":            "vscode",
	"visual studio code": "vscode",
	"code editor":        "vscode",
	"browser":            "chrome",
	"web browser":        "chrome",
	"command prompt":     "cmd",
}

// Well-known sites spoken as application names.
var webApps = map[string]string{
	"google":    "https://www.google.com",
	"gmail":     "https://mail.google.com",
	"youtube":   "https://www.youtube.com",
	"netflix":   "https://www.netflix.com",
	"spotify":   "https://open.spotify.com",
	"github":    "https://github.com",
	"reddit":    "https://www.reddit.com",
	"twitter":   "https://twitter.com",
	"facebook":  "https://www.facebook.com",
	"instagram": "https://www.instagram.com",
	"linkedin":  "https://www.linkedin.com",
	"amazon":    "https://www.amazon.com",
}

func canonicalApp(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := appAliases[name]; ok {
		return alias
	}
	return name
}

// resolveCommon runs the strategies shared by every OS: alias expansion, the
// web-app table, a per-OS known-paths table and finally PATH lookup.
func resolveCommon(name string, known map[string]string) (LaunchPlan, bool) {
	app := canonicalApp(name)

	if url, ok := webApps[app]; ok {
		return LaunchPlan{URL: url}, true
	}

	if path, ok := known[app]; ok {
		if filepath.IsAbs(path) {
			if _, err := os.Stat(path); err == nil {
				return LaunchPlan{Path: path}, true
			}
		} else {
			if found, err := exec.LookPath(path); err == nil {
				return LaunchPlan{Path: found}, true
			}
		}
	}

	if found, err := exec.LookPath(app); err == nil {
		return LaunchPlan{Path: found}, true
	}

	return LaunchPlan{}, false
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Detach: the assistant never waits on launched applications, but the
	// zombie must still be reaped.
	go func() { _ = cmd.Wait() }()
	log.Debug("launched", "cmd", name, "args", args)
	return nil
}

// --- linux ---

type linuxPlatform struct{}

func (linuxPlatform) Name() string { return "linux" }

var linuxApps = map[string]string{
	"vscode":   "code",
	"chrome":   "google-chrome",
	"firefox":  "firefox",
	"gedit":    "gedit",
	"files":    "nautilus",
	"terminal": "gnome-terminal",
}

func (p linuxPlatform) Resolve(app string) (LaunchPlan, error) {
	if plan, ok := resolveCommon(app, linuxApps); ok {
		return plan, nil
	}
	// xdg-open copes with anything the desktop knows how to handle.
	if opener, err := exec.LookPath("xdg-open"); err == nil {
		return LaunchPlan{Path: opener, Args: []string{canonicalApp(app)}}, nil
	}
	return LaunchPlan{}, fmt.Errorf("application not found: %s", app)
}

func (p linuxPlatform) Launch(plan LaunchPlan, extra ...string) error {
	if plan.URL != "" {
		return startDetached("xdg-open", plan.URL)
	}
	return startDetached(plan.Path, append(plan.Args, extra...)...)
}

func (linuxPlatform) Shell() (string, []string) { return "sh", []string{"-c"} }

func (linuxPlatform) Probe(kind string) (string, []string, bool) {
	switch kind {
	case "usb":
		return "lsusb", nil, true
	case "monitor":
		return "xrandr", []string{"--query"}, true
	case "printer":
		return "lpstat", []string{"-p"}, true
	case "audio":
		return "pactl", []string{"list", "short", "sinks"}, true
	case "audio-in":
		return "pactl", []string{"list", "short", "sources"}, true
	case "bluetooth":
		return "bluetoothctl", []string{"devices"}, true
	case "graphics":
		return "lspci", []string{"-mm"}, true
	case "apps":
		return "sh", []string{"-c", "ls /usr/share/applications"}, true
	}
	return "", nil, false
}

// --- darwin ---

type darwinPlatform struct{}

func (darwinPlatform) Name() string { return "darwin" }

var darwinApps = map[string]string{
	"vscode":   "/Applications/Visual Studio Code.app/Contents/MacOS/Electron",
	"chrome":   "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"safari":   "/Applications/Safari.app/Contents/MacOS/Safari",
	"firefox":  "/Applications/Firefox.app/Contents/MacOS/firefox",
	"textedit": "/Applications/TextEdit.app/Contents/MacOS/TextEdit",
	"terminal": "/Applications/Utilities/Terminal.app/Contents/MacOS/Terminal",
}

func (p darwinPlatform) Resolve(app string) (LaunchPlan, error) {
	if plan, ok := resolveCommon(app, darwinApps); ok {
		return plan, nil
	}
	// `open -a` resolves by app-bundle name.
	return LaunchPlan{Path: "open", Args: []string{"-a", canonicalApp(app)}}, nil
}

func (p darwinPlatform) Launch(plan LaunchPlan, extra ...string) error {
	if plan.URL != "" {
		return startDetached("open", plan.URL)
	}
	return startDetached(plan.Path, append(plan.Args, extra...)...)
}

func (darwinPlatform) Shell() (string, []string) { return "sh", []string{"-c"} }

func (darwinPlatform) Probe(kind string) (string, []string, bool) {
	switch kind {
	case "usb":
		return "system_profiler", []string{"SPUSBDataType"}, true
	case "monitor":
		return "system_profiler", []string{"SPDisplaysDataType"}, true
	case "printer":
		return "lpstat", []string{"-p"}, true
	case "audio":
		return "system_profiler", []string{"SPAudioDataType"}, true
	case "bluetooth":
		return "system_profiler", []string{"SPBluetoothDataType"}, true
	case "graphics":
		return "system_profiler", []string{"SPDisplaysDataType"}, true
	case "apps":
		return "sh", []string{"-c", "ls /Applications"}, true
	}
	return "", nil, false
}

// --- windows ---

type windowsPlatform struct{}

func (windowsPlatform) Name() string { return "windows" }

var windowsApps = map[string]string{
	"notepad":    `C:\Windows\System32\notepad.exe`,
	"explorer":   `C:\Windows\explorer.exe`,
	"chrome":     `C:\Program Files\Google\Chrome\Application\chrome.exe`,
	"edge":       `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
	"firefox":    `C:\Program Files\Mozilla Firefox\firefox.exe`,
	"powershell": `C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`,
	"cmd":        `C:\Windows\System32\cmd.exe`,
	"vscode":     "code",
	"calculator": "calc.exe",
	"paint":      "mspaint.exe",
	"taskmgr":    "taskmgr.exe",
}

func (p windowsPlatform) Resolve(app string) (LaunchPlan, error) {
	if plan, ok := resolveCommon(app, windowsApps); ok {
		return plan, nil
	}
	// `start` falls back to shell association lookup.
	return LaunchPlan{Path: "cmd", Args: []string{"/c", "start", "", canonicalApp(app)}}, nil
}

func (p windowsPlatform) Launch(plan LaunchPlan, extra ...string) error {
	if plan.URL != "" {
		return startDetached("cmd", "/c", "start", "", plan.URL)
	}
	return startDetached(plan.Path, append(plan.Args, extra...)...)
}

func (windowsPlatform) Shell() (string, []string) { return "cmd", []string{"/c"} }

func (windowsPlatform) Probe(kind string) (string, []string, bool) {
	switch kind {
	case "usb":
		return "powershell", []string{"-Command", "Get-PnpDevice -Class USB | Format-List FriendlyName,Status"}, true
	case "monitor":
		return "powershell", []string{"-Command", "Get-CimInstance Win32_DesktopMonitor | Format-List Name,ScreenWidth,ScreenHeight"}, true
	case "printer":
		return "powershell", []string{"-Command", "Get-Printer | Format-List Name,PrinterStatus"}, true
	case "audio":
		return "powershell", []string{"-Command", "Get-CimInstance Win32_SoundDevice | Format-List Name,Status"}, true
	case "bluetooth":
		return "powershell", []string{"-Command", "Get-PnpDevice -Class Bluetooth | Format-List FriendlyName,Status"}, true
	case "graphics":
		return "powershell", []string{"-Command", "Get-CimInstance Win32_VideoController | Format-List Name,DriverVersion"}, true
	case "apps":
		return "powershell", []string{"-Command", "Get-CimInstance Win32_Product | Format-List Name,Version"}, true
	}
	return "", nil, false
}
