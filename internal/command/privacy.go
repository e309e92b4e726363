package command

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"

	"jarvis/internal/security"
)

const securityUnavailable = "Security management is not available."

// settingNames maps spoken setting phrases to privacy toggles.
var settingNames = map[string]security.Toggle{
	"system info":        security.CollectSystemInfo,
	"system information": security.CollectSystemInfo,
	"usage":              security.CollectUsageData,
	"usage data":         security.CollectUsageData,
	"command history":    security.StoreCommandHistory,
	"network":            security.AllowNetworkAccess,
	"internet":           security.AllowNetworkAccess,
	"file system":        security.AllowFileSystemAccess,
	"file access":        security.AllowFileSystemAccess,
	"file":               security.AllowFileSystemAccess,
	"process":            security.AllowProcessManagement,
	"application":        security.AllowProcessManagement,
}

// toggleTitles gives the spoken description of each toggle, in AllToggles
// order for deterministic output.
var toggleTitles = map[security.Toggle]string{
	security.CollectSystemInfo:      "System information collection",
	security.CollectUsageData:       "Usage data collection",
	security.StoreCommandHistory:    "Command history storage",
	security.AllowNetworkAccess:     "Network access",
	security.AllowFileSystemAccess:  "File system access",
	security.AllowProcessManagement: "Application management",
}

func (p *Processor) setPrivacySetting(caps Captures, enable bool) {
	if p.security == nil {
		p.say(securityUnavailable)
		return
	}
	name := strings.ToLower(caps.Get("setting"))
	if name == "" {
		p.say("Please specify a privacy setting to change.")
		return
	}

	toggle, ok := settingNames[name]
	if !ok {
		p.say("I'm not familiar with the privacy setting '" + name + "'. " +
			"Available settings include system info, usage data, command history, network access, file access, and application management.")
		return
	}

	if err := p.security.SetToggle(toggle, enable); err != nil {
		log.Error("privacy toggle update failed", "toggle", toggle, "error", err)
		p.say("I encountered an error while updating privacy settings.")
		return
	}
	verb := "disabled"
	if enable {
		verb = "enabled"
	}
	p.say("I've " + verb + " " + name + " data collection.")
}

func (p *Processor) enablePrivacySetting(_ context.Context, _ string, caps Captures) {
	p.setPrivacySetting(caps, true)
}

func (p *Processor) disablePrivacySetting(_ context.Context, _ string, caps Captures) {
	p.setPrivacySetting(caps, false)
}

func (p *Processor) showPrivacySettings(_ context.Context, _ string, _ Captures) {
	if p.security == nil {
		p.say(securityUnavailable)
		return
	}
	settings := p.security.Settings()

	var enabled, disabled []string
	for _, toggle := range security.AllToggles {
		if p.security.Enabled(toggle) {
			enabled = append(enabled, toggleTitles[toggle])
		} else {
			disabled = append(disabled, toggleTitles[toggle])
		}
	}

	response := "Current privacy settings: "
	if len(enabled) > 0 {
		response += "Enabled: " + strings.Join(enabled, ", ") + ". "
	}
	if len(disabled) > 0 {
		response += "Disabled: " + strings.Join(disabled, ", ") + ". "
	}
	if n := len(settings.SensitiveDirectories); n > 0 {
		response += fmt.Sprintf("Protected directories: %d.", n)
	}
	p.say(strings.TrimSpace(response))
}

func (p *Processor) clearData(_ context.Context, _ string, _ Captures) {
	if p.security == nil {
		p.say(securityUnavailable)
		return
	}
	if !p.confirm("Are you sure you want to clear all your stored data? This cannot be undone. Please say yes or no.") {
		p.say("Data clearing operation canceled.")
		return
	}
	if err := p.security.ClearAll(); err != nil {
		log.Error("clearing stored data failed", "error", err)
		p.say("I had trouble clearing your data. Please try again later.")
		return
	}
	p.say("All your stored data has been cleared, and privacy settings have been reset to defaults.")
}

func (p *Processor) addSensitiveDirectory(_ context.Context, _ string, caps Captures) {
	if p.security == nil {
		p.say(securityUnavailable)
		return
	}
	dir := caps.Get("directory")
	if dir == "" {
		p.say("Please specify a directory to protect.")
		return
	}
	resolved := dir
	if p.system != nil {
		resolved = p.system.ResolvePath(dir)
	}

	added, err := p.security.AddSensitiveDirectory(resolved)
	if err != nil {
		log.Error("adding sensitive directory failed", "dir", resolved, "error", err)
		p.say("I had trouble adding this directory as a protected directory.")
		return
	}
	if !added {
		p.say(dir + " is already in the list of protected directories.")
		return
	}
	p.say("I've added " + dir + " to protected directories. Files in this location will be secure.")
}

func (p *Processor) showAccessLog(_ context.Context, _ string, _ Captures) {
	if p.security == nil {
		p.say(securityUnavailable)
		return
	}
	entries := p.security.AccessLog()
	if len(entries) == 0 {
		p.say("There is no data access history to display.")
		return
	}

	recent := entries
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	response := "Recent data access activity: "
	for _, entry := range recent {
		response += entry.Timestamp.Format("2006-01-02") + ": " +
			entry.DataType + " - " + entry.Description + ". "
	}
	response += fmt.Sprintf("Showing %d of %d total entries.", len(recent), len(entries))
	p.say(response)
}

func (p *Processor) securityStatus(_ context.Context, _ string, _ Captures) {
	if p.security == nil {
		p.say(securityUnavailable)
		return
	}
	storageOK := p.security.HasStorageFile()
	settingsOK := p.security.HasSettingsFile()

	response := "Data Security Status: "
	if storageOK && settingsOK {
		response += "Your data is secure. Encryption is enabled, secure storage is set up, and privacy settings are configured."
	} else {
		response += "There may be issues with your data security. "
		if !storageOK {
			response += "Secure storage has not been set up. "
		}
		if !settingsOK {
			response += "Privacy settings are not configured. "
		}
	}
	p.say(strings.TrimSpace(response))
}
