package command

import (
	"context"
	"fmt"
	log "log/slog"
	"path/filepath"
	"sort"
	"strings"

	"jarvis/internal/sysinfo"
)

const (
	analysisUnavailable = "I'm sorry, system analysis capabilities are not available at the moment."
	devicesUnavailable  = "I'm sorry, device monitoring capabilities are not available at the moment."
)

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func (p *Processor) systemInfo(ctx context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	p.say("Here is a summary of your system:")
	for _, line := range p.analyzer.Summary(ctx) {
		p.say(line)
	}
}

func (p *Processor) cpuInfo(_ context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	info, err := p.analyzer.CPU()
	if err != nil {
		log.Error("cpu info failed", "error", err)
		p.say("I couldn't read your processor information.")
		return
	}
	model := info.Model
	if model == "" {
		model = "CPU"
	}
	p.say("Your processor is a " + model + ".")
	p.say(fmt.Sprintf("It has %d physical cores and %d logical cores.", info.PhysicalCores, info.LogicalCores))
	p.say(fmt.Sprintf("The current CPU usage is %.1f%%.", info.UsagePercent))
}

func (p *Processor) memoryInfo(_ context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	info, err := p.analyzer.Memory()
	if err != nil {
		log.Error("memory info failed", "error", err)
		p.say("I couldn't read your memory information.")
		return
	}
	p.say("Your system has " + info.Total + " of RAM.")
	p.say(info.Available + " is currently available.")
	p.say(fmt.Sprintf("Memory usage is at %.1f%%.", info.UsedPercent))
}

func (p *Processor) diskInfo(_ context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	disks, err := p.analyzer.Disks()
	if err != nil || len(disks) == 0 {
		p.say("I couldn't read your disk information.")
		return
	}
	p.say("Here is information about your disks:")
	for _, d := range disks {
		p.say(fmt.Sprintf("Drive %s has %s total space with %s free. It is %.0f%% full.",
			d.Device, d.Total, d.Free, d.UsedPercent))
	}
}

func (p *Processor) networkInfo(_ context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	info, err := p.analyzer.Network()
	if err != nil {
		log.Error("network info failed", "error", err)
		p.say("I couldn't read your network information.")
		return
	}
	p.say("Your computer's hostname is " + info.Hostname + ".")
	if info.IPv4 != "" {
		p.say("Your IP address is " + info.IPv4 + ".")
	}
	if n := len(info.Interfaces); n > 0 {
		p.say(fmt.Sprintf("You have %d network interface%s.", n, plural(n)))
	}
}

func (p *Processor) graphicsInfo(ctx context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	cards, err := p.analyzer.Graphics(ctx)
	if err != nil || len(cards) == 0 {
		p.say("I couldn't detect any graphics cards on your system.")
		return
	}
	p.say("Here is information about your graphics cards:")
	for _, card := range cards {
		p.say("You have a " + card.Name + " graphics card.")
		if card.DriverVersion != "" {
			p.say("Driver version: " + card.DriverVersion + ".")
		}
	}
}

func (p *Processor) runningProcesses(_ context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	procs, err := p.analyzer.Processes()
	if err != nil {
		log.Error("process list failed", "error", err)
		p.say("I couldn't read the running process list.")
		return
	}
	p.say(fmt.Sprintf("You have %d processes running. Here are the top memory consumers:", len(procs)))
	for i, proc := range procs {
		if i == 5 {
			break
		}
		p.say(proc.Name + " using " + sysinfo.FormatBytes(proc.MemoryBytes) + ".")
	}
}

func (p *Processor) installedApplications(ctx context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	apps, err := p.analyzer.InstalledApplications(ctx)
	if err != nil || len(apps) == 0 {
		p.say("I couldn't retrieve information about installed applications.")
		return
	}
	p.say(fmt.Sprintf("You have %d applications installed. Here are some of them:", len(apps)))
	for i, app := range apps {
		if i == 5 {
			break
		}
		p.say(app + ".")
	}
}

func (p *Processor) systemHealth(_ context.Context, _ string, _ Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	health, err := p.analyzer.Health()
	if err != nil {
		log.Error("health check failed", "error", err)
		p.say("I couldn't check the system health.")
		return
	}
	p.say(fmt.Sprintf("CPU usage is at %.1f%%.", health.CPUPercent))
	p.say(fmt.Sprintf("Memory usage is at %.1f%%.", health.MemoryPercent))

	for _, line := range diskHealthLines(health.DiskPercent, 2) {
		p.say(line)
	}

	if b := health.Battery; b != nil {
		status := "on battery"
		if b.PluggedIn {
			status = "plugged in"
		}
		p.say(fmt.Sprintf("Battery is at %d%% and %s.", b.Percent, status))
	}
}

// diskHealthLines reports up to max disks in device-name order, so repeated
// health queries speak the same disks.
func diskHealthLines(byDevice map[string]float64, max int) []string {
	devices := make([]string, 0, len(byDevice))
	for device := range byDevice {
		devices = append(devices, device)
	}
	sort.Strings(devices)
	if len(devices) > max {
		devices = devices[:max]
	}

	lines := make([]string, 0, len(devices))
	for _, device := range devices {
		lines = append(lines, fmt.Sprintf("Disk %s is %.0f%% full.", device, byDevice[device]))
	}
	return lines
}

func (p *Processor) searchFiles(_ context.Context, _ string, caps Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	pattern := caps.Get("pattern")
	path := caps.Get("path")
	if pattern == "" || path == "" {
		p.say("Please specify both a file pattern and a path to search in.")
		return
	}
	if p.system != nil {
		path = p.system.ResolvePath(path)
	}

	p.say("Searching for " + pattern + " in " + path + ". This may take a moment.")
	results, err := p.analyzer.SearchFiles(path, pattern, 100)
	if err != nil {
		log.Error("file search failed", "path", path, "error", err)
		p.say("I encountered an error while searching for files. " + err.Error())
		return
	}
	if len(results) == 0 {
		p.say("No files matching " + pattern + " were found in " + path + ".")
		return
	}

	p.say(fmt.Sprintf("I found %d files matching %s.", len(results), pattern))
	for i, result := range results {
		if i == 3 {
			break
		}
		p.say(filepath.Base(result))
	}
	if len(results) > 3 {
		p.say(fmt.Sprintf("And %d more files.", len(results)-3))
	}
}

func (p *Processor) analyzeFileTypes(_ context.Context, _ string, caps Captures) {
	if p.analyzer == nil {
		p.say(analysisUnavailable)
		return
	}
	dir := caps.Get("directory")
	if dir == "" {
		p.say("Please specify a directory to analyze.")
		return
	}
	if p.system != nil {
		dir = p.system.ResolvePath(dir)
	}

	p.say("Analyzing files in " + dir + ". This may take a moment.")
	stats, err := p.analyzer.AnalyzeFileTypes(dir)
	if err != nil {
		log.Error("file type analysis failed", "dir", dir, "error", err)
		p.say("I encountered an error while analyzing file types. " + err.Error())
		return
	}
	if stats.TotalFiles == 0 {
		p.say("No files were found in " + dir + ".")
		return
	}

	p.say(fmt.Sprintf("I found %d files in %s, using %s of disk space.",
		stats.TotalFiles, dir, sysinfo.FormatBytes(stats.TotalSize)))

	if len(stats.Extensions) > 0 {
		p.say("The most common file types are:")
		for i, ext := range stats.Extensions {
			if i == 3 {
				break
			}
			p.say(fmt.Sprintf("%d %s files, using %s.", ext.Count, ext.Ext, sysinfo.FormatBytes(ext.Size)))
		}
	}
}

func (p *Processor) connectedDevices(ctx context.Context, _ string, _ Captures) {
	if p.devices == nil {
		p.say(devicesUnavailable)
		return
	}
	p.say("Here is a summary of your connected devices:")
	for _, line := range p.devices.Summary(ctx) {
		p.say(line)
	}
}

// deviceReport speaks one kind of peripheral with a cap on how many names
// get read aloud.
func (p *Processor) deviceReport(ctx context.Context, kind, spoken, absent string, limit int) {
	if p.devices == nil {
		p.say(devicesUnavailable)
		return
	}
	devs := p.devices.Devices(ctx, kind)
	if len(devs) == 0 {
		p.say(absent)
		return
	}
	p.say(fmt.Sprintf("You have %d %s%s connected:", len(devs), spoken, plural(len(devs))))
	for i, dev := range devs {
		if i == limit {
			break
		}
		p.say(dev)
	}
	if len(devs) > limit {
		p.say(fmt.Sprintf("And %d more.", len(devs)-limit))
	}
}

func (p *Processor) monitorInfo(ctx context.Context, _ string, _ Captures) {
	p.deviceReport(ctx, "monitor", "display",
		"I couldn't detect any monitors connected to your system.", 5)
}

func (p *Processor) printerInfo(ctx context.Context, _ string, _ Captures) {
	p.deviceReport(ctx, "printer", "printer",
		"I couldn't detect any printers installed on your system.", 5)
}

func (p *Processor) usbDevices(ctx context.Context, _ string, _ Captures) {
	p.deviceReport(ctx, "usb", "USB device",
		"I couldn't detect any USB devices connected to your system.", 5)
}

func (p *Processor) audioDevices(ctx context.Context, _ string, _ Captures) {
	p.deviceReport(ctx, "audio", "audio device",
		"I couldn't detect any audio devices on your system.", 3)
}

func (p *Processor) bluetoothDevices(ctx context.Context, _ string, _ Captures) {
	p.deviceReport(ctx, "bluetooth", "Bluetooth device",
		"I couldn't detect any Bluetooth devices paired with your system.", 5)
}

func (p *Processor) scanForNewDevices(ctx context.Context, _ string, _ Captures) {
	if p.devices == nil {
		p.say(devicesUnavailable)
		return
	}
	p.say("Scanning for new devices. This may take a moment.")
	added := p.devices.DetectNew(ctx)

	total := 0
	for _, names := range added {
		total += len(names)
	}
	if total == 0 {
		p.say("No new devices detected since the last scan.")
		return
	}

	p.say("I detected the following new devices:")
	for _, kind := range []string{"monitor", "printer", "usb", "audio", "bluetooth"} {
		names := added[kind]
		if len(names) == 0 {
			continue
		}
		p.say(fmt.Sprintf("New %s device%s: %s", kind, plural(len(names)), strings.Join(names, ", ")))
	}
}
