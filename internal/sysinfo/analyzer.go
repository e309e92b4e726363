package sysinfo

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"jarvis/internal/system"
)

// Analyzer provides on-demand snapshots of the machine: CPU, memory, disks,
// network, graphics, processes and installed applications, plus the file
// search and file-type statistics the voice commands expose.
type Analyzer struct {
	platform system.Platform
}

func NewAnalyzer(platform system.Platform) *Analyzer {
	log.Info("system analyzer ready", "os", runtime.GOOS)
	return &Analyzer{platform: platform}
}

type CPUInfo struct {
	Model         string
	PhysicalCores int
	LogicalCores  int
	UsagePercent  float64
}

func (a *Analyzer) CPU() (CPUInfo, error) {
	phys, err := cpu.Counts(false)
	if err != nil {
		return CPUInfo{}, fmt.Errorf("cpu counts: %w", err)
	}
	logical, err := cpu.Counts(true)
	if err != nil {
		return CPUInfo{}, fmt.Errorf("cpu counts: %w", err)
	}

	info := CPUInfo{PhysicalCores: phys, LogicalCores: logical}

	if models, err := cpu.Info(); err == nil && len(models) > 0 {
		info.Model = models[0].ModelName
	}
	if usage, err := cpu.Percent(time.Second, false); err == nil && len(usage) > 0 {
		info.UsagePercent = usage[0]
	}
	return info, nil
}

type MemoryInfo struct {
	Total       string
	Available   string
	Used        string
	UsedPercent float64
}

func (a *Analyzer) Memory() (MemoryInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemoryInfo{}, fmt.Errorf("virtual memory: %w", err)
	}
	return MemoryInfo{
		Total:       FormatBytes(vm.Total),
		Available:   FormatBytes(vm.Available),
		Used:        FormatBytes(vm.Used),
		UsedPercent: vm.UsedPercent,
	}, nil
}

type DiskInfo struct {
	Device      string
	Mountpoint  string
	Filesystem  string
	Total       string
	Free        string
	UsedPercent float64
}

func (a *Analyzer) Disks() ([]DiskInfo, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("disk partitions: %w", err)
	}
	var out []DiskInfo
	for _, p := range parts {
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			// Some mounts are not readable; skip them like any inventory tool.
			continue
		}
		out = append(out, DiskInfo{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Filesystem:  p.Fstype,
			Total:       FormatBytes(usage.Total),
			Free:        FormatBytes(usage.Free),
			UsedPercent: usage.UsedPercent,
		})
	}
	return out, nil
}

type NetworkInfo struct {
	Hostname   string
	IPv4       string
	Interfaces []string
}

func (a *Analyzer) Network() (NetworkInfo, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return NetworkInfo{}, fmt.Errorf("hostname: %w", err)
	}
	info := NetworkInfo{Hostname: hostname}

	ifaces, err := psnet.Interfaces()
	if err != nil {
		return info, nil
	}
	for _, iface := range ifaces {
		info.Interfaces = append(info.Interfaces, iface.Name)
		for _, addr := range iface.Addrs {
			ip := strings.SplitN(addr.Addr, "/", 2)[0]
			if info.IPv4 == "" && strings.Count(ip, ".") == 3 && !strings.HasPrefix(ip, "127.") {
				info.IPv4 = ip
			}
		}
	}
	return info, nil
}

type GraphicsCard struct {
	Name          string
	DriverVersion string
}

// Graphics shells out through the platform probe; the output format differs
// per OS, so parsing stays loose and keeps any line mentioning a display
// controller.
func (a *Analyzer) Graphics(ctx context.Context) ([]GraphicsCard, error) {
	out, err := a.probe(ctx, "graphics")
	if err != nil {
		return nil, err
	}
	var cards []GraphicsCard
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "vga") || strings.Contains(lower, "3d controller") ||
			strings.Contains(lower, "display") || strings.HasPrefix(lower, "name") ||
			strings.Contains(lower, "chipset model") {
			cards = append(cards, GraphicsCard{Name: line})
		}
	}
	return cards, nil
}

type ProcessInfo struct {
	PID         int32
	Name        string
	MemoryBytes uint64
}

// Processes returns the running process list sorted by resident memory,
// largest first.
func (a *Analyzer) Processes() ([]ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("process list: %w", err)
	}
	var out []ProcessInfo
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		var rss uint64
		if memInfo, err := p.MemoryInfo(); err == nil && memInfo != nil {
			rss = memInfo.RSS
		}
		out = append(out, ProcessInfo{PID: p.Pid, Name: name, MemoryBytes: rss})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemoryBytes > out[j].MemoryBytes })
	return out, nil
}

// InstalledApplications lists application names known to the OS.
func (a *Analyzer) InstalledApplications(ctx context.Context) ([]string, error) {
	out, err := a.probe(ctx, "apps")
	if err != nil {
		return nil, err
	}
	var apps []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(line, ".desktop")
		line = strings.TrimSuffix(line, ".app")
		apps = append(apps, line)
	}
	return apps, nil
}

type Health struct {
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   map[string]float64
	Battery       *Battery
}

type Battery struct {
	Percent   int
	PluggedIn bool
}

func (a *Analyzer) Health() (Health, error) {
	h := Health{DiskPercent: make(map[string]float64)}

	if usage, err := cpu.Percent(time.Second, false); err == nil && len(usage) > 0 {
		h.CPUPercent = usage[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		h.MemoryPercent = vm.UsedPercent
	}
	if parts, err := disk.Partitions(false); err == nil {
		for _, p := range parts {
			if usage, err := disk.Usage(p.Mountpoint); err == nil {
				h.DiskPercent[p.Device] = usage.UsedPercent
			}
		}
	}
	h.Battery = readBattery()
	return h, nil
}

// readBattery reads the sysfs battery node on Linux; elsewhere it reports
// nothing rather than guessing.
func readBattery() *Battery {
	if runtime.GOOS != "linux" {
		return nil
	}
	base := "/sys/class/power_supply/BAT0"
	capRaw, err := os.ReadFile(filepath.Join(base, "capacity"))
	if err != nil {
		return nil
	}
	var b Battery
	if _, err := fmt.Sscanf(strings.TrimSpace(string(capRaw)), "%d", &b.Percent); err != nil {
		return nil
	}
	if status, err := os.ReadFile(filepath.Join(base, "status")); err == nil {
		s := strings.TrimSpace(string(status))
		b.PluggedIn = s == "Charging" || s == "Full"
	}
	return &b
}

// Uptime reports how long the machine has been up.
func (a *Analyzer) Uptime() (time.Duration, error) {
	secs, err := host.Uptime()
	if err != nil {
		return 0, fmt.Errorf("uptime: %w", err)
	}
	return time.Duration(secs) * time.Second, nil
}

// SearchFiles walks root for names matching the glob pattern, up to max
// results.
func (a *Analyzer) SearchFiles(root, pattern string, max int) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a searchable directory: %s", root)
	}
	if max <= 0 {
		max = 100
	}

	var results []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep walking
		}
		if d.IsDir() {
			return nil
		}
		ok, _ := filepath.Match(pattern, d.Name())
		if ok {
			results = append(results, path)
			if len(results) >= max {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return results, nil
}

type ExtStat struct {
	Ext   string
	Count int
	Size  uint64
}

type FileTypeStats struct {
	TotalFiles int
	TotalSize  uint64
	Extensions []ExtStat // sorted by count, largest first
}

// AnalyzeFileTypes walks dir and aggregates counts and sizes per extension.
func (a *Analyzer) AnalyzeFileTypes(dir string) (FileTypeStats, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return FileTypeStats{}, fmt.Errorf("not a directory: %s", dir)
	}

	byExt := make(map[string]*ExtStat)
	var stats FileTypeStats
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		stats.TotalFiles++
		stats.TotalSize += uint64(fi.Size())

		ext := strings.ToLower(filepath.Ext(path))
		if ext == "" {
			return nil
		}
		s, ok := byExt[ext]
		if !ok {
			s = &ExtStat{Ext: ext}
			byExt[ext] = s
		}
		s.Count++
		s.Size += uint64(fi.Size())
		return nil
	})
	if err != nil {
		return FileTypeStats{}, fmt.Errorf("walk %s: %w", dir, err)
	}

	for _, s := range byExt {
		stats.Extensions = append(stats.Extensions, *s)
	}
	sort.Slice(stats.Extensions, func(i, j int) bool {
		if stats.Extensions[i].Count != stats.Extensions[j].Count {
			return stats.Extensions[i].Count > stats.Extensions[j].Count
		}
		return stats.Extensions[i].Ext < stats.Extensions[j].Ext
	})
	return stats, nil
}

// Summary renders a spoken-friendly overview of the machine.
func (a *Analyzer) Summary(ctx context.Context) []string {
	var lines []string

	if hostInfo, err := host.Info(); err == nil {
		lines = append(lines, fmt.Sprintf("Operating System: %s %s", hostInfo.Platform, hostInfo.PlatformVersion))
	}
	if up, err := a.Uptime(); err == nil {
		lines = append(lines, "Uptime: "+FormatUptime(up))
	}
	if c, err := a.CPU(); err == nil {
		model := c.Model
		if model == "" {
			model = "CPU"
		}
		lines = append(lines, fmt.Sprintf("Processor: %s with %d physical cores, %d logical cores",
			model, c.PhysicalCores, c.LogicalCores))
	}
	if m, err := a.Memory(); err == nil {
		lines = append(lines, fmt.Sprintf("Memory: %s total, %s available (%.0f%% used)",
			m.Total, m.Available, m.UsedPercent))
	}
	if disks, err := a.Disks(); err == nil {
		for _, d := range disks {
			lines = append(lines, fmt.Sprintf("Disk %s: %s total, %s free (%.0f%% used)",
				d.Device, d.Total, d.Free, d.UsedPercent))
		}
	}
	if n, err := a.Network(); err == nil {
		lines = append(lines, fmt.Sprintf("Network: Hostname %s", n.Hostname))
		if n.IPv4 != "" {
			lines = append(lines, fmt.Sprintf("IP Address: %s", n.IPv4))
		}
	}
	return lines
}

func (a *Analyzer) probe(ctx context.Context, kind string) (string, error) {
	name, args, ok := a.platform.Probe(kind)
	if !ok {
		return "", fmt.Errorf("no %s probe on %s", kind, a.platform.Name())
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s probe: %w", kind, err)
	}
	return string(out), nil
}

// FormatUptime renders a duration as a spoken-friendly days/hours/minutes
// phrase.
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d day%s", days, pluralS(days)))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hour%s", hours, pluralS(hours)))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d minute%s", minutes, pluralS(minutes)))
	}
	return strings.Join(parts, ", ")
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// FormatBytes renders a byte count in a human-readable unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
