package devices

import (
	"context"
	"fmt"
	log "log/slog"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"jarvis/internal/system"
)

// Kinds of peripherals the monitor inventories, in report order.
var kinds = []string{"monitor", "printer", "usb", "audio", "bluetooth"}

// probeFunc runs one probe command and returns its raw output. Swappable in
// tests.
type probeFunc func(ctx context.Context, kind string) (string, error)

// Monitor keeps a snapshot of connected peripherals and can diff a fresh
// scan against it to spot newly plugged devices.
type Monitor struct {
	platform system.Platform
	probe    probeFunc

	mu       sync.Mutex
	snapshot map[string][]string
}

func NewMonitor(platform system.Platform) *Monitor {
	m := &Monitor{platform: platform, snapshot: make(map[string][]string)}
	m.probe = m.runProbe
	return m
}

func (m *Monitor) runProbe(ctx context.Context, kind string) (string, error) {
	name, args, ok := m.platform.Probe(kind)
	if !ok {
		return "", fmt.Errorf("no %s probe on %s", kind, m.platform.Name())
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s probe: %w", kind, err)
	}
	return string(out), nil
}

// scan probes every kind and returns sorted device name lists. Probe
// failures leave a kind empty; a machine without a printer subsystem is not
// an error.
func (m *Monitor) scan(ctx context.Context) map[string][]string {
	found := make(map[string][]string, len(kinds))
	for _, kind := range kinds {
		out, err := m.probe(ctx, kind)
		if err != nil {
			log.Debug("device probe failed", "kind", kind, "error", err)
			found[kind] = nil
			continue
		}
		found[kind] = parseProbe(kind, out)
	}
	return found
}

// parseProbe turns raw probe output into device names. The commands differ
// per OS so parsing stays line-oriented and tolerant.
func parseProbe(kind, out string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name := line
		switch kind {
		case "usb":
			// lsusb: "Bus 001 Device 002: ID 8087:0024 Intel Corp. Hub"
			if i := strings.Index(line, ": ID "); i >= 0 {
				rest := line[i+len(": ID "):]
				if j := strings.IndexByte(rest, ' '); j >= 0 {
					name = strings.TrimSpace(rest[j+1:])
				}
			}
		case "printer":
			// lpstat -p: "printer HP_LaserJet is idle."
			if strings.HasPrefix(line, "printer ") {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					name = fields[1]
				}
			}
		case "monitor":
			// xrandr: keep only "<output> connected ..." lines
			if strings.Contains(line, " connected") {
				name = strings.Fields(line)[0]
			} else if !strings.Contains(strings.ToLower(line), "display") {
				continue
			}
		case "bluetooth":
			// bluetoothctl devices: "Device AA:BB:CC:DD:EE:FF Headphones"
			if strings.HasPrefix(line, "Device ") {
				fields := strings.SplitN(line, " ", 3)
				if len(fields) == 3 {
					name = fields[2]
				}
			}
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Refresh rescans everything and replaces the stored snapshot.
func (m *Monitor) Refresh(ctx context.Context) {
	fresh := m.scan(ctx)
	m.mu.Lock()
	m.snapshot = fresh
	m.mu.Unlock()
}

// Devices returns the devices of one kind from the current snapshot,
// scanning first if nothing has been recorded yet.
func (m *Monitor) Devices(ctx context.Context, kind string) []string {
	m.mu.Lock()
	empty := len(m.snapshot) == 0
	m.mu.Unlock()
	if empty {
		m.Refresh(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.snapshot[kind]...)
}

// DetectNew rescans and reports devices present now that were absent from
// the previous snapshot, then adopts the fresh scan as the new baseline.
func (m *Monitor) DetectNew(ctx context.Context) map[string][]string {
	fresh := m.scan(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	added := make(map[string][]string)
	for _, kind := range kinds {
		old := make(map[string]bool, len(m.snapshot[kind]))
		for _, name := range m.snapshot[kind] {
			old[name] = true
		}
		for _, name := range fresh[kind] {
			if !old[name] {
				added[kind] = append(added[kind], name)
			}
		}
	}
	m.snapshot = fresh
	return added
}

// Summary renders the current inventory as spoken-friendly lines.
func (m *Monitor) Summary(ctx context.Context) []string {
	m.Refresh(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []string
	for _, kind := range kinds {
		devs := m.snapshot[kind]
		if len(devs) == 0 {
			lines = append(lines, fmt.Sprintf("No %s devices detected", kind))
			continue
		}
		lines = append(lines, fmt.Sprintf("%d %s device(s): %s",
			len(devs), kind, strings.Join(devs, ", ")))
	}
	return lines
}
