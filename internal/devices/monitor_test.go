package devices

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/system"
)

func fakeMonitor(outputs map[string]string) *Monitor {
	m := NewMonitor(system.Detect())
	m.probe = func(_ context.Context, kind string) (string, error) {
		out, ok := outputs[kind]
		if !ok {
			return "", errors.New("probe unavailable")
		}
		return out, nil
	}
	return m
}

func TestParseUSB(t *testing.T) {
	out := "Bus 001 Device 002: ID 8087:0024 Intel Corp. Integrated Rate Matching Hub\n" +
		"Bus 003 Device 005: ID 046d:c52b Logitech, Inc. Unifying Receiver\n"
	names := parseProbe("usb", out)
	require.Len(t, names, 2)
	assert.Contains(t, names, "Logitech, Inc. Unifying Receiver")
	assert.Contains(t, names, "Intel Corp. Integrated Rate Matching Hub")
}

func TestParsePrinters(t *testing.T) {
	out := "printer HP_LaserJet is idle.  enabled since Mon\nprinter Office_Brother disabled since Tue\n"
	names := parseProbe("printer", out)
	assert.Equal(t, []string{"HP_LaserJet", "Office_Brother"}, names)
}

func TestParseMonitors(t *testing.T) {
	out := "Screen 0: minimum 320 x 200\n" +
		"eDP-1 connected primary 1920x1080+0+0\n" +
		"HDMI-1 disconnected\n" +
		"DP-1 connected 2560x1440+1920+0\n"
	names := parseProbe("monitor", out)
	assert.Equal(t, []string{"DP-1", "eDP-1"}, names)
}

func TestParseBluetooth(t *testing.T) {
	out := "Device AA:BB:CC:DD:EE:FF Noise Cancelling Headphones\nDevice 11:22:33:44:55:66 Trackball\n"
	names := parseProbe("bluetooth", out)
	assert.Equal(t, []string{"Noise Cancelling Headphones", "Trackball"}, names)
}

func TestParseDeduplicates(t *testing.T) {
	out := "Device AA:BB:CC:DD:EE:FF Speaker\nDevice 11:22:33:44:55:66 Speaker\n"
	names := parseProbe("bluetooth", out)
	assert.Equal(t, []string{"Speaker"}, names)
}

func TestDetectNew(t *testing.T) {
	outputs := map[string]string{
		"usb": "Bus 001 Device 002: ID 8087:0024 Intel Hub\n",
	}
	m := fakeMonitor(outputs)
	ctx := context.Background()

	m.Refresh(ctx)
	added := m.DetectNew(ctx)
	assert.Empty(t, added["usb"])

	outputs["usb"] += "Bus 001 Device 003: ID 046d:c052 Logitech Mouse\n"
	added = m.DetectNew(ctx)
	require.Len(t, added["usb"], 1)
	assert.Equal(t, "Logitech Mouse", added["usb"][0])

	// A second diff against the adopted baseline reports nothing.
	added = m.DetectNew(ctx)
	assert.Empty(t, added["usb"])
}

func TestDevicesScansLazily(t *testing.T) {
	m := fakeMonitor(map[string]string{
		"printer": "printer Basement_Laser is idle.\n",
	})
	devs := m.Devices(context.Background(), "printer")
	assert.Equal(t, []string{"Basement_Laser"}, devs)
}

func TestSummaryMentionsEveryKind(t *testing.T) {
	m := fakeMonitor(map[string]string{})
	lines := m.Summary(context.Background())
	assert.Len(t, lines, 5)
	for _, line := range lines {
		assert.Contains(t, line, "No ")
	}
}
