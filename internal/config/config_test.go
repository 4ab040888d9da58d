package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/flower-controller/internal/color"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, ValidateSchema(cfg))
	assert.NoError(t, Validate(cfg))
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "flowerd.yaml", `
device:
  name: kitchen-tulip
bluetooth:
  enabled: true
  always_on: true
deep_sleep:
  enabled: false
palette:
  - {h: 0.1, s: 1, b: 1}
  - {h: 0.6, s: 0.5, b: 0.8}
mqtt:
  broker: tcp://broker.local:1883
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "kitchen-tulip", cfg.Device.Name)
	assert.True(t, cfg.Bluetooth.AlwaysOn)
	assert.Equal(t, "hci0", cfg.Bluetooth.Adapter, "defaults survive")
	assert.False(t, cfg.DeepSleep.Enabled)
	assert.Equal(t, []color.HSB{{H: 0.1, S: 1, B: 1}, {H: 0.6, S: 0.5, B: 0.8}}, cfg.Palette)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
	assert.Equal(t, 7, cfg.Hardware.RingPixels)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "flowerd.toml", `
[device]
name = "desk-rose"

[wifi]
enabled = false

[hardware]
ring_pixels = 9

[[palette]]
h = 0.3
s = 1.0
b = 1.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "desk-rose", cfg.Device.Name)
	assert.False(t, cfg.Wifi.Enabled)
	assert.Equal(t, 9, cfg.Hardware.RingPixels)
	assert.Equal(t, []color.HSB{{H: 0.3, S: 1, B: 1}}, cfg.Palette)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "flowerd.json", `{"device": {"name": "lab"}, "http": {"addr": ":9000"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "lab", cfg.Device.Name)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "device: [", "decode YAML"},
		{"hue out of range", "palette:\n  - {h: 1.5, s: 1, b: 1}\n", "schema"},
		{"dark palette color", "palette:\n  - {h: 0.5, s: 1, b: 0}\n", "schema"},
		{"empty palette", "palette: []\n", "schema"},
		{"bad name", "device:\n  name: Kitchen Tulip\n", "schema"},
		{"touch threshold", "touch:\n  threshold_ms: 500\n", "schema"},
		{"shared line", "hardware:\n  usb_line: 17\n", "share line 17"},
		{"same spi", "hardware:\n  status_spi: /dev/spidev0.0\n", "must differ"},
		{"broker url", "mqtt:\n  broker: localhost\n", "mqtt.broker"},
		{"wildcard prefix", "mqtt:\n  topic_prefix: flower/#\n", "wildcards"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "flowerd.yaml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "conf", "flowerd"+ext)
			cfg := Default()
			cfg.Device.Name = "saved"
			cfg.Bluetooth.AlwaysOn = true
			cfg.Palette = []color.HSB{{H: 0.25, S: 0.5, B: 1}}

			require.NoError(t, Save(cfg, path))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestStorePersistsAlwaysOn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowerd.yaml")
	cfg := Default()
	cfg.Bluetooth.AlwaysOn = true
	require.NoError(t, Save(cfg, path))

	store := NewStore(path, cfg, nil)
	assert.True(t, store.BluetoothAlwaysOn())

	store.SetBluetoothAlwaysOn(false)
	assert.False(t, store.BluetoothAlwaysOn())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reloaded.Bluetooth.AlwaysOn)
}

func TestStoreAccessors(t *testing.T) {
	cfg := Default()
	cfg.Wifi.Enabled = false
	store := NewStore("", cfg, nil)

	assert.True(t, store.BluetoothEnabled())
	assert.False(t, store.WifiEnabled())
	assert.True(t, store.DeepSleepEnabled())
	assert.Equal(t, DefaultPalette, store.Palette())

	cfg.Wifi.Enabled = true
	assert.False(t, store.WifiEnabled(), "store keeps its own copy")

	store.Replace(cfg)
	assert.True(t, store.WifiEnabled())

	store.SetBluetoothAlwaysOn(true)
	assert.True(t, store.Config().Bluetooth.AlwaysOn)
}

func TestWatcherDeliversReload(t *testing.T) {
	path := writeFile(t, "flowerd.yaml", "device:\n  name: before\n")

	w, err := Watch(context.Background(), path, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("device:\n  name: broken name\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	select {
	case cfg := <-w.Updates():
		t.Fatalf("invalid config delivered: %+v", cfg.Device)
	default:
	}

	require.NoError(t, os.WriteFile(path, []byte("device:\n  name: after\n"), 0o644))
	select {
	case cfg := <-w.Updates():
		assert.Equal(t, "after", cfg.Device.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload delivered")
	}
}
