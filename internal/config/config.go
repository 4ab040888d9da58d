// Package config loads, validates, persists and watches the flower's
// configuration file. YAML, TOML and JSON are selected by file extension.
package config

import (
	"github.com/sweeney/flower-controller/internal/color"
)

// Config is the complete flowerd configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device" toml:"device" json:"device"`
	Bluetooth BluetoothConfig `yaml:"bluetooth" toml:"bluetooth" json:"bluetooth"`
	Wifi      WifiConfig      `yaml:"wifi" toml:"wifi" json:"wifi"`
	DeepSleep DeepSleepConfig `yaml:"deep_sleep" toml:"deep_sleep" json:"deep_sleep"`
	Touch     TouchConfig     `yaml:"touch" toml:"touch" json:"touch"`
	Palette   []color.HSB     `yaml:"palette" toml:"palette" json:"palette"`
	Hardware  HardwareConfig  `yaml:"hardware" toml:"hardware" json:"hardware"`
	MQTT      MQTTConfig      `yaml:"mqtt" toml:"mqtt" json:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http" toml:"http" json:"http"`
	Update    UpdateConfig    `yaml:"update" toml:"update" json:"update"`
}

// DeviceConfig names this flower.
type DeviceConfig struct {
	Name         string `yaml:"name" toml:"name" json:"name"`
	LowPowerMode bool   `yaml:"low_power_mode" toml:"low_power_mode" json:"low_power_mode"` // plain colors on the core pixel only
}

// BluetoothConfig controls the Bluetooth radio.
type BluetoothConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	AlwaysOn bool   `yaml:"always_on" toml:"always_on" json:"always_on"` // start on boot, not only for pairing
	Adapter  string `yaml:"adapter" toml:"adapter" json:"adapter"`
}

// WifiConfig controls the Wi-Fi radio.
type WifiConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled" json:"enabled"`
}

// DeepSleepConfig controls sleeping on battery.
type DeepSleepConfig struct {
	Enabled    bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	WakeMarker string `yaml:"wake_marker" toml:"wake_marker" json:"wake_marker"` // file left behind before sleeping
}

// TouchConfig tunes the leaf sensor.
type TouchConfig struct {
	ThresholdMs int `yaml:"threshold_ms" toml:"threshold_ms" json:"threshold_ms"` // debounce applied by the GPIO driver
}

// HardwareConfig maps the flower's parts onto the board.
type HardwareConfig struct {
	GPIOChip        string  `yaml:"gpio_chip" toml:"gpio_chip" json:"gpio_chip"`
	TouchLine       int     `yaml:"touch_line" toml:"touch_line" json:"touch_line"`
	USBLine         int     `yaml:"usb_line" toml:"usb_line" json:"usb_line"`
	ChargeLine      int     `yaml:"charge_line" toml:"charge_line" json:"charge_line"`
	SwitchLine      int     `yaml:"switch_line" toml:"switch_line" json:"switch_line"`
	PixelsRailLine  int     `yaml:"pixels_rail_line" toml:"pixels_rail_line" json:"pixels_rail_line"`
	MotorRailLine   int     `yaml:"motor_rail_line" toml:"motor_rail_line" json:"motor_rail_line"`
	ServoPin        string  `yaml:"servo_pin" toml:"servo_pin" json:"servo_pin"`
	PixelsSPI       string  `yaml:"pixels_spi" toml:"pixels_spi" json:"pixels_spi"`
	StatusSPI       string  `yaml:"status_spi" toml:"status_spi" json:"status_spi"`
	RingPixels      int     `yaml:"ring_pixels" toml:"ring_pixels" json:"ring_pixels"`
	ColorBrightness float64 `yaml:"color_brightness" toml:"color_brightness" json:"color_brightness"`
	I2CBus          string  `yaml:"i2c_bus" toml:"i2c_bus" json:"i2c_bus"`
	BatteryDivider  float64 `yaml:"battery_divider" toml:"battery_divider" json:"battery_divider"` // ADC reading to cell voltage
}

// MQTTConfig connects the remote-control link.
type MQTTConfig struct {
	Broker      string `yaml:"broker" toml:"broker" json:"broker"`
	TopicPrefix string `yaml:"topic_prefix" toml:"topic_prefix" json:"topic_prefix"`
	BufferSize  int    `yaml:"buffer_size" toml:"buffer_size" json:"buffer_size"`
	HeartbeatS  int    `yaml:"heartbeat_s" toml:"heartbeat_s" json:"heartbeat_s"` // 0 disables
}

// HTTPConfig serves the status page.
type HTTPConfig struct {
	Addr string `yaml:"addr" toml:"addr" json:"addr"`
}

// UpdateConfig runs firmware updates.
type UpdateConfig struct {
	Command  []string `yaml:"command" toml:"command" json:"command"` // the reference is appended as the last argument
	TimeoutS int      `yaml:"timeout_s" toml:"timeout_s" json:"timeout_s"`
}

// DefaultPalette is the color scheme a fresh flower blooms in.
var DefaultPalette = []color.HSB{
	{H: 0.00, S: 1.0, B: 1}, // red
	{H: 0.08, S: 1.0, B: 1}, // orange
	{H: 0.15, S: 1.0, B: 1}, // yellow
	{H: 0.33, S: 1.0, B: 1}, // green
	{H: 0.50, S: 0.8, B: 1}, // cyan
	{H: 0.66, S: 1.0, B: 1}, // blue
	{H: 0.78, S: 0.9, B: 1}, // violet
	{H: 0.92, S: 0.6, B: 1}, // pink
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Device:    DeviceConfig{Name: "flower"},
		Bluetooth: BluetoothConfig{Enabled: true, Adapter: "hci0"},
		Wifi:      WifiConfig{Enabled: true},
		DeepSleep: DeepSleepConfig{Enabled: true, WakeMarker: "/var/lib/flowerd/sleeping"},
		Touch:     TouchConfig{ThresholdMs: 1},
		Palette:   append([]color.HSB(nil), DefaultPalette...),
		Hardware: HardwareConfig{
			GPIOChip:        "gpiochip0",
			TouchLine:       17,
			USBLine:         27,
			ChargeLine:      22,
			SwitchLine:      23,
			PixelsRailLine:  24,
			MotorRailLine:   25,
			ServoPin:        "GPIO18",
			PixelsSPI:       "/dev/spidev0.0",
			StatusSPI:       "/dev/spidev1.0",
			RingPixels:      7,
			ColorBrightness: 0.7,
			I2CBus:          "1",
			BatteryDivider:  2,
		},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			TopicPrefix: "flower",
			BufferSize:  100,
			HeartbeatS:  900,
		},
		HTTP:   HTTPConfig{Addr: ":8080"},
		Update: UpdateConfig{Command: []string{"/usr/local/bin/flower-update"}, TimeoutS: 600},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Palette = append([]color.HSB(nil), c.Palette...)
	out.Update.Command = append([]string(nil), c.Update.Command...)
	return &out
}
