package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Name          string     `json:"name"`
	State         string     `json:"state"`
	Flower        FlowerJSON `json:"flower"`
	Power         PowerJSON  `json:"power"`
	Links         LinksJSON  `json:"links"`
	SleepInMs     int64      `json:"sleep_in_ms,omitempty"`
	Transitions   int        `json:"transitions"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// FlowerJSON is the JSON representation of the flower body.
type FlowerJSON struct {
	Petals    int       `json:"petals"`
	Color     ColorJSON `json:"color"`
	Lit       bool      `json:"lit"`
	Animating bool      `json:"animating"`
	Indicator string    `json:"indicator"`
}

// ColorJSON is an HSB color.
type ColorJSON struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	B float64 `json:"b"`
}

// PowerJSON is the JSON representation of the power facts.
type PowerJSON struct {
	Voltage    float64 `json:"battery_voltage"`
	Level      int     `json:"battery_level"`
	Charging   bool    `json:"charging"`
	USBPowered bool    `json:"usb_powered"`
	SwitchedOn bool    `json:"switched_on"`
}

// LinksJSON is the JSON representation of the radios.
type LinksJSON struct {
	BluetoothEnabled   bool `json:"bluetooth_enabled"`
	BluetoothConnected bool `json:"bluetooth_connected"`
	WifiEnabled        bool `json:"wifi_enabled"`
	WifiConnected      bool `json:"wifi_connected"`
	UpdateRunning      bool `json:"update_running"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	HTTPAddr  string `json:"http_addr"`
	DeepSleep bool   `json:"deep_sleep"`
}

func buildInner(snap Snapshot) StatusInner {
	state := snap.Flower.State
	if state == "" {
		state = "UNKNOWN"
	}
	f, p, l := snap.Flower, snap.Power, snap.Links
	return StatusInner{
		Name:  snap.Config.Name,
		State: state,
		Flower: FlowerJSON{
			Petals:    f.Petals,
			Color:     ColorJSON{H: f.Color.H, S: f.Color.S, B: f.Color.B},
			Lit:       f.Lit,
			Animating: f.Animating,
			Indicator: f.Indicator,
		},
		Power: PowerJSON{
			Voltage:    p.BatteryVoltage,
			Level:      p.BatteryLevel,
			Charging:   p.Charging,
			USBPowered: p.USBPowered,
			SwitchedOn: p.SwitchedOn,
		},
		Links: LinksJSON{
			BluetoothEnabled:   l.BluetoothEnabled,
			BluetoothConnected: l.BluetoothConnected,
			WifiEnabled:        l.WifiEnabled,
			WifiConnected:      l.WifiConnected,
			UpdateRunning:      l.UpdateRunning,
		},
		SleepInMs:     snap.SleepIn.Milliseconds(),
		Transitions:   snap.Transitions,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config:        ConfigJSON{HTTPAddr: snap.Config.HTTPAddr, DeepSleep: snap.Config.DeepSleep},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
