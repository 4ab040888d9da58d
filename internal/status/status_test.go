package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/power"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewTracker(t *testing.T) {
	tr := NewTracker(start, Config{Name: "kitchen", Broker: "tcp://localhost:1883", HTTPAddr: ":80"})

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Name != "kitchen" {
		t.Errorf("Config.Name: got %q, want kitchen", snap.Config.Name)
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if snap.Transitions != 0 {
		t.Errorf("Transitions: got %d, want 0", snap.Transitions)
	}
}

func TestUpdateCountsTransitions(t *testing.T) {
	tr := NewTracker(start, Config{})

	tr.Update(Flower{State: "OFF"}, power.Facts{}, 0)
	tr.Update(Flower{State: "STANDBY", Petals: 0}, power.Facts{BatteryLevel: 80}, 0)
	tr.Update(Flower{State: "STANDBY", Petals: 40}, power.Facts{BatteryLevel: 79}, time.Minute)
	tr.Update(Flower{State: "REMOTE_CONTROL"}, power.Facts{}, 0)

	snap := tr.Snapshot()
	if snap.Transitions != 2 {
		t.Errorf("Transitions: got %d, want 2", snap.Transitions)
	}
	if snap.Flower.State != "REMOTE_CONTROL" {
		t.Errorf("State: got %q", snap.Flower.State)
	}
}

func TestSetLinksAndMQTT(t *testing.T) {
	tr := NewTracker(start, Config{})

	tr.SetLinks(Links{BluetoothEnabled: true, WifiConnected: true})
	tr.SetMQTTConnected(true)

	snap := tr.Snapshot()
	if !snap.Links.BluetoothEnabled || !snap.Links.WifiConnected {
		t.Errorf("Links: got %+v", snap.Links)
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetConfig(Config{Name: "renamed"})
	if tr.Snapshot().Config.Name != "renamed" {
		t.Error("SetConfig not applied")
	}
}

func TestSnapshotUptime(t *testing.T) {
	snap := Snapshot{StartTime: start, Now: start.Add(15 * time.Minute)}
	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(start, Config{})
	tr.now = func() time.Time { return start.Add(time.Hour) }

	if got := tr.Snapshot().Now; !got.Equal(start.Add(time.Hour)) {
		t.Errorf("Now: got %v", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(start, Config{})
	tr.Update(Flower{State: "STANDBY", Petals: 100}, power.Facts{}, 0)

	snap1 := tr.Snapshot()
	tr.Update(Flower{State: "OFF"}, power.Facts{}, 0)

	if snap1.Flower.State != "STANDBY" || snap1.Flower.Petals != 100 {
		t.Error("snapshot should be a copy; flower was modified")
	}
}

func fullSnapshot() Snapshot {
	return Snapshot{
		Flower: Flower{
			State:     "BLUETOOTH_PAIRING",
			Petals:    60,
			Color:     color.HSB{H: 0.5, S: 1, B: 0.7},
			Lit:       true,
			Indicator: "BLUETOOTH",
		},
		Power:         power.Facts{BatteryVoltage: 3.9, BatteryLevel: 66, Charging: true, USBPowered: true},
		Links:         Links{BluetoothEnabled: true},
		SleepIn:       42 * time.Second,
		Transitions:   3,
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Name: "desk", Broker: "tcp://localhost:1883", HTTPAddr: ":80", DeepSleep: true},
	}
}

func TestFormatJSON(t *testing.T) {
	data := FormatJSON(fullSnapshot())

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	s := parsed.Status
	if s.State != "BLUETOOTH_PAIRING" {
		t.Errorf("State: got %q", s.State)
	}
	if s.Flower.Petals != 60 || s.Flower.Color.H != 0.5 || !s.Flower.Lit {
		t.Errorf("Flower: got %+v", s.Flower)
	}
	if s.Power.Level != 66 || !s.Power.USBPowered {
		t.Errorf("Power: got %+v", s.Power)
	}
	if s.SleepInMs != 42000 {
		t.Errorf("SleepInMs: got %d, want 42000", s.SleepInMs)
	}
	if s.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", s.UptimeSeconds)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
	if s.Event != "" || s.Reason != "" {
		t.Errorf("expected no event/reason for web format, got %q/%q", s.Event, s.Reason)
	}
}

func TestFormatJSONUnknownState(t *testing.T) {
	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(Snapshot{StartTime: start, Now: start}), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.State != "UNKNOWN" {
		t.Errorf("State: got %q, want UNKNOWN", parsed.Status.State)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	data := FormatStatusEvent(fullSnapshot(), "SHUTDOWN", "SIGTERM")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" || parsed.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason: got %q/%q", parsed.Status.Event, parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsEmptyFields(t *testing.T) {
	data := FormatStatusEvent(Snapshot{StartTime: start, Now: start}, "STARTUP", "")

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if _, exists := status["sleep_in_ms"]; exists {
		t.Error("sleep_in_ms should be omitted when no sleep is planned")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(start, Config{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(Flower{State: "STANDBY", Petals: i % 100}, power.Facts{}, 0)
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetLinks(Links{WifiEnabled: i%3 == 0})
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = FormatJSON(tr.Snapshot())
		}
	}()

	wg.Wait()
}
