// Package status provides a thread-safe snapshot of the flower for the HTTP
// server, the live feed and MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/flower-controller/internal/color"
	"github.com/sweeney/flower-controller/internal/power"
)

// Config contains daemon configuration for display.
type Config struct {
	Name      string
	Broker    string
	HTTPAddr  string
	DeepSleep bool
}

// Flower is the body of the flower as last rendered.
type Flower struct {
	State     string
	Petals    int
	Color     color.HSB
	Lit       bool
	Animating bool
	Indicator string
}

// Links is the state of the outside connections.
type Links struct {
	BluetoothEnabled   bool
	BluetoothConnected bool
	WifiEnabled        bool
	WifiConnected      bool
	UpdateRunning      bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Flower        Flower
	Power         power.Facts
	Links         Links
	SleepIn       time.Duration // zero when no sleep is planned
	Transitions   int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{StartTime: startTime, Config: cfg},
		now:  time.Now,
	}
}

// Update records the flower, its power and the sleep countdown.
// Called from the controller after every tick.
func (t *Tracker) Update(f Flower, facts power.Facts, sleepIn time.Duration) {
	t.mu.Lock()
	if f.State != t.snap.Flower.State && t.snap.Flower.State != "" {
		t.snap.Transitions++
	}
	t.snap.Flower = f
	t.snap.Power = facts
	t.snap.SleepIn = sleepIn
	t.mu.Unlock()
}

// SetLinks records radio and update state.
func (t *Tracker) SetLinks(l Links) {
	t.mu.Lock()
	t.snap.Links = l
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetConfig replaces the displayed configuration after a reload.
func (t *Tracker) SetConfig(cfg Config) {
	t.mu.Lock()
	t.snap.Config = cfg
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
