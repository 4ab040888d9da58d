// Package controller runs the flower's main loop: one tick reads the touch
// pad, applies remote commands and reloaded settings, advances the behavior
// and the animations and finally lets the deep-sleep planner decide.
package controller

import (
	"log/slog"
	"time"

	"github.com/sweeney/flower-controller/internal/behavior"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/config"
	"github.com/sweeney/flower-controller/internal/gpio"
	"github.com/sweeney/flower-controller/internal/mqtt"
	"github.com/sweeney/flower-controller/internal/power"
	"github.com/sweeney/flower-controller/internal/status"
	"github.com/sweeney/flower-controller/internal/touch"
)

// TickInterval is the main loop period.
const TickInterval = 20 * time.Millisecond

// Behavior is the composed personality of the flower. *behavior.Bloom
// implements it.
type Behavior interface {
	touch.Sink
	Tick()
	OnRemoteSession()
	OnUpdateRequest(ref string)
	SetStateSink(sink behavior.StateSink)
	State() behavior.State
	PowerFacts() power.Facts
	IndicatedStatus() behavior.Status
}

// Body is the animated flower. *flower.Flower implements it.
type Body interface {
	behavior.Device
	Update()
	SetColorBrightness(b float64)
	SetLowPowerMode(on bool)
}

// Deps are the collaborators of a Controller. Pad, Publisher, Reloads,
// Tracker and Links are optional.
type Deps struct {
	Clock     clock.Clock
	Detector  *touch.Detector
	Pad       gpio.Pad
	Behavior  Behavior
	Body      Body
	Planner   *behavior.SleepPlanner
	Store     *config.Store
	Links     behavior.Remote
	Publisher mqtt.Publisher
	Reloads   <-chan *config.Config
	Tracker   *status.Tracker
	Logger    *slog.Logger
	// Now is the wall clock used for event timestamps.
	Now func() time.Time
}

// Controller owns the tick. All of its methods run on the loop goroutine.
type Controller struct {
	clk       clock.Clock
	detector  *touch.Detector
	pad       gpio.Pad
	behavior  Behavior
	body      Body
	planner   *behavior.SleepPlanner
	store     *config.Store
	links     behavior.Remote
	publisher mqtt.Publisher
	commands  <-chan mqtt.Command
	reloads   <-chan *config.Config
	tracker   *status.Tracker
	logger    *slog.Logger
	now       func() time.Time

	heartbeat clock.Deadline
	linksPoll clock.Deadline
	padFailed bool
}

// linksInterval is how often radio state is sampled for the status page.
const linksInterval clock.Millis = 5000

// New wires the detector to the behavior and, when a publisher is given,
// reports state changes to MQTT.
func New(d Deps) *Controller {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	c := &Controller{
		clk:       d.Clock,
		detector:  d.Detector,
		pad:       d.Pad,
		behavior:  d.Behavior,
		body:      d.Body,
		planner:   d.Planner,
		store:     d.Store,
		links:     d.Links,
		publisher: d.Publisher,
		reloads:   d.Reloads,
		tracker:   d.Tracker,
		logger:    logger,
		now:       now,
	}
	d.Detector.SetSink(d.Behavior)
	if d.Publisher != nil {
		c.commands = d.Publisher.Commands()
		d.Behavior.SetStateSink(&stateReporter{publisher: d.Publisher, now: now, logger: logger})
	}
	c.armHeartbeat(c.clk.Now())
	return c
}

// Tick runs one iteration of the main loop.
func (c *Controller) Tick() {
	now := c.clk.Now()

	c.pollPad(now)
	c.detector.Update(now)

	c.drainCommands()
	c.drainReloads()

	c.behavior.Tick()
	c.body.Update()

	c.planner.Check(c.clk.Now(), c.behavior.PowerFacts().USBPowered)

	c.report(c.clk.Now())
}

// pollPad keeps a touch session alive while the pad stays active; the GPIO
// event goroutine only reports transitions.
func (c *Controller) pollPad(now clock.Millis) {
	if c.pad == nil {
		return
	}
	active, err := c.pad.Active()
	if err != nil {
		if !c.padFailed {
			c.logger.Error("touch pad read failed", "error", err)
			c.padFailed = true
		}
		return
	}
	c.padFailed = false
	if active {
		c.detector.Edge(now)
	}
}

func (c *Controller) drainCommands() {
	for {
		select {
		case cmd := <-c.commands:
			c.apply(cmd)
		default:
			return
		}
	}
}

func (c *Controller) drainReloads() {
	for {
		select {
		case cfg := <-c.reloads:
			c.reload(cfg)
		default:
			return
		}
	}
}

func (c *Controller) reload(cfg *config.Config) {
	c.store.Replace(cfg)
	c.body.SetColorBrightness(cfg.Hardware.ColorBrightness)
	c.body.SetLowPowerMode(cfg.Device.LowPowerMode)
	if !cfg.DeepSleep.Enabled && c.planner.Armed() {
		c.planner.Cancel()
	}
	if c.tracker != nil {
		c.tracker.SetConfig(TrackerConfig(cfg))
	}
	c.armHeartbeat(c.clk.Now())
	c.logger.Info("configuration reloaded", "deep_sleep", cfg.DeepSleep.Enabled, "palette", len(cfg.Palette))
}

// TrackerConfig is the display configuration for cfg.
func TrackerConfig(cfg *config.Config) status.Config {
	return status.Config{
		Name:      cfg.Device.Name,
		Broker:    cfg.MQTT.Broker,
		HTTPAddr:  cfg.HTTP.Addr,
		DeepSleep: cfg.DeepSleep.Enabled,
	}
}
