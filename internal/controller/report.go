package controller

import (
	"log/slog"
	"time"

	"github.com/sweeney/flower-controller/internal/behavior"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/mqtt"
	"github.com/sweeney/flower-controller/internal/status"
)

// stateReporter publishes accepted behavior transitions.
type stateReporter struct {
	publisher mqtt.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func (r *stateReporter) OnStateChange(from, to behavior.State) {
	err := r.publisher.PublishState(mqtt.StateChange{Timestamp: r.now(), From: from.String(), To: to.String()})
	if err != nil {
		r.logger.Warn("state publish failed", "error", err)
	}
}

func (c *Controller) armHeartbeat(now clock.Millis) {
	c.heartbeat.Disarm()
	if c.publisher == nil || c.store == nil {
		return
	}
	if s := c.store.Config().MQTT.HeartbeatS; s > 0 {
		c.heartbeat.Arm(now, clock.Millis(s)*1000)
	}
}

// report refreshes the status tracker and sends the heartbeat when due.
func (c *Controller) report(now clock.Millis) {
	if c.tracker != nil {
		c.track(now)
	}
	if c.heartbeat.Due(now) {
		c.armHeartbeat(now)
		c.PublishSystem("HEARTBEAT", "")
	}
}

func (c *Controller) track(now clock.Millis) {
	var sleepIn time.Duration
	if c.planner.Armed() {
		sleepIn = time.Duration(c.planner.Remaining()) * time.Millisecond
	}
	c.tracker.Update(status.Flower{
		State:     c.behavior.State().String(),
		Petals:    c.body.PetalsOpenLevel(),
		Color:     c.body.Color(),
		Lit:       c.body.IsLit(),
		Animating: c.body.IsAnimating(),
		Indicator: c.behavior.IndicatedStatus().String(),
	}, c.behavior.PowerFacts(), sleepIn)

	if conn, ok := c.publisher.(mqtt.ConnectionStatus); ok {
		c.tracker.SetMQTTConnected(conn.IsConnected())
	}
	if c.links != nil && (!c.linksPoll.Armed() || c.linksPoll.Due(now)) {
		c.linksPoll.Arm(now, linksInterval)
		c.tracker.SetLinks(status.Links{
			BluetoothEnabled:   c.links.IsBluetoothEnabled(),
			BluetoothConnected: c.links.IsBluetoothConnected(),
			WifiEnabled:        c.links.IsWifiEnabled(),
			WifiConnected:      c.links.IsWifiConnected(),
			UpdateRunning:      c.links.IsUpdateRunning(),
		})
	}
}

// PublishSystem sends a lifecycle event carrying the current status
// snapshot. Without a tracker a plain system payload is sent.
func (c *Controller) PublishSystem(event, reason string) {
	if c.publisher == nil {
		return
	}
	e := mqtt.SystemEvent{
		Timestamp: c.now(),
		Event:     event,
		Reason:    reason,
		Retained:  event != "HEARTBEAT",
	}
	if c.tracker != nil {
		e.RawPayload = status.FormatStatusEvent(c.tracker.Snapshot(), event, reason)
	}
	if err := c.publisher.PublishSystem(e); err != nil {
		c.logger.Warn("system event publish failed", "event", event, "error", err)
		return
	}
	c.logger.Info("published system event", "event", event)
}
