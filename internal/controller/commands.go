package controller

import (
	"github.com/sweeney/flower-controller/internal/behavior"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/flower"
	"github.com/sweeney/flower-controller/internal/mqtt"
)

// defaultCommandDuration is used when a device command carries no duration.
const defaultCommandDuration clock.Millis = 1000

// apply executes one remote command. Device commands open a remote session
// first and are dropped if the behavior refuses it.
func (c *Controller) apply(cmd mqtt.Command) {
	c.logger.Info("remote command", "command", cmd.Kind)

	switch cmd.Kind {
	case mqtt.CommandSession:
		c.behavior.OnRemoteSession()
		return
	case mqtt.CommandUpdate:
		c.behavior.OnUpdateRequest(cmd.Ref)
		return
	}

	if !c.behavior.State().Is(behavior.RemoteControl) {
		c.behavior.OnRemoteSession()
		if !c.behavior.State().Is(behavior.RemoteControl) {
			c.logger.Warn("device command dropped", "command", cmd.Kind, "state", c.behavior.State().String())
			return
		}
	}

	d := clock.Millis(cmd.DurationMS)
	if d == 0 {
		d = defaultCommandDuration
	}
	switch cmd.Kind {
	case mqtt.CommandColor:
		c.body.TransitionColor(cmd.H, cmd.S, cmd.B, d)
	case mqtt.CommandPetals:
		c.body.SetPetalsOpenLevel(cmd.Level, d)
	case mqtt.CommandEffect:
		if cmd.Effect == "off" {
			c.body.StopEffect(false)
			c.body.TransitionBrightness(0, d)
			return
		}
		e, err := flower.ParseEffect(cmd.Effect)
		if err != nil {
			c.logger.Warn("effect command dropped", "error", err)
			return
		}
		c.body.StartEffect(e)
	}
}
