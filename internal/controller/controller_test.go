package controller

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/flower-controller/internal/behavior"
	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/config"
	"github.com/sweeney/flower-controller/internal/flower"
	"github.com/sweeney/flower-controller/internal/gpio"
	"github.com/sweeney/flower-controller/internal/mqtt"
	"github.com/sweeney/flower-controller/internal/status"
	"github.com/sweeney/flower-controller/internal/touch"
)

type firstColor struct{}

func (firstColor) IntN(int) int { return 0 }

type rig struct {
	clk     *clock.Fake
	pad     *gpio.FakePad
	body    *flower.Flower
	sensor  *flower.FakePowerSensor
	remote  *behavior.FakeRemote
	sleeper *behavior.FakeSleeper
	store   *config.Store
	pub     *mqtt.FakePublisher
	reloads chan *config.Config
	tracker *status.Tracker
	bloom   *behavior.Bloom
	ctl     *Controller
}

func newRig(t *testing.T, edit func(*config.Config)) *rig {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Default()
	cfg.MQTT.HeartbeatS = 0
	if edit != nil {
		edit(cfg)
	}

	r := &rig{
		clk:     clock.NewFake(1000),
		remote:  &behavior.FakeRemote{},
		sleeper: &behavior.FakeSleeper{},
		store:   config.NewStore("", cfg, logger),
		pub:     mqtt.NewFakePublisher(),
		reloads: make(chan *config.Config, 1),
		tracker: status.NewTracker(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), TrackerConfig(cfg)),
	}
	det := touch.NewDetector(logger)
	r.pad = gpio.NewFakePad(func() { det.Edge(r.clk.Now()) })

	hw, _, _, _, sensor := flower.FakeHardware()
	r.sensor = sensor
	r.body = flower.New(r.clk, hw, det, flower.Options{Seed: 7, Settle: func(time.Duration) {}}, logger)

	planner := behavior.NewSleepPlanner(r.clk, r.store, r.body, r.remote, r.sleeper, logger)
	sup := behavior.NewSupervisor(behavior.Deps{
		Clock:    r.clk,
		Device:   r.body,
		Remote:   r.remote,
		Settings: r.store,
		Planner:  planner,
		Logger:   logger,
		Rand:     firstColor{},
		Wait:     func(time.Duration) {},
	})
	r.bloom = behavior.NewBloom(sup, r.body, logger)

	r.ctl = New(Deps{
		Clock:     r.clk,
		Detector:  det,
		Pad:       r.pad,
		Behavior:  r.bloom,
		Body:      r.body,
		Planner:   planner,
		Store:     r.store,
		Links:     r.remote,
		Publisher: r.pub,
		Reloads:   r.reloads,
		Tracker:   r.tracker,
		Logger:    logger,
		Now:       func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	sup.Setup(false)
	return r
}

func (r *rig) run(ms clock.Millis) {
	for elapsed := clock.Millis(0); elapsed < ms; elapsed += 20 {
		r.clk.Advance(20)
		r.ctl.Tick()
	}
}

func (r *rig) tap() {
	r.pad.Touch()
	r.run(200)
	r.pad.Release()
	r.run(200)
}

func TestStartupPublishesStandby(t *testing.T) {
	r := newRig(t, nil)
	require.Len(t, r.pub.States, 1)
	assert.Equal(t, "OFF", r.pub.States[0].From)
	assert.Equal(t, "STANDBY", r.pub.States[0].To)
}

func TestTapOpensAndClosesFlower(t *testing.T) {
	r := newRig(t, nil)
	r.run(100)

	r.tap()
	assert.Equal(t, behavior.Ext(behavior.Opening), r.bloom.State())

	r.run(5500)
	assert.Equal(t, behavior.Ext(behavior.Open), r.bloom.State())
	assert.Equal(t, 100, r.body.PetalsOpenLevel())
	assert.True(t, r.body.IsLit())

	r.tap()
	r.run(5500)
	assert.True(t, r.bloom.State().Is(behavior.Standby))
	assert.Equal(t, 0, r.body.PetalsOpenLevel())
}

func TestHeldPadKeepsSessionOpen(t *testing.T) {
	r := newRig(t, nil)
	r.run(100)

	r.pad.Touch()
	r.run(2500)
	r.pad.Release()
	r.run(200)

	assert.Equal(t, behavior.Ext(behavior.Candle), r.bloom.State(), "long press lights the candle")
}

func TestDeviceCommandOpensSession(t *testing.T) {
	r := newRig(t, nil)
	r.run(100)

	r.pub.Send(mqtt.Command{Kind: mqtt.CommandPetals, Level: 60, DurationMS: 500})
	r.run(20)
	assert.True(t, r.bloom.State().Is(behavior.RemoteControl))

	r.run(600)
	assert.Equal(t, 60, r.body.PetalsOpenLevel())

	last := r.pub.States[len(r.pub.States)-1]
	assert.Equal(t, "REMOTE_CONTROL", last.To)
}

func TestColorAndEffectCommands(t *testing.T) {
	r := newRig(t, nil)
	r.run(100)

	r.pub.Send(mqtt.Command{Kind: mqtt.CommandSession})
	r.pub.Send(mqtt.Command{Kind: mqtt.CommandColor, H: 0.6, S: 1, B: 1})
	r.run(1100)
	assert.True(t, r.bloom.State().Is(behavior.RemoteControl))
	assert.InDelta(t, 0.6, r.body.Color().H, 1e-9)

	r.pub.Send(mqtt.Command{Kind: mqtt.CommandEffect, Effect: "rainbow"})
	r.run(100)
	assert.True(t, r.body.IsAnimating())

	r.pub.Send(mqtt.Command{Kind: mqtt.CommandEffect, Effect: "off", DurationMS: 200})
	r.run(400)
	assert.False(t, r.body.IsLit())
	r.run(40)
	assert.True(t, r.bloom.State().Is(behavior.Standby), "idle remote session ends")
}

func TestDeviceCommandDroppedWhileOff(t *testing.T) {
	r := newRig(t, nil)
	r.sensor.Facts.SwitchedOn = false
	r.run(1100)
	require.True(t, r.bloom.State().Is(behavior.Off))

	r.pub.Send(mqtt.Command{Kind: mqtt.CommandPetals, Level: 80})
	r.run(1500)
	assert.True(t, r.bloom.State().Is(behavior.Off))
	assert.Equal(t, 0, r.body.PetalsOpenLevel())
}

func TestUpdateCommand(t *testing.T) {
	r := newRig(t, nil)
	r.run(100)
	r.pub.Send(mqtt.Command{Kind: mqtt.CommandPetals, Level: 50, DurationMS: 500})
	r.run(600)

	r.pub.Send(mqtt.Command{Kind: mqtt.CommandUpdate, Ref: "v4.0.0"})
	r.run(20)
	assert.True(t, r.bloom.State().Is(behavior.UpdateInit), "waits for the petals to close")
	assert.Empty(t, r.remote.Updates)

	r.run(3000)
	assert.True(t, r.bloom.State().Is(behavior.UpdateRunning))
	assert.Equal(t, []string{"v4.0.0"}, r.remote.Updates)
	assert.Equal(t, 0, r.body.PetalsOpenLevel())
}

func TestReloadReplacesSettings(t *testing.T) {
	r := newRig(t, nil)
	r.run(100)

	cfg := config.Default()
	cfg.Device.Name = "hallway"
	cfg.Hardware.ColorBrightness = 0.3
	cfg.Device.LowPowerMode = true
	r.reloads <- cfg
	r.run(20)

	assert.Equal(t, "hallway", r.store.Config().Device.Name)
	assert.Equal(t, "hallway", r.tracker.Snapshot().Config.Name)
	assert.True(t, r.body.IsLowPowerMode())
}

func TestTrackerFollowsFlower(t *testing.T) {
	r := newRig(t, nil)
	r.remote.Wifi = true
	r.remote.WifiConnected = true
	r.run(100)

	snap := r.tracker.Snapshot()
	assert.Equal(t, "STANDBY", snap.Flower.State)
	assert.Equal(t, 77, snap.Power.BatteryLevel)
	assert.True(t, snap.Links.WifiConnected)
}

func TestHeartbeat(t *testing.T) {
	r := newRig(t, func(c *config.Config) { c.MQTT.HeartbeatS = 1 })
	r.run(1100)

	require.NotEmpty(t, r.pub.SystemEvents)
	hb := r.pub.SystemEvents[0]
	assert.Equal(t, "HEARTBEAT", hb.Event)
	assert.False(t, hb.Retained)
	assert.Contains(t, string(hb.RawPayload), `"event":"HEARTBEAT"`)
}

func TestPublishSystemShutdown(t *testing.T) {
	r := newRig(t, nil)
	r.run(40)
	r.ctl.PublishSystem("SHUTDOWN", "SIGTERM")

	require.Len(t, r.pub.SystemEvents, 1)
	e := r.pub.SystemEvents[0]
	assert.True(t, e.Retained)
	assert.Contains(t, string(e.RawPayload), `"reason":"SIGTERM"`)
	assert.Contains(t, string(e.RawPayload), `"state":"STANDBY"`)
}
