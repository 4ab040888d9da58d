// Package remote gathers the flower's links to the outside world (the two
// radios, the MQTT status feed and the update runner) behind the calls the
// behavior supervisor makes.
package remote

import (
	"log/slog"
	"time"

	"github.com/sweeney/flower-controller/internal/mqtt"
	"github.com/sweeney/flower-controller/internal/radio"
)

// StatusPublisher sends battery status reports.
type StatusPublisher interface {
	PublishStatus(r mqtt.StatusReport) error
}

// Updater runs update jobs.
type Updater interface {
	Start(ref string) (string, error)
	Running() bool
}

// Links implements behavior.Remote. Failures are logged and swallowed; a
// radio that cannot be read reports disabled and disconnected.
type Links struct {
	bluetooth radio.Radio
	wifi      radio.Radio
	status    StatusPublisher
	updater   Updater
	logger    *slog.Logger
	now       func() time.Time
}

// New wires the links. status may be nil when MQTT is not configured.
func New(bluetooth, wifi radio.Radio, status StatusPublisher, updater Updater, logger *slog.Logger) *Links {
	return &Links{
		bluetooth: bluetooth,
		wifi:      wifi,
		status:    status,
		updater:   updater,
		logger:    logger,
		now:       time.Now,
	}
}

func (l *Links) EnableBluetooth()  { l.set("bluetooth", l.bluetooth, true) }
func (l *Links) DisableBluetooth() { l.set("bluetooth", l.bluetooth, false) }
func (l *Links) EnableWifi()       { l.set("wifi", l.wifi, true) }
func (l *Links) DisableWifi()      { l.set("wifi", l.wifi, false) }

func (l *Links) IsBluetoothEnabled() bool   { return l.read("bluetooth", l.bluetooth.Enabled) }
func (l *Links) IsWifiEnabled() bool        { return l.read("wifi", l.wifi.Enabled) }
func (l *Links) IsBluetoothConnected() bool { return l.read("bluetooth", l.bluetooth.Connected) }
func (l *Links) IsWifiConnected() bool      { return l.read("wifi", l.wifi.Connected) }

func (l *Links) set(name string, r radio.Radio, on bool) {
	if err := r.SetEnabled(on); err != nil {
		l.logger.Error("radio switch failed", "radio", name, "on", on, "error", err)
		return
	}
	l.logger.Debug("radio switched", "radio", name, "on", on)
}

func (l *Links) read(name string, get func() (bool, error)) bool {
	v, err := get()
	if err != nil {
		l.logger.Warn("radio query failed", "radio", name, "error", err)
		return false
	}
	return v
}

// PushStatus publishes the battery report.
func (l *Links) PushStatus(level int, charging bool) {
	if l.status == nil {
		return
	}
	err := l.status.PublishStatus(mqtt.StatusReport{Timestamp: l.now(), Level: level, Charging: charging})
	if err != nil {
		l.logger.Warn("status push failed", "error", err)
	}
}

// StartUpdate launches the update job for ref.
func (l *Links) StartUpdate(ref string) {
	id, err := l.updater.Start(ref)
	if err != nil {
		l.logger.Error("update not started", "ref", ref, "error", err)
		return
	}
	l.logger.Info("update job", "job", id, "ref", ref)
}

func (l *Links) IsUpdateRunning() bool { return l.updater.Running() }
