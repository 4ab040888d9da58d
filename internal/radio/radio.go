// Package radio switches the Bluetooth and Wi-Fi radios through the system
// services that own them: BlueZ and NetworkManager, both over the D-Bus
// system bus.
package radio

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

// Radio is one switchable radio.
type Radio interface {
	SetEnabled(on bool) error
	Enabled() (bool, error)
	Connected() (bool, error)
}

// busObject is the part of dbus.BusObject the radios use.
type busObject interface {
	GetProperty(p string) (dbus.Variant, error)
	SetProperty(p string, v interface{}) error
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

const (
	bluezService   = "org.bluez"
	bluezAdapter   = "org.bluez.Adapter1"
	bluezDevice    = "org.bluez.Device1"
	objectManager  = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
	nmService      = "org.freedesktop.NetworkManager"
	nmPath         = "/org/freedesktop/NetworkManager"
	nmWireless     = nmService + ".WirelessEnabled"
	nmState        = nmService + ".State"
	nmConnectedMin = 60 // NM_STATE_CONNECTED_SITE
)

// Bluetooth is a BlueZ adapter.
type Bluetooth struct {
	adapter busObject
	root    busObject
	path    dbus.ObjectPath
}

// NewBluetooth controls the named adapter, e.g. "hci0".
func NewBluetooth(conn *dbus.Conn, adapter string) *Bluetooth {
	path := dbus.ObjectPath("/org/bluez/" + adapter)
	return &Bluetooth{
		adapter: conn.Object(bluezService, path),
		root:    conn.Object(bluezService, "/"),
		path:    path,
	}
}

// SetEnabled powers the adapter and makes it discoverable for pairing, or
// powers it off.
func (b *Bluetooth) SetEnabled(on bool) error {
	if err := b.adapter.SetProperty(bluezAdapter+".Powered", dbus.MakeVariant(on)); err != nil {
		return fmt.Errorf("bluetooth powered=%t: %w", on, err)
	}
	if on {
		if err := b.adapter.SetProperty(bluezAdapter+".Discoverable", dbus.MakeVariant(true)); err != nil {
			return fmt.Errorf("bluetooth discoverable: %w", err)
		}
	}
	return nil
}

// Enabled reports whether the adapter is powered.
func (b *Bluetooth) Enabled() (bool, error) {
	v, err := b.adapter.GetProperty(bluezAdapter + ".Powered")
	if err != nil {
		return false, fmt.Errorf("bluetooth powered: %w", err)
	}
	on, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("bluetooth powered: unexpected %s", v.Signature())
	}
	return on, nil
}

// Connected reports whether any device of the adapter is connected.
func (b *Bluetooth) Connected() (bool, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := b.root.Call(objectManager, 0).Store(&objects); err != nil {
		return false, fmt.Errorf("bluetooth devices: %w", err)
	}
	prefix := string(b.path) + "/"
	for path, ifaces := range objects {
		if !strings.HasPrefix(string(path), prefix) {
			continue
		}
		dev, ok := ifaces[bluezDevice]
		if !ok {
			continue
		}
		if connected, _ := dev["Connected"].Value().(bool); connected {
			return true, nil
		}
	}
	return false, nil
}

// Wifi is the NetworkManager wireless switch.
type Wifi struct {
	nm busObject
}

// NewWifi controls NetworkManager's wireless switch.
func NewWifi(conn *dbus.Conn) *Wifi {
	return &Wifi{nm: conn.Object(nmService, nmPath)}
}

// SetEnabled flips the wireless switch.
func (w *Wifi) SetEnabled(on bool) error {
	if err := w.nm.SetProperty(nmWireless, dbus.MakeVariant(on)); err != nil {
		return fmt.Errorf("wifi enabled=%t: %w", on, err)
	}
	return nil
}

// Enabled reports the wireless switch.
func (w *Wifi) Enabled() (bool, error) {
	v, err := w.nm.GetProperty(nmWireless)
	if err != nil {
		return false, fmt.Errorf("wifi enabled: %w", err)
	}
	on, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("wifi enabled: unexpected %s", v.Signature())
	}
	return on, nil
}

// Connected reports whether NetworkManager has at least site connectivity.
func (w *Wifi) Connected() (bool, error) {
	v, err := w.nm.GetProperty(nmState)
	if err != nil {
		return false, fmt.Errorf("network state: %w", err)
	}
	state, ok := v.Value().(uint32)
	if !ok {
		return false, fmt.Errorf("network state: unexpected %s", v.Signature())
	}
	return state >= nmConnectedMin, nil
}
