package behavior

import "fmt"

// StateKind enumerates the states the supervisor knows about.
type StateKind uint8

const (
	Standby StateKind = iota
	Off
	LowBattery
	BluetoothPairing
	RemoteControl
	UpdateInit
	UpdateRunning
	// Extended is a state owned by an extension composed on top of the
	// supervisor. Its meaning lives in State.Ext.
	Extended
)

func (k StateKind) String() string {
	switch k {
	case Standby:
		return "STANDBY"
	case Off:
		return "OFF"
	case LowBattery:
		return "LOW_BATTERY"
	case BluetoothPairing:
		return "BLUETOOTH_PAIRING"
	case RemoteControl:
		return "REMOTE_CONTROL"
	case UpdateInit:
		return "UPDATE_INIT"
	case UpdateRunning:
		return "UPDATE_RUNNING"
	case Extended:
		return "EXTENDED"
	}
	return "UNKNOWN"
}

// State is the single active behavior state. Ext is only set for Extended
// and must hold a comparable value.
type State struct {
	Kind StateKind
	Ext  any
}

// Core returns the core state of kind k.
func Core(k StateKind) State {
	return State{Kind: k}
}

// Ext returns an extended state carrying payload.
func Ext(payload any) State {
	return State{Kind: Extended, Ext: payload}
}

// Is reports whether s is of kind k.
func (s State) Is(k StateKind) bool {
	return s.Kind == k
}

func (s State) String() string {
	if s.Kind == Extended {
		return fmt.Sprintf("EXTENDED(%v)", s.Ext)
	}
	return s.Kind.String()
}
