// Package mqtt connects the flower to an MQTT broker: it publishes status,
// state changes and lifecycle events and receives remote commands.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Topic suffixes below the configured prefix.
const (
	TopicStatus  = "status"
	TopicState   = "state"
	TopicSystem  = "system"
	TopicCommand = "cmd"
)

// Topics resolves the full topic names for a prefix.
type Topics struct {
	Status  string
	State   string
	System  string
	Command string
}

// NewTopics builds topics under prefix, e.g. "flower/status".
func NewTopics(prefix string) Topics {
	prefix = strings.TrimSuffix(prefix, "/")
	return Topics{
		Status:  prefix + "/" + TopicStatus,
		State:   prefix + "/" + TopicState,
		System:  prefix + "/" + TopicSystem,
		Command: prefix + "/" + TopicCommand,
	}
}

// Publisher publishes flower events to MQTT.
type Publisher interface {
	// PublishStatus sends the periodic battery status.
	PublishStatus(report StatusReport) error

	// PublishState sends a behavior state transition.
	PublishState(change StateChange) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Commands delivers remote commands received on the command topic.
	Commands() <-chan Command

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// StatusReport is the battery status pushed every status interval.
type StatusReport struct {
	Timestamp time.Time
	Level     int
	Charging  bool
}

// StateChange is an accepted behavior transition.
type StateChange struct {
	Timestamp time.Time
	From      string
	To        string
}

// SystemEvent represents a system lifecycle event (startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // "STARTUP", "SHUTDOWN", "HEARTBEAT", "RECONNECTED"
	Reason     string // signal name on shutdown
	RawPayload []byte // pre-formatted snapshot; returned as is by FormatSystemPayload
	Retained   bool
}

type statusPayload struct {
	Status struct {
		Timestamp    string `json:"timestamp"`
		BatteryLevel int    `json:"battery_level"`
		Charging     bool   `json:"charging"`
	} `json:"status"`
}

// FormatStatusPayload creates the JSON payload for a status report.
func FormatStatusPayload(r StatusReport) ([]byte, error) {
	var p statusPayload
	p.Status.Timestamp = r.Timestamp.UTC().Format(time.RFC3339)
	p.Status.BatteryLevel = r.Level
	p.Status.Charging = r.Charging
	return json.Marshal(p)
}

type statePayload struct {
	State struct {
		Timestamp string `json:"timestamp"`
		From      string `json:"from"`
		To        string `json:"to"`
	} `json:"state"`
}

// FormatStatePayload creates the JSON payload for a state change.
func FormatStatePayload(c StateChange) ([]byte, error) {
	var p statePayload
	p.State.Timestamp = c.Timestamp.UTC().Format(time.RFC3339)
	p.State.From = c.From
	p.State.To = c.To
	return json.Marshal(p)
}

// SystemPayload is the payload of simple system events (LWT, RECONNECTED)
// that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// CommandKind names a remote command.
type CommandKind string

const (
	CommandSession CommandKind = "session"
	CommandUpdate  CommandKind = "update"
	CommandColor   CommandKind = "color"
	CommandPetals  CommandKind = "petals"
	CommandEffect  CommandKind = "effect"
)

// Command is a decoded message from the command topic.
type Command struct {
	Kind       CommandKind `json:"command"`
	Ref        string      `json:"ref,omitempty"`
	H          float64     `json:"h,omitempty"`
	S          float64     `json:"s,omitempty"`
	B          float64     `json:"b,omitempty"`
	Level      int         `json:"level,omitempty"`
	Effect     string      `json:"effect,omitempty"`
	DurationMS int64       `json:"duration_ms,omitempty"`
}

// ParseCommand decodes and checks a command payload.
func ParseCommand(payload []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(payload, &c); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	switch c.Kind {
	case CommandSession:
	case CommandUpdate:
		if c.Ref == "" {
			return Command{}, fmt.Errorf("update command without ref")
		}
	case CommandColor:
		for _, v := range []float64{c.H, c.S, c.B} {
			if v < 0 || v > 1 {
				return Command{}, fmt.Errorf("color component %v out of [0,1]", v)
			}
		}
	case CommandPetals:
		if c.Level < 0 || c.Level > 100 {
			return Command{}, fmt.Errorf("petal level %d out of [0,100]", c.Level)
		}
	case CommandEffect:
		if c.Effect == "" {
			return Command{}, fmt.Errorf("effect command without effect")
		}
	default:
		return Command{}, fmt.Errorf("unknown command %q", c.Kind)
	}
	if c.DurationMS < 0 {
		return Command{}, fmt.Errorf("negative duration %d", c.DurationMS)
	}
	return c, nil
}
