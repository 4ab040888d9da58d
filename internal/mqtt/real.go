package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	publishTimeout = 5 * time.Second
	commandQueue   = 16
)

// Options configures the broker connection.
type Options struct {
	Broker      string
	TopicPrefix string
	BufferSize  int
	Logger      *slog.Logger
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are queued and replayed on reconnect.
type RealPublisher struct {
	client   paho.Client
	topics   Topics
	logger   *slog.Logger
	commands chan Command

	mu     sync.Mutex
	outbox *outbox
}

// NewRealPublisher starts connecting to the broker. It returns immediately;
// the client keeps retrying in the background.
func NewRealPublisher(o Options) *RealPublisher {
	p := &RealPublisher{
		topics:   NewTopics(o.TopicPrefix),
		logger:   o.Logger,
		commands: make(chan Command, commandQueue),
		outbox:   newOutbox(o.BufferSize),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID("flowerd-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(p.topics.System, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.logger.Warn("mqtt connection lost", "error", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.logger.Info("mqtt connected", "command_topic", p.topics.Command)
	c.Subscribe(p.topics.Command, 1, p.onMessage)

	p.mu.Lock()
	pending, dropped := p.outbox.drain()
	p.mu.Unlock()
	if dropped > 0 {
		p.logger.Warn("mqtt outbox overflowed while offline", "dropped", dropped)
	}
	for _, m := range pending {
		if err := p.send(m); err != nil {
			p.logger.Error("mqtt replay failed", "topic", m.topic, "error", err)
		}
	}
}

func (p *RealPublisher) onMessage(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(msg.Payload())
	if err != nil {
		p.logger.Warn("ignoring command", "error", err)
		return
	}
	select {
	case p.commands <- cmd:
	default:
		p.logger.Warn("command queue full, dropping command", "command", cmd.Kind)
	}
}

func (p *RealPublisher) publish(m outgoing) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		overwrote := p.outbox.push(m)
		p.mu.Unlock()
		if overwrote {
			p.logger.Debug("mqtt outbox full, dropped oldest", "topic", m.topic)
		}
		return nil
	}
	return p.send(m)
}

func (p *RealPublisher) send(m outgoing) error {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// PublishStatus sends a battery status report, retained so new subscribers
// see the last level.
func (p *RealPublisher) PublishStatus(r StatusReport) error {
	payload, err := FormatStatusPayload(r)
	if err != nil {
		return fmt.Errorf("format status payload: %w", err)
	}
	return p.publish(outgoing{topic: p.topics.Status, payload: payload, retained: true})
}

// PublishState sends a state transition.
func (p *RealPublisher) PublishState(c StateChange) error {
	payload, err := FormatStatePayload(c)
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	return p.publish(outgoing{topic: p.topics.State, payload: payload})
}

// PublishSystem sends a lifecycle event with QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(outgoing{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

// Commands delivers parsed remote commands.
func (p *RealPublisher) Commands() <-chan Command { return p.commands }

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool { return p.client.IsConnectionOpen() }

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
