package behavior

import (
	"log/slog"

	"github.com/sweeney/flower-controller/internal/clock"
	"github.com/sweeney/flower-controller/internal/flower"
	"github.com/sweeney/flower-controller/internal/touch"
)

// Mode is the payload of the extended states owned by Bloom.
type Mode uint8

const (
	Opening Mode = iota + 1
	Open
	Closing
	Candle
)

func (m Mode) String() string {
	switch m {
	case Opening:
		return "OPENING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Candle:
		return "CANDLE"
	}
	return "UNKNOWN"
}

const (
	bloomTransition clock.Millis = 5000
	recolorFade     clock.Millis = 1000
)

// Petal levels in percent.
const (
	bloomOpenLevel  = 100
	candleOpenLevel = 50
)

// Bloom is the everyday personality of the flower, composed on top of a
// Supervisor. A tap opens the flower in a fresh palette color and closes it
// again; a long press lights a candle. The supervisor sees every gesture
// first.
type Bloom struct {
	*Supervisor
	device Device
	logger *slog.Logger

	long bool
	hold bool
}

// NewBloom wraps sup.
func NewBloom(sup *Supervisor, device Device, logger *slog.Logger) *Bloom {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bloom{Supervisor: sup, device: device, logger: logger}
}

// Tick runs the supervisor and settles the opening and closing states.
func (b *Bloom) Tick() {
	b.Supervisor.Tick()
	b.ChangeStateIfIdle(Ext(Opening), Ext(Open))
	b.ChangeStateIfIdle(Ext(Closing), Core(Standby))
}

// OnTouch offers e to the supervisor, then acts on releases.
func (b *Bloom) OnTouch(e touch.Event) bool {
	if b.Supervisor.OnTouch(e) {
		return true
	}

	switch e {
	case touch.Down:
		b.long = false
		b.hold = false
		return false
	case touch.Long:
		b.long = true
		return false
	case touch.Hold:
		b.hold = true
		return false
	}

	// Up
	if b.hold {
		return false
	}
	state := b.State()
	switch {
	case state.Is(Standby) && b.long:
		b.logger.Info("candle")
		b.device.StartEffect(flower.CandleEffect)
		b.device.SetPetalsOpenLevel(candleOpenLevel, bloomTransition)
		b.ChangeState(Ext(Candle))
	case state.Is(Standby):
		c := b.NextRandomColor()
		b.logger.Info("blooming", "h", c.H, "s", c.S, "b", c.B)
		b.device.TransitionColor(c.H, c.S, c.B, bloomTransition)
		b.device.SetPetalsOpenLevel(bloomOpenLevel, bloomTransition)
		b.ChangeState(Ext(Opening))
	case state == Ext(Open) && b.long:
		c := b.NextRandomColor()
		b.device.TransitionColor(c.H, c.S, c.B, recolorFade)
	case state == Ext(Open):
		b.close()
	case state == Ext(Candle):
		b.device.StopEffect(true)
		b.close()
	default:
		return false
	}
	return true
}

func (b *Bloom) close() {
	b.logger.Info("closing")
	b.device.TransitionBrightness(0, bloomTransition)
	b.device.SetPetalsOpenLevel(0, bloomTransition)
	b.ChangeState(Ext(Closing))
}
