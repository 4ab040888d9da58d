package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/flower-controller/internal/touch"
)

func newBloom(t *testing.T) (*Bloom, *harness) {
	t.Helper()
	h := newHarness(t, onBattery)
	b := NewBloom(h.sup, h.dev, nil)
	b.Setup(false)
	return b, h
}

func tap(b *Bloom, events ...touch.Event) bool {
	handled := false
	for _, e := range events {
		handled = b.OnTouch(e)
	}
	return handled
}

func TestBloomOpensAndCloses(t *testing.T) {
	b, h := newBloom(t)
	h.rnd.values = []int{2}
	require.True(t, h.planner.Armed())

	assert.True(t, tap(b, touch.Down, touch.Up))
	assert.Equal(t, Ext(Opening), b.State())
	assert.Contains(t, h.dev.Calls, "color 0.40 1.00 1.00 5000")
	assert.Contains(t, h.dev.Calls, "petals 100 5000")
	assert.False(t, h.planner.Armed(), "an open flower does not sleep")

	h.dev.Moving = true
	b.Tick()
	assert.Equal(t, Ext(Opening), b.State())
	assert.False(t, tap(b, touch.Down, touch.Up), "busy while opening")

	h.dev.Moving = false
	b.Tick()
	assert.Equal(t, Ext(Open), b.State())

	assert.True(t, tap(b, touch.Down, touch.Up))
	assert.Equal(t, Ext(Closing), b.State())
	assert.Contains(t, h.dev.Calls, "brightness 0.00 5000")
	assert.Contains(t, h.dev.Calls, "petals 0 5000")

	b.Tick()
	assert.Equal(t, Core(Standby), b.State())
	assert.True(t, h.planner.Armed())
}

func TestBloomLongPressRecolors(t *testing.T) {
	b, h := newBloom(t)
	h.rnd.values = []int{1, 3}
	tap(b, touch.Down, touch.Up)
	b.Tick()
	require.Equal(t, Ext(Open), b.State())

	assert.True(t, tap(b, touch.Down, touch.Long, touch.Up))
	assert.Equal(t, Ext(Open), b.State())
	assert.Contains(t, h.dev.Calls, "color 0.60 1.00 1.00 1000")
}

func TestBloomCandle(t *testing.T) {
	b, h := newBloom(t)

	assert.True(t, tap(b, touch.Down, touch.Long, touch.Up))
	assert.Equal(t, Ext(Candle), b.State())
	assert.Contains(t, h.dev.Calls, "effect candle")
	assert.Contains(t, h.dev.Calls, "petals 50 5000")

	assert.True(t, tap(b, touch.Down, touch.Up))
	assert.Equal(t, Ext(Closing), b.State())
	assert.Contains(t, h.dev.Calls, "stop true")
}

func TestBloomLeavesHoldToPairing(t *testing.T) {
	b, h := newBloom(t)

	assert.True(t, tap(b, touch.Down, touch.Long, touch.Hold))
	assert.Equal(t, Core(BluetoothPairing), b.State())
	assert.False(t, b.OnTouch(touch.Up))
	assert.Equal(t, Core(BluetoothPairing), b.State())

	// Interrupting the pairing swallows the rest of that gesture.
	assert.True(t, tap(b, touch.Down, touch.Up))
	assert.Equal(t, Core(Standby), b.State())
	assert.NotContains(t, h.dev.Calls, "petals 100 5000")
}

func TestBloomIgnoresTouchInRemoteControl(t *testing.T) {
	b, _ := newBloom(t)
	b.OnRemoteSession()

	assert.False(t, tap(b, touch.Down, touch.Up))
	assert.Equal(t, Core(RemoteControl), b.State())
}
