package behavior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweeney/flower-controller/internal/color"
)

func indexOf(c color.HSB, k int) int {
	return int(math.Round(c.H * float64(k)))
}

func TestNextRandomColorBatch(t *testing.T) {
	h := newHarness(t, onUSB)
	h.settings.Colors = palette(5)
	// Repeats force rejections inside every batch.
	h.rnd.values = []int{3, 3, 1, 3, 1, 4, 0, 4, 1, 2, 2, 2, 0, 4, 1, 3}

	seen := map[int]int{}
	for i := 0; i < 5; i++ {
		seen[indexOf(h.sup.NextRandomColor(), 5)]++
	}
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1, 3: 1, 4: 1}, seen)

	// The next batch starts over and may repeat the last color.
	assert.Equal(t, 2, indexOf(h.sup.NextRandomColor(), 5))
}

func TestNextRandomColorEveryBatchComplete(t *testing.T) {
	h := newHarness(t, onUSB)
	const k = 7
	h.settings.Colors = palette(k)
	var values []int
	for i := 0; i < 3*k; i++ {
		values = append(values, (i*5)%k)
	}
	h.rnd.values = values

	for batch := 0; batch < 3; batch++ {
		seen := map[int]bool{}
		for i := 0; i < k; i++ {
			seen[indexOf(h.sup.NextRandomColor(), k)] = true
		}
		assert.Len(t, seen, k, "batch %d", batch)
	}
}

func TestNextRandomColorRetryExhaustion(t *testing.T) {
	h := newHarness(t, onUSB)
	h.settings.Colors = palette(3)
	h.rnd.values = []int{1}

	assert.Equal(t, 1, indexOf(h.sup.NextRandomColor(), 3))
	calls := h.rnd.calls
	// Every draw hits the used color; it is returned after 3*3 attempts.
	assert.Equal(t, 1, indexOf(h.sup.NextRandomColor(), 3))
	assert.Equal(t, 9, h.rnd.calls-calls)

	// The batch still lacks 0 and 2.
	h.rnd.values = []int{0}
	h.rnd.calls = 0
	assert.Equal(t, 0, indexOf(h.sup.NextRandomColor(), 3))
	h.rnd.values = []int{0, 1, 2}
	h.rnd.calls = 0
	assert.Equal(t, 2, indexOf(h.sup.NextRandomColor(), 3))

	// Batch complete: 1 is accepted at once.
	h.rnd.values = []int{1}
	h.rnd.calls = 0
	assert.Equal(t, 1, indexOf(h.sup.NextRandomColor(), 3))
	assert.Equal(t, 1, h.rnd.calls)
}

func TestNextRandomColorEmptyPalette(t *testing.T) {
	h := newHarness(t, onUSB)
	h.settings.Colors = nil

	assert.Equal(t, color.White, h.sup.NextRandomColor())
}

func TestNextRandomColorPaletteShrinks(t *testing.T) {
	h := newHarness(t, onUSB)
	h.settings.Colors = palette(5)
	h.rnd.values = []int{4, 3}
	h.sup.NextRandomColor()
	h.sup.NextRandomColor()

	h.settings.Colors = palette(2)
	h.rnd.values = []int{0, 1}
	h.rnd.calls = 0
	assert.Equal(t, 0, indexOf(h.sup.NextRandomColor(), 2))
	assert.Equal(t, 1, indexOf(h.sup.NextRandomColor(), 2))
}
