package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIntnRange(t *testing.T) {
	src := NewSeededSource(1)
	for i := 0; i < 1000; i++ {
		v := src.Intn(7)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 7)
	}
}

func TestIntnPanicsOnNonPositive(t *testing.T) {
	src := NewMathSource()
	assert.Panics(t, func() { src.Intn(0) })
	assert.Panics(t, func() { src.Intn(-5) })
}

func TestPropertyIntBetweenStaysInRange(t *testing.T) {
	src := NewSeededSource(42)
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(t, "lo")
		width := rapid.IntRange(1, 200).Draw(t, "width")
		v := IntBetween(src, float64(lo), float64(lo+width))
		if v < lo || v >= lo+width {
			t.Fatalf("IntBetween(%d, %d) = %d out of range", lo, lo+width, v)
		}
	})
}

func TestIntBetweenFloorsBounds(t *testing.T) {
	src := NewSeededSource(7)
	// floor(2.9) == 2 and floor(3.7) == 3, so only 2 is possible.
	for i := 0; i < 100; i++ {
		assert.Equal(t, 2, IntBetween(src, 2.9, 3.7))
	}
}

func TestPickKeyCoversAllKeys(t *testing.T) {
	src := NewSeededSource(3)
	keys := []string{"forest", "desert", "water", "mountain"}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		k := PickKey(src, keys)
		assert.Contains(t, keys, k)
		seen[k] = true
	}
	assert.Len(t, seen, len(keys), "every key should be selectable")
}

func TestPickKeyPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { PickKey(NewMathSource(), nil) })
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	a := NewSeededSource(99)
	b := NewSeededSource(99)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}
