package law

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutate(t *testing.T) {
	t.Run("stability stays in range", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		l := New("gravity", 0.5, "conservation", nil)

		for i := 0; i < 1000; i++ {
			l.Mutate(rng)
			require.GreaterOrEqual(t, l.Stability, 0.0)
			require.LessOrEqual(t, l.Stability, 1.0)
		}
	})

	t.Run("factor bounded per step", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		l := New("charge", 0.5, "symmetry", nil)

		before := l.Stability
		l.Mutate(rng)
		assert.GreaterOrEqual(t, l.Stability, before*0.9)
		assert.LessOrEqual(t, l.Stability, before*1.1)
	})

	t.Run("age increments once per mutation", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		l := New("spin", 0.8, "symmetry", nil)

		for i := 1; i <= 5; i++ {
			l.Mutate(rng)
			assert.Equal(t, i, l.Age)
		}
	})

	t.Run("out of range constructor input clamped on first mutation", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		l := New("hot", 4.2, "entropy", nil)

		l.Mutate(rng)
		assert.LessOrEqual(t, l.Stability, 1.0)
	})

	t.Run("returns receiver for chaining", func(t *testing.T) {
		rng := rand.New(rand.NewSource(9))
		l := New("time", 0.5, "causality", nil)
		assert.Same(t, l, l.Mutate(rng))
	})
}

func TestClone(t *testing.T) {
	orig := New("gravity", 0.7, "conservation", map[string]float64{"time": 0.3})
	orig.Age = 12

	clone := orig.Clone("_sub")

	assert.Equal(t, "gravity_sub", clone.Name)
	assert.Equal(t, 0.7, clone.Stability)
	assert.Equal(t, "conservation", clone.Type)
	assert.Equal(t, 0, clone.Age)

	// Deep copy: mutating the clone's dependencies must not leak back.
	clone.Dependencies["space"] = 0.9
	assert.NotContains(t, orig.Dependencies, "space")
	assert.Equal(t, 0.3, orig.Dependencies["time"])
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.25, Clamp01(0.25))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 1.0, Clamp01(math.Inf(1)))
}
