package universe

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiverse-server/internal/law"
)

func newTestUniverse(t *testing.T, entropy float64, stabilities ...float64) *Universe {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	laws := make([]*law.Law, len(stabilities))
	for i, s := range stabilities {
		laws[i] = law.New(fmt.Sprintf("law_%d", i), s, "conservation", nil)
	}
	return New("alpha", laws, entropy, 0, 1, rng)
}

func TestEvolve(t *testing.T) {
	t.Run("fresh universe single step", func(t *testing.T) {
		u := newTestUniverse(t, 0.0, 0.5, 0.5)

		report := u.Evolve()
		require.Nil(t, report)

		assert.GreaterOrEqual(t, u.Entropy, 0.01)
		assert.LessOrEqual(t, u.Entropy, 0.05)
		assert.Equal(t, deriveDimensions(u.Entropy), u.Dimensions)
		assert.Equal(t, 1, u.Clock)

		for _, l := range u.Laws {
			assert.GreaterOrEqual(t, l.Stability, 0.45)
			assert.LessOrEqual(t, l.Stability, 0.55)
		}

		assert.Greater(t, u.Complexity, 0.0)
		assert.False(t, math.IsInf(u.Complexity, 0))
	})

	t.Run("entropy bounded over long runs", func(t *testing.T) {
		u := newTestUniverse(t, 9.99, 0.5)
		// Already past the collapse threshold, so laws go immediately,
		// but entropy keeps accruing and must stay clamped.
		for i := 0; i < 100; i++ {
			u.Evolve()
			require.LessOrEqual(t, u.Entropy, MaxEntropy)
			require.Equal(t, deriveDimensions(u.Entropy), u.Dimensions)
		}
	})

	t.Run("dimensions never below one", func(t *testing.T) {
		u := newTestUniverse(t, 0.0, 0.5)
		u.Evolve()
		assert.GreaterOrEqual(t, u.Dimensions, 1)
	})

	t.Run("memory logs one snapshot per tick", func(t *testing.T) {
		u := newTestUniverse(t, 0.0, 0.3, 0.7)

		u.Evolve()
		u.Evolve()

		require.Len(t, u.Memory, 2)
		assert.Equal(t, 1, u.Memory[0].Clock)
		assert.Equal(t, 2, u.Memory[1].Clock)
		require.Len(t, u.Memory[0].Stabilities, 2)

		// Snapshot reflects post-mutation stabilities of that tick.
		for i, l := range u.Laws {
			assert.Equal(t, l.Stability, u.Memory[1].Stabilities[i])
		}
	})

	t.Run("collapse above threshold returns report and empties laws", func(t *testing.T) {
		u := newTestUniverse(t, 1.6, 0.5, 0.5)

		report := u.Evolve()
		require.NotNil(t, report)

		assert.Empty(t, u.Laws)
		assert.Equal(t, "alpha", report.Universe)
		assert.Equal(t, []string{"law_0", "law_1"}, report.LostLaws)
		assert.Equal(t, 1, report.Clock)
		require.Len(t, u.CollapseHistory, 1)
	})

	t.Run("collapse short-circuits spawning", func(t *testing.T) {
		u := newTestUniverse(t, 5.0, 0.5)
		u.Evolve()
		assert.Empty(t, u.Subuniverses)
	})

	t.Run("spawn probability roughly respected", func(t *testing.T) {
		spawned := 0
		for seed := int64(0); seed < 200; seed++ {
			rng := rand.New(rand.NewSource(seed))
			u := New("p", []*law.Law{law.New("l", 0.5, "t", nil)}, 0.0, 0, 1, rng)
			u.Evolve()
			spawned += len(u.Subuniverses)
		}
		// p=0.3 per step; allow a generous band around 60/200.
		assert.Greater(t, spawned, 30)
		assert.Less(t, spawned, 100)
	})
}

func TestUpdateComplexity(t *testing.T) {
	t.Run("computed from laws and entropy", func(t *testing.T) {
		u := newTestUniverse(t, 1.0, 0.4, 0.6)
		u.UpdateComplexity()
		assert.InDelta(t, 2*0.5/(1.0+0.01), u.Complexity, 1e-9)
	})

	t.Run("zero entropy guarded by epsilon", func(t *testing.T) {
		u := newTestUniverse(t, 0.0, 0.5)
		u.UpdateComplexity()
		assert.False(t, math.IsInf(u.Complexity, 0))
		assert.Greater(t, u.Complexity, 0.0)
	})

	t.Run("empty law collection freezes prior value", func(t *testing.T) {
		u := newTestUniverse(t, 1.0, 0.4, 0.6)
		u.UpdateComplexity()
		prior := u.Complexity

		u.Laws = nil
		u.UpdateComplexity()
		assert.Equal(t, prior, u.Complexity)
	})
}

func TestSpawnSubuniverse(t *testing.T) {
	u := newTestUniverse(t, 0.8, 0.5, 0.7)
	u.Laws[0].Dependencies["law_1"] = 0.25

	child := u.SpawnSubuniverse()

	require.Len(t, u.Subuniverses, 1)
	assert.Same(t, child, u.Subuniverses[0])
	assert.Equal(t, "alpha_sub0", child.Name)
	assert.Equal(t, u.Generation+1, child.Generation)
	assert.Equal(t, u.TimelineID, child.TimelineID)

	require.Len(t, child.Laws, 2)
	assert.Equal(t, "law_0_sub", child.Laws[0].Name)
	assert.Equal(t, u.Laws[0].Stability, child.Laws[0].Stability)

	// Child law dependencies are deep copies.
	child.Laws[0].Dependencies["law_1"] = 0.99
	assert.Equal(t, 0.25, u.Laws[0].Dependencies["law_1"])

	// Sibling names stay distinct.
	second := u.SpawnSubuniverse()
	assert.Equal(t, "alpha_sub1", second.Name)
}

func TestCollapse(t *testing.T) {
	u := newTestUniverse(t, 2.0, 0.1, 0.2, 0.3)
	u.Clock = 7
	u.Memory = append(u.Memory, MemoryEntry{Clock: 7, Stabilities: []float64{0.1, 0.2, 0.3}})

	report := u.Collapse()

	assert.Equal(t, []string{"law_0", "law_1", "law_2"}, report.LostLaws)
	assert.Equal(t, 2.0, report.FinalEntropy)
	assert.Equal(t, 7, report.Clock)

	assert.Empty(t, u.Laws)
	// Everything else survives the collapse.
	assert.Equal(t, 2.0, u.Entropy)
	assert.Equal(t, 7, u.Clock)
	assert.Len(t, u.Memory, 1)
	assert.Len(t, u.CollapseHistory, 1)
}

func TestMergeWith(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := New("a", []*law.Law{
		law.New("shared", 0.2, "conservation", nil),
		law.New("only_a", 0.4, "symmetry", nil),
	}, 1.0, 2, 3, rng)
	b := New("b", []*law.Law{
		law.New("shared", 0.9, "entropy", nil),
		law.New("only_b", 0.6, "causality", nil),
	}, 3.0, 1, 5, rng)
	a.Dimensions = 2
	b.Dimensions = 8

	merged := a.MergeWith(b)

	assert.Equal(t, "a_x_b", merged.Name)
	assert.Equal(t, 2.0, merged.Entropy)
	assert.Equal(t, 8, merged.Dimensions)
	assert.Equal(t, 6, merged.TimelineID)

	names := make([]string, len(merged.Laws))
	for i, l := range merged.Laws {
		names[i] = l.Name
	}
	assert.Equal(t, []string{"shared", "only_a", "only_b"}, names)

	// First occurrence wins: a's version of the shared law.
	assert.Equal(t, 0.2, merged.Laws[0].Stability)

	// Operands untouched.
	assert.Len(t, a.Laws, 2)
	assert.Len(t, b.Laws, 2)
	merged.Laws[0].Stability = 0.0
	assert.Equal(t, 0.2, a.Laws[0].Stability)
}
