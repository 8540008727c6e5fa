package hyperstructure

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiverse-server/internal/law"
	"multiverse-server/internal/metalaw"
	"multiverse-server/internal/universe"
)

func TestAddUniverse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := New(rng)

	gravity := law.New("gravity", 0.5, "conservation", map[string]float64{"time": 0.7})
	timeLaw := law.New("time", 0.8, "causality", nil)
	u := universe.New("alpha", []*law.Law{gravity, timeLaw}, 0.5, 0, 1, rng)

	h.AddUniverse(u)

	require.Len(t, h.Universes, 1)
	assert.Equal(t, 2, h.Network.NodeCount())
	assert.Equal(t, 1, h.Network.EdgeCount())

	attrs, ok := h.Network.Node("gravity")
	require.True(t, ok)
	assert.Equal(t, "conservation", attrs.Type)

	weight, ok := h.Network.EdgeWeight("gravity", "time")
	require.True(t, ok)
	assert.Equal(t, 0.7, weight)
}

func TestAddUniverseReRegistration(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := New(rng)

	l := law.New("gravity", 0.5, "conservation", map[string]float64{"time": 0.7})
	u := universe.New("alpha", []*law.Law{l}, 0.5, 0, 1, rng)

	h.AddUniverse(u)
	// Node creation is idempotent; edges get overwritten.
	l.Dependencies["time"] = 0.2
	h.AddUniverse(u)

	assert.Len(t, h.Universes, 2)
	assert.Equal(t, 1, h.Network.NodeCount())
	weight, _ := h.Network.EdgeWeight("gravity", "time")
	assert.Equal(t, 0.2, weight)
}

func TestApplyMetaLaws(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := New(rng)

	for _, name := range []string{"alpha", "beta"} {
		laws := []*law.Law{law.New(name+"_l", 0.5, "conservation", nil)}
		h.AddUniverse(universe.New(name, laws, 0.5, 0, 1, rng))
	}

	halve := metalaw.New(metalaw.RuleFunc(func(s float64) float64 { return s / 2 }), "damp")
	double := metalaw.New(metalaw.RuleFunc(func(s float64) float64 { return s * 2 }), "amplify")
	h.AddMetaLaw(halve)
	h.AddMetaLaw(double)

	h.ApplyMetaLaws()

	// Each meta-law hit both universes once, meta-law-major.
	assert.Equal(t, 2, halve.Age)
	assert.Equal(t, 2, double.Age)
	assert.Len(t, halve.ImpactHistory, 2)

	// 0.5 -> 0.25 -> 0.5 for every law.
	for _, u := range h.Universes {
		assert.Equal(t, 0.5, u.Laws[0].Stability)
	}
}

func TestEvolveAll(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := New(rng)

	stable := universe.New("calm", []*law.Law{law.New("a", 0.5, "t", nil)}, 0.1, 0, 1, rng)
	doomed := universe.New("doomed", []*law.Law{law.New("b", 0.5, "t", nil)}, 2.0, 0, 1, rng)
	h.AddUniverse(stable)
	h.AddUniverse(doomed)

	reports := h.EvolveAll()

	assert.Equal(t, 1, stable.Clock)
	assert.Equal(t, 1, doomed.Clock)
	require.Len(t, reports, 1)
	assert.Equal(t, "doomed", reports[0].Universe)
	assert.Empty(t, doomed.Laws)
}

func TestEvolveAllSkipsSubuniverses(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h := New(rng)

	u := universe.New("parent", []*law.Law{law.New("a", 0.5, "t", nil)}, 0.1, 0, 1, rng)
	h.AddUniverse(u)
	child := u.SpawnSubuniverse()

	h.EvolveAll()

	assert.Equal(t, 0, child.Clock)
}

func TestMutateStructure(t *testing.T) {
	t.Run("no meta-laws is a no-op", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		h := New(rng)
		for i := 0; i < 100; i++ {
			h.MutateStructure()
		}
	})

	t.Run("eventually swaps a rule", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		h := New(rng)

		identity := metalaw.RuleFunc(func(s float64) float64 { return s })
		m := metalaw.New(identity, "identity")
		h.AddMetaLaw(m)

		swapped := false
		for i := 0; i < 200 && !swapped; i++ {
			h.MutateStructure()
			// A jitter rule moves the value; identity never does.
			if m.Rule.Transform(1.0) != 1.0 {
				swapped = true
			}
		}
		require.True(t, swapped)

		// Replacement jitter stays within its sampling band.
		for i := 0; i < 100; i++ {
			out := m.Rule.Transform(1.0)
			assert.GreaterOrEqual(t, out, 0.8)
			assert.LessOrEqual(t, out, 1.2)
		}
	})
}

func TestNetworkDump(t *testing.T) {
	n := NewNetwork()
	n.AddNode("b", "t2")
	n.AddNode("a", "t1")
	n.SetEdge("b", "a", 0.5)
	n.SetEdge("a", "b", 0.9)

	nodes, edges := n.Dump()

	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].Name)
	require.Len(t, edges, 2)
	assert.Equal(t, GraphEdge{From: "a", To: "b", Weight: 0.9}, edges[0])
}
