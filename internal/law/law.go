package law

import (
	"math"
	"math/rand"
)

// Law is a named numeric entity governed by a stability value in [0,1].
// Dependencies map other law names to edge weights; they are read only
// when the owning universe is registered into a hyperstructure.
type Law struct {
	Name         string             `json:"name"`
	Stability    float64            `json:"stability"`
	Type         string             `json:"type"`
	Age          int                `json:"age"`
	Dependencies map[string]float64 `json:"dependencies"`
}

// New builds a law. Stability is accepted as-is, even out of range;
// it gets clamped on the first mutation pass.
func New(name string, stability float64, lawType string, dependencies map[string]float64) *Law {
	if dependencies == nil {
		dependencies = make(map[string]float64)
	}
	return &Law{
		Name:         name,
		Stability:    stability,
		Type:         lawType,
		Dependencies: dependencies,
	}
}

// Mutate scales stability by a uniform factor in [0.9, 1.1], clamps the
// result back into [0,1], and ages the law by one step.
func (l *Law) Mutate(rng *rand.Rand) *Law {
	factor := 0.9 + rng.Float64()*0.2
	l.Stability = Clamp01(l.Stability * factor)
	l.Age++
	return l
}

// Clone returns a fresh law with the same stability and type, a deep copy
// of the dependency map, and the name suffixed to mark lineage. The clone
// starts at age zero.
func (l *Law) Clone(suffix string) *Law {
	deps := make(map[string]float64, len(l.Dependencies))
	for name, weight := range l.Dependencies {
		deps[name] = weight
	}
	return &Law{
		Name:         l.Name + suffix,
		Stability:    l.Stability,
		Type:         l.Type,
		Dependencies: deps,
	}
}

// Clamp01 bounds v to [0,1]. NaN collapses to 0 so a misbehaving rule
// cannot poison downstream means.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
