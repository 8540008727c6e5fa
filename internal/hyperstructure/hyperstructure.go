package hyperstructure

import (
	"math/rand"

	"multiverse-server/internal/metalaw"
	"multiverse-server/internal/universe"
)

const (
	structureMutationChance = 0.1
	jitterMin               = 0.8
	jitterMax               = 1.2
)

// Hyperstructure is the top-level registry: a flat sequence of universes,
// the meta-laws applied across them, and the law dependency network seeded
// from registered laws. Subuniverses nested inside a registered universe
// are not part of the registry unless added separately.
type Hyperstructure struct {
	Universes []*universe.Universe `json:"universes"`
	MetaLaws  []*metalaw.MetaLaw   `json:"meta_laws"`
	Network   *Network             `json:"-"`

	rng *rand.Rand
}

// New returns an empty hyperstructure. The RNG drives structural mutation.
func New(rng *rand.Rand) *Hyperstructure {
	return &Hyperstructure{
		Network: NewNetwork(),
		rng:     rng,
	}
}

// AddUniverse registers a universe and folds its laws into the dependency
// network: one node per law name carrying the law type, one weighted edge
// per declared dependency.
func (h *Hyperstructure) AddUniverse(u *universe.Universe) {
	h.Universes = append(h.Universes, u)

	for _, l := range u.Laws {
		h.Network.AddNode(l.Name, l.Type)
		for dep, weight := range l.Dependencies {
			h.Network.SetEdge(l.Name, dep, weight)
		}
	}
}

// AddMetaLaw appends a meta-law to the owned rule set.
func (h *Hyperstructure) AddMetaLaw(m *metalaw.MetaLaw) {
	h.MetaLaws = append(h.MetaLaws, m)
}

// ApplyMetaLaws applies every meta-law to every registered universe, in
// meta-law-major order.
func (h *Hyperstructure) ApplyMetaLaws() {
	for _, m := range h.MetaLaws {
		for _, u := range h.Universes {
			m.Apply(u)
		}
	}
}

// EvolveAll advances every top-level registered universe one tick and
// returns the collapse reports produced during the pass. Subuniverses are
// left alone unless registered separately.
func (h *Hyperstructure) EvolveAll() []*universe.CollapseReport {
	var reports []*universe.CollapseReport
	for _, u := range h.Universes {
		if report := u.Evolve(); report != nil {
			reports = append(reports, report)
		}
	}
	return reports
}

// MutateStructure rewrites one uniformly chosen meta-law's rule with a
// fresh multiplicative jitter rule, with probability 0.1. No-op when no
// meta-laws exist.
func (h *Hyperstructure) MutateStructure() {
	if h.rng.Float64() >= structureMutationChance {
		return
	}
	if len(h.MetaLaws) == 0 {
		return
	}
	target := h.MetaLaws[h.rng.Intn(len(h.MetaLaws))]
	target.Rule = metalaw.NewJitterRule(h.rng, jitterMin, jitterMax)
}
