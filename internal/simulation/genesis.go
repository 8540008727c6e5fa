package simulation

import (
	"fmt"
	"math/rand"

	"multiverse-server/internal/hyperstructure"
	"multiverse-server/internal/law"
	"multiverse-server/internal/metalaw"
	"multiverse-server/internal/universe"
)

var lawTypes = []string{
	"conservation", "symmetry", "causality", "entropy", "duality",
}

var metaLawTypes = []string{
	"damping", "amplification", "inversion", "resonance",
}

var universeNames = []string{
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
	"iota", "kappa", "lambda", "mu",
}

// genesis seeds a hyperstructure from scratch: universes with typed laws
// chained by random dependencies, plus an initial set of gentle jitter
// meta-laws. Everything is drawn from the provided RNG, so a fixed seed
// reproduces the multiverse exactly.
func genesis(rng *rand.Rand, universeCount, lawsPerUniverse, metaLawCount int) *hyperstructure.Hyperstructure {
	h := hyperstructure.New(rng)

	for i := 0; i < universeCount; i++ {
		name := universeNames[i%len(universeNames)]
		if i >= len(universeNames) {
			name = fmt.Sprintf("%s_%d", name, i/len(universeNames))
		}

		laws := make([]*law.Law, 0, lawsPerUniverse)
		for j := 0; j < lawsPerUniverse; j++ {
			lawType := lawTypes[rng.Intn(len(lawTypes))]
			lawName := fmt.Sprintf("%s_%s_%d", name, lawType, j)

			deps := make(map[string]float64)
			// Chain each law to one earlier law about half the time, so
			// the dependency network is sparse but connected.
			if j > 0 && rng.Float64() < 0.5 {
				deps[laws[rng.Intn(j)].Name] = rng.Float64()
			}

			laws = append(laws, law.New(lawName, rng.Float64(), lawType, deps))
		}

		entropy := rng.Float64() * 0.5
		h.AddUniverse(universe.New(name, laws, entropy, 0, i+1, rng))
	}

	for i := 0; i < metaLawCount; i++ {
		rule := metalaw.NewJitterRule(rng, 0.95, 1.05)
		h.AddMetaLaw(metalaw.New(rule, metaLawTypes[i%len(metaLawTypes)]))
	}

	return h
}
