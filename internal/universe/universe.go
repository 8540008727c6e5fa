package universe

import (
	"fmt"
	"math"
	"math/rand"

	"multiverse-server/internal/law"
)

const (
	// CollapseThreshold is the entropy level beyond which a universe
	// destructively sheds its laws during an evolve step.
	CollapseThreshold = 1.5

	// MaxEntropy bounds the disorder metric.
	MaxEntropy = 10.0

	complexityEpsilon = 0.01
	spawnProbability  = 0.3
)

// MemoryEntry is one row of a universe's append-only memory log: the clock
// value and the ordered stabilities of every law at that tick.
type MemoryEntry struct {
	Clock       int       `json:"clock"`
	Stabilities []float64 `json:"stabilities"`
}

// CollapseReport is the structured record produced when a universe sheds
// its laws.
type CollapseReport struct {
	Universe     string   `json:"universe"`
	FinalEntropy float64  `json:"final_entropy"`
	LostLaws     []string `json:"lost_laws"`
	Clock        int      `json:"clock"`
}

// Universe owns an ordered collection of laws and the derived metrics of
// their joint evolution. Subuniverses form a containment tree kept
// separate from any hyperstructure registry.
type Universe struct {
	Name            string           `json:"name"`
	Laws            []*law.Law       `json:"laws"`
	Entropy         float64          `json:"entropy"`
	Generation      int              `json:"generation"`
	Dimensions      int              `json:"dimensions"`
	TimelineID      int              `json:"timeline_id"`
	Complexity      float64          `json:"complexity"`
	Clock           int              `json:"clock"`
	Memory          []MemoryEntry    `json:"memory"`
	CollapseHistory []CollapseReport `json:"collapse_history"`
	Subuniverses    []*Universe      `json:"subuniverses"`

	rng *rand.Rand
}

// New builds a universe around the given laws. Entropy is accepted as-is,
// even out of range; it gets clamped on the next evolve pass. The RNG drives
// every stochastic decision the universe makes, so seeding it makes a run
// reproducible.
func New(name string, laws []*law.Law, entropy float64, generation, timelineID int, rng *rand.Rand) *Universe {
	return &Universe{
		Name:       name,
		Laws:       laws,
		Entropy:    entropy,
		Generation: generation,
		Dimensions: deriveDimensions(entropy),
		TimelineID: timelineID,
		rng:        rng,
	}
}

// Evolve advances the universe one tick. The step order is load-bearing:
// laws mutate first, entropy rises and dimensions rederive from it, the
// clock ticks, the memory log snapshots the new stabilities, complexity
// recomputes, and only then is the collapse threshold checked. A collapse
// short-circuits spawning and returns the report; otherwise the universe
// may spawn a subuniverse and returns nil.
func (u *Universe) Evolve() *CollapseReport {
	for _, l := range u.Laws {
		l.Mutate(u.rng)
	}

	u.Entropy = clampEntropy(u.Entropy + 0.01 + u.rng.Float64()*0.04)
	u.Dimensions = deriveDimensions(u.Entropy)
	u.Clock++

	stabilities := make([]float64, len(u.Laws))
	for i, l := range u.Laws {
		stabilities[i] = l.Stability
	}
	u.Memory = append(u.Memory, MemoryEntry{Clock: u.Clock, Stabilities: stabilities})

	u.UpdateComplexity()

	if u.Entropy > CollapseThreshold {
		return u.Collapse()
	}

	if u.rng.Float64() < spawnProbability {
		u.SpawnSubuniverse()
	}
	return nil
}

// UpdateComplexity recomputes complexity as law count times mean stability
// over the epsilon-offset entropy. With no laws the previous value is kept
// frozen rather than reset.
func (u *Universe) UpdateComplexity() {
	if len(u.Laws) == 0 {
		return
	}
	var sum float64
	for _, l := range u.Laws {
		sum += l.Stability
	}
	mean := sum / float64(len(u.Laws))
	u.Complexity = float64(len(u.Laws)) * mean / (u.Entropy + complexityEpsilon)
}

// SpawnSubuniverse clones every law into a child universe one generation
// deeper on the same timeline, and appends it to the containment tree. The
// child is not registered into any hyperstructure; integration is the
// caller's call.
func (u *Universe) SpawnSubuniverse() *Universe {
	laws := make([]*law.Law, len(u.Laws))
	for i, l := range u.Laws {
		laws[i] = l.Clone("_sub")
	}

	name := fmt.Sprintf("%s_sub%d", u.Name, len(u.Subuniverses))
	child := New(name, laws, u.Entropy, u.Generation+1, u.TimelineID, u.rng)
	u.Subuniverses = append(u.Subuniverses, child)
	return child
}

// Collapse clears the law collection and records what was lost. Every other
// field of the universe, including its memory and prior collapse reports,
// persists.
func (u *Universe) Collapse() *CollapseReport {
	lost := make([]string, len(u.Laws))
	for i, l := range u.Laws {
		lost[i] = l.Name
	}

	report := CollapseReport{
		Universe:     u.Name,
		FinalEntropy: u.Entropy,
		LostLaws:     lost,
		Clock:        u.Clock,
	}
	u.CollapseHistory = append(u.CollapseHistory, report)
	u.Laws = nil
	return &u.CollapseHistory[len(u.CollapseHistory)-1]
}

// MergeWith builds a brand-new universe from the receiver and other without
// mutating either. Laws merge first-occurrence-wins by name (receiver
// first), entropy averages, dimensions take the max, and the timeline id
// advances past both operands.
func (u *Universe) MergeWith(other *Universe) *Universe {
	merged := make([]*law.Law, 0, len(u.Laws)+len(other.Laws))
	seen := make(map[string]bool, len(u.Laws))

	for _, l := range u.Laws {
		merged = append(merged, l.Clone(""))
		seen[l.Name] = true
	}
	for _, l := range other.Laws {
		if seen[l.Name] {
			continue
		}
		merged = append(merged, l.Clone(""))
		seen[l.Name] = true
	}

	entropy := (u.Entropy + other.Entropy) / 2
	result := New(
		fmt.Sprintf("%s_x_%s", u.Name, other.Name),
		merged,
		entropy,
		max(u.Generation, other.Generation),
		max(u.TimelineID, other.TimelineID)+1,
		u.rng,
	)
	result.Dimensions = max(u.Dimensions, other.Dimensions)
	return result
}

func deriveDimensions(entropy float64) int {
	return max(1, int(math.Floor(entropy*3)))
}

func clampEntropy(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > MaxEntropy {
		return MaxEntropy
	}
	return v
}
