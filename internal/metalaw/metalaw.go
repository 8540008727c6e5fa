package metalaw

import (
	"math/rand"

	"multiverse-server/internal/law"
	"multiverse-server/internal/universe"
)

// Rule is a stored stability transformation. Implementations may be
// stateful (e.g. sampling a fresh jitter factor on every call); the
// hyperstructure swaps rules at runtime when it mutates its own structure.
type Rule interface {
	Transform(stability float64) float64
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(float64) float64

func (f RuleFunc) Transform(stability float64) float64 {
	return f(stability)
}

// NewJitterRule returns a rule that scales stability by a factor sampled
// uniformly in [min, max] independently on every invocation.
func NewJitterRule(rng *rand.Rand, min, max float64) Rule {
	return RuleFunc(func(stability float64) float64 {
		return stability * (min + rng.Float64()*(max-min))
	})
}

// MetaLaw is a transformation strategy applied across all laws of a
// universe. ImpactHistory records the entropy of each universe it was
// applied against, one entry per application.
type MetaLaw struct {
	Rule          Rule      `json:"-"`
	Type          string    `json:"type"`
	Age           int       `json:"age"`
	ImpactHistory []float64 `json:"impact_history"`
}

// New builds a meta-law around the given rule.
func New(rule Rule, lawType string) *MetaLaw {
	return &MetaLaw{Rule: rule, Type: lawType}
}

// Apply rewrites every law's stability through the rule, clamping the
// result back into [0,1]. The meta-law ages once per application and logs
// the universe's current entropy, whatever the rule did.
func (m *MetaLaw) Apply(u *universe.Universe) {
	for _, l := range u.Laws {
		l.Stability = law.Clamp01(m.Rule.Transform(l.Stability))
	}
	m.Age++
	m.ImpactHistory = append(m.ImpactHistory, u.Entropy)
}
