package observer

import "multiverse-server/internal/universe"

const (
	entropyGate        = 1.0
	stabilityThreshold = 0.5
)

// Observer is an independent feedback mechanism that dampens unstable laws
// in high-entropy universes. It is invoked manually, never by the main
// driver.
type Observer struct {
	// FeedbackMultiplier scales the stability of laws below the threshold.
	// Expected in [0,1]; no post-multiplication clamp is applied, so a
	// multiplier outside that range can push stability out of the
	// canonical band. That is a precondition on the caller, not an
	// enforced invariant.
	FeedbackMultiplier float64 `json:"feedback_multiplier"`
}

// New returns an observer with the given multiplier.
func New(feedbackMultiplier float64) *Observer {
	return &Observer{FeedbackMultiplier: feedbackMultiplier}
}

// Feedback nudges the universe: when entropy exceeds 1.0, every law with
// stability below 0.5 is scaled by the multiplier. Returns the number of
// laws adjusted.
func (o *Observer) Feedback(u *universe.Universe) int {
	if u.Entropy <= entropyGate {
		return 0
	}

	adjusted := 0
	for _, l := range u.Laws {
		if l.Stability < stabilityThreshold {
			l.Stability *= o.FeedbackMultiplier
			adjusted++
		}
	}
	return adjusted
}
