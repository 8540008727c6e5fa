package recursor

import "multiverse-server/internal/universe"

// Structure is the slice of hyperstructure behavior the recursor drives.
type Structure interface {
	EvolveAll() []*universe.CollapseReport
	ApplyMetaLaws()
	MutateStructure()
}

// Recursor is the bounded recursive driver. The recursion is expressed as
// an explicit loop so arbitrarily large depths cannot exhaust the call
// stack; per-step ordering and the recorded trace match the recursive
// formulation exactly.
type Recursor struct {
	DepthTrace []int `json:"depth_trace"`
}

// New returns a recursor with an empty trace.
func New() *Recursor {
	return &Recursor{}
}

// RecursiveStep runs the descent from depth down to 1. A depth of zero or
// below, or a starting depth beyond maxDepth, is an immediate no-op. Each
// step evolves the structure, applies its meta-laws, perturbs it, and
// records the current depth before descending.
func (r *Recursor) RecursiveStep(s Structure, depth, maxDepth int) []*universe.CollapseReport {
	var reports []*universe.CollapseReport
	for d := depth; d > 0 && d <= maxDepth; d-- {
		reports = append(reports, s.EvolveAll()...)
		s.ApplyMetaLaws()
		s.MutateStructure()
		r.DepthTrace = append(r.DepthTrace, d)
	}
	return reports
}
