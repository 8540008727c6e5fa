package recursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiverse-server/internal/universe"
)

type countingStructure struct {
	order   []string
	reports []*universe.CollapseReport
}

func (c *countingStructure) EvolveAll() []*universe.CollapseReport {
	c.order = append(c.order, "evolve")
	return c.reports
}

func (c *countingStructure) ApplyMetaLaws()   { c.order = append(c.order, "apply") }
func (c *countingStructure) MutateStructure() { c.order = append(c.order, "mutate") }

func TestRecursiveStep(t *testing.T) {
	t.Run("zero depth is a no-op", func(t *testing.T) {
		r := New()
		s := &countingStructure{}

		r.RecursiveStep(s, 0, 10)

		assert.Empty(t, r.DepthTrace)
		assert.Empty(t, s.order)
	})

	t.Run("negative depth is a no-op", func(t *testing.T) {
		r := New()
		s := &countingStructure{}

		r.RecursiveStep(s, -3, 10)

		assert.Empty(t, r.DepthTrace)
	})

	t.Run("depth beyond max is a no-op", func(t *testing.T) {
		r := New()
		s := &countingStructure{}

		r.RecursiveStep(s, 5, 3)

		assert.Empty(t, r.DepthTrace)
		assert.Empty(t, s.order)
	})

	t.Run("full descent records strictly decreasing trace", func(t *testing.T) {
		r := New()
		s := &countingStructure{}

		r.RecursiveStep(s, 4, 4)

		assert.Equal(t, []int{4, 3, 2, 1}, r.DepthTrace)

		// Exactly N of each call, in evolve/apply/mutate order per step.
		require.Len(t, s.order, 12)
		for i := 0; i < 4; i++ {
			assert.Equal(t, []string{"evolve", "apply", "mutate"}, s.order[i*3:i*3+3])
		}
	})

	t.Run("trace accumulates across invocations", func(t *testing.T) {
		r := New()
		s := &countingStructure{}

		r.RecursiveStep(s, 2, 2)
		r.RecursiveStep(s, 3, 3)

		assert.Equal(t, []int{2, 1, 3, 2, 1}, r.DepthTrace)
	})

	t.Run("collapse reports surface to the caller", func(t *testing.T) {
		r := New()
		report := &universe.CollapseReport{Universe: "doomed"}
		s := &countingStructure{reports: []*universe.CollapseReport{report}}

		got := r.RecursiveStep(s, 2, 2)

		require.Len(t, got, 2)
		assert.Same(t, report, got[0])
	})

	t.Run("large depth does not recurse on the call stack", func(t *testing.T) {
		r := New()
		s := &countingStructure{}

		r.RecursiveStep(s, 200000, 200000)

		assert.Len(t, r.DepthTrace, 200000)
		assert.Equal(t, 200000, r.DepthTrace[0])
		assert.Equal(t, 1, r.DepthTrace[len(r.DepthTrace)-1])
	})
}
