// Package lottery implements spec.md §4.8: turning a distribution over
// feasible panels into a concrete list of n panels via dependent
// (pipage) rounding, so that uniform sampling from the list reproduces
// the distribution's marginals to within 1/n.
package lottery

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/r3b0rn/panelshop/internal/core"
)

// EPS2 guards against division by zero and spurious pipage branches
// (spec.md §9).
const EPS2 = 1e-8

// Panel is one drawn panel, tagged with a fresh identifier so a caller
// can distinguish repeated draws of the same underlying agent set.
type Panel struct {
	ID    uuid.UUID
	Agent core.Panel
}

// frac is one panel's still-unresolved fractional probability mass
// during pipage rounding.
type frac struct {
	panel core.Panel
	value float64
}

// Round implements spec.md §4.8: each panel gets floor(n*p) guaranteed
// copies, then the remaining fractional slots are resolved by pairwise
// pipage rounding until at most one fractional item remains, which is
// resolved directly.
func Round(dist core.Distribution, n int, rng *rand.Rand) []Panel {
	if n <= 0 || len(dist.Panels) == 0 {
		return nil
	}

	var out []Panel
	var remainders []frac

	for _, wp := range dist.Panels {
		exact := float64(n) * wp.Prob
		floor := int(exact)
		for i := 0; i < floor; i++ {
			out = append(out, Panel{ID: uuid.New(), Agent: wp.Panel})
		}
		fracPart := exact - float64(floor)
		if fracPart > EPS2 {
			remainders = append(remainders, frac{panel: wp.Panel, value: fracPart})
		}
	}

	for len(remainders) >= 2 {
		q0, q1 := remainders[0], remainders[1]
		a := min(1-q0.value, q1.value)
		b := min(q0.value, 1-q1.value)
		total := a + b
		var pIncreaseQ0 float64
		if total > EPS2 {
			pIncreaseQ0 = b / total
		}
		if rng.Float64() < pIncreaseQ0 {
			q0.value += a
			q1.value -= a
		} else {
			q0.value -= b
			q1.value += b
		}

		remainders[0] = q0
		remainders[1] = q1
		remainders = finalizeIfDone(remainders, &out)
	}

	if len(remainders) == 1 {
		if rng.Float64() < remainders[0].value {
			out = append(out, Panel{ID: uuid.New(), Agent: remainders[0].panel})
		}
		remainders = nil
	}

	return out
}

// finalizeIfDone removes and materializes any remainder that has
// settled at 0 or 1, matching spec.md §4.8's "when a q becomes 0 or 1,
// finalize that item" rule.
func finalizeIfDone(remainders []frac, out *[]Panel) []frac {
	kept := remainders[:0:0]
	for _, r := range remainders {
		switch {
		case r.value >= 1-EPS2:
			*out = append(*out, Panel{ID: uuid.New(), Agent: r.panel})
		case r.value <= EPS2:
			// excluded: contributes nothing
		default:
			kept = append(kept, r)
		}
	}
	return kept
}
