package lottery

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/panelshop/internal/core"
)

func panel(ids ...core.AgentID) core.Panel {
	return core.Panel{Agents: ids}
}

// TestRoundResolvesIntegerFractionsExactly checks spec.md §8 Scenario F:
// {P1:0.3, P2:0.7} at n=10 must return exactly 3 copies of P1 and 7 of
// P2, since both fractions already land on integers of n.
func TestRoundResolvesIntegerFractionsExactly(t *testing.T) {
	p1, p2 := panel("a"), panel("b")
	dist := core.Distribution{Panels: []core.WeightedPanel{
		{Panel: p1, Prob: 0.3},
		{Panel: p2, Prob: 0.7},
	}}

	rng := rand.New(rand.NewSource(1))
	out := Round(dist, 10, rng)
	require.Len(t, out, 10)

	var countP1, countP2 int
	for _, p := range out {
		switch p.Agent.Key() {
		case p1.Key():
			countP1++
		case p2.Key():
			countP2++
		}
	}
	assert.Equal(t, 3, countP1)
	assert.Equal(t, 7, countP2)
}

// TestRoundMatchesTargetMarginalsOverManyTrials checks spec.md §8
// Scenario F's probabilistic case: {P1:0.25, P2:0.75} at n=2 should
// return [P1,P2] (in some order) half the time and [P2,P2] the other
// half, within 1% over 10^4 trials.
func TestRoundMatchesTargetMarginalsOverManyTrials(t *testing.T) {
	p1, p2 := panel("a"), panel("b")
	dist := core.Distribution{Panels: []core.WeightedPanel{
		{Panel: p1, Prob: 0.25},
		{Panel: p2, Prob: 0.75},
	}}

	rng := rand.New(rand.NewSource(99))
	trials := 10000
	var bothP2, mixed int
	for i := 0; i < trials; i++ {
		out := Round(dist, 2, rng)
		require.Len(t, out, 2)
		n1 := 0
		for _, p := range out {
			if p.Agent.Key() == p1.Key() {
				n1++
			}
		}
		if n1 == 0 {
			bothP2++
		} else {
			mixed++
		}
	}
	fracMixed := float64(mixed) / float64(trials)
	assert.InDelta(t, 0.5, fracMixed, 0.01)
}

func TestRoundEveryPanelIDIsUnique(t *testing.T) {
	p1 := panel("a", "b")
	dist := core.Distribution{Panels: []core.WeightedPanel{{Panel: p1, Prob: 1}}}
	rng := rand.New(rand.NewSource(2))
	out := Round(dist, 5, rng)
	require.Len(t, out, 5)

	seen := map[string]bool{}
	for _, p := range out {
		id := p.ID.String()
		assert.False(t, seen[id], "panel IDs must be unique even for repeated agent sets")
		seen[id] = true
	}
}
