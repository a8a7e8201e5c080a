package relax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/ilp"
)

// scenarioDAgents is spec.md's Scenario C/D: three binary features
// f1,f2,f3 with v1 in [1,2], four agents a=(v1,v1,v1), b=(v1,v2,v2),
// c=(v2,v1,v2), d=(v2,v2,v1), k=2.
func scenarioDAgents() []core.Agent {
	return []core.Agent{
		{ID: "a", Values: map[string]string{"f1": "v1", "f2": "v1", "f3": "v1"}},
		{ID: "b", Values: map[string]string{"f1": "v1", "f2": "v2", "f3": "v2"}},
		{ID: "c", Values: map[string]string{"f1": "v2", "f2": "v1", "f3": "v2"}},
		{ID: "d", Values: map[string]string{"f1": "v2", "f2": "v2", "f3": "v1"}},
	}
}

func scenarioDCategories() *core.Categories {
	return &core.Categories{
		Values: map[string][]string{
			"f1": {"v1", "v2"},
			"f2": {"v1", "v2"},
			"f3": {"v1", "v2"},
		},
		Quotas: map[core.FeatureValue]core.Quota{
			{Feature: "f1", Value: "v1"}: {Min: 1, Max: 1, MinFlex: 0, MaxFlex: 2},
			{Feature: "f1", Value: "v2"}: {Min: 0, Max: 2, MinFlex: 0, MaxFlex: 2},
			{Feature: "f2", Value: "v1"}: {Min: 1, Max: 1, MinFlex: 0, MaxFlex: 2},
			{Feature: "f2", Value: "v2"}: {Min: 0, Max: 2, MinFlex: 0, MaxFlex: 2},
			{Feature: "f3", Value: "v1"}: {Min: 1, Max: 1, MinFlex: 0, MaxFlex: 2},
			{Feature: "f3", Value: "v2"}: {Min: 0, Max: 2, MinFlex: 0, MaxFlex: 2},
		},
	}
}

func TestRelaxScenarioDFindsUpperQuotaFix(t *testing.T) {
	ai := ilp.NewAgentIndex(scenarioDAgents())
	cats := scenarioDCategories()

	// every feasible panel of size 2 containing agent a needs exactly
	// one more agent, each of whom trips one v1 feature to 2, which the
	// [1,1] quota forbids - the base feasibility program is infeasible.
	base := ilp.BuildFeasibility(ai, cats, 2, nil)
	for i := range base.Objective {
		base.Objective[i] = 1
	}
	solver := ilp.GonumSolver{}
	sol, err := solver.Solve(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, ilp.StatusInfeasible, sol.Status, "scenario D's tightened quotas must be infeasible")

	r := Relaxer{Solver: ilp.GonumSolver{}}
	res, err := r.Relax(context.Background(), ai, cats, 2, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Adjustments, "relaxer must propose at least one upper-quota raise")
	for _, adj := range res.Adjustments {
		assert.GreaterOrEqual(t, adj.NewMax, adj.OldMax)
		assert.LessOrEqual(t, adj.NewMin, adj.OldMin)
	}
}
