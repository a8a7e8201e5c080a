package ilp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/household"
)

func scenarioA() (*AgentIndex, *core.Categories) {
	agents := []core.Agent{
		{ID: "lisa", Values: map[string]string{"age": "child", "franchise": "simpsons"}},
		{ID: "marge", Values: map[string]string{"age": "adult", "franchise": "simpsons"}},
		{ID: "louie", Values: map[string]string{"age": "child", "franchise": "ducktales"}},
		{ID: "dewey", Values: map[string]string{"age": "child", "franchise": "ducktales"}},
		{ID: "scrooge", Values: map[string]string{"age": "adult", "franchise": "ducktales"}},
	}
	cats := &core.Categories{
		Values: map[string][]string{
			"age":       {"child", "adult"},
			"franchise": {"simpsons", "ducktales"},
		},
		Quotas: map[core.FeatureValue]core.Quota{
			{Feature: "age", Value: "child"}:           {Min: 1, Max: 2, MaxFlex: 2},
			{Feature: "age", Value: "adult"}:            {Min: 1, Max: 2, MaxFlex: 2},
			{Feature: "franchise", Value: "simpsons"}:   {Min: 1, Max: 2, MaxFlex: 2},
			{Feature: "franchise", Value: "ducktales"}:  {Min: 1, Max: 2, MaxFlex: 2},
		},
	}
	return NewAgentIndex(agents), cats
}

func TestBuildFeasibilityFindsAPanel(t *testing.T) {
	ai, cats := scenarioA()
	p := BuildFeasibility(ai, cats, 2, nil)
	// maximize nothing in particular, just check feasibility
	for i := range p.Objective {
		p.Objective[i] = 1
	}

	solver := GonumSolver{}
	sol, err := solver.Solve(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.Len(t, sol.Selected(), 2)
}

func TestBuildFeasibilityWithHouseholdsExcludesCoResidents(t *testing.T) {
	ai, cats := scenarioA()
	agents := ai.Agents
	groups := household.Build([]core.Agent{
		{ID: "lisa", Kept: map[string]string{"addr": "742 Evergreen"}},
		{ID: "scrooge", Kept: map[string]string{"addr": "742 Evergreen"}},
		{ID: "louie", Kept: map[string]string{"addr": "1313 Webfoot"}},
		{ID: "dewey", Kept: map[string]string{"addr": "1313 Webfoot"}},
		{ID: "marge", Kept: map[string]string{"addr": "24 Ocean Ave"}},
	}, []string{"addr"})
	_ = agents

	p := BuildFeasibility(ai, cats, 2, groups)
	// force lisa and scrooge both in: infeasible, since they share a household
	lisaIdx, _ := ai.Pos("lisa")
	scroogeIdx, _ := ai.Pos("scrooge")
	p.FixedOne = []int{lisaIdx, scroogeIdx}
	for i := range p.Objective {
		p.Objective[i] = 1
	}

	solver := GonumSolver{}
	sol, err := solver.Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
}
