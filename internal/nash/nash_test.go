package nash

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/ilp"
	"github.com/r3b0rn/panelshop/internal/scenarios"
	"github.com/r3b0rn/panelshop/internal/seed"
)

func agentIDs(agents []core.Agent) []core.AgentID {
	ids := make([]core.AgentID, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	return ids
}

func TestSolveScenarioAProducesPositiveMarginalsForEveryCoverableAgent(t *testing.T) {
	fx := scenarios.A()
	ai := ilp.NewAgentIndex(fx.Agents)
	base := ilp.BuildFeasibility(ai, fx.Cats, fx.K, nil)

	var log core.Log
	seedRes, err := seed.Generate(context.Background(), ilp.GonumSolver{}, ai, base, len(fx.Agents), &log)
	require.NoError(t, err)
	require.Empty(t, seedRes.Uncoverable)

	res, err := Solve(context.Background(), ilp.GonumSolver{}, MirrorAscentSolver{Steps: 200}, ai, base, seedRes.Panels, agentIDs(fx.Agents), fx.K, &log)
	require.NoError(t, err)

	marginals := res.Distribution.Marginals()
	for _, a := range fx.Agents {
		assert.Greater(t, marginals[a.ID], 0.0, "agent %s must have positive marginal under Nash welfare", a.ID)
	}
}

func TestMirrorAscentSolverConvergesToUniformOnSymmetricPanels(t *testing.T) {
	panels := []core.Panel{
		{Agents: []core.AgentID{"x", "y"}},
		{Agents: []core.AgentID{"y", "z"}},
		{Agents: []core.AgentID{"z", "x"}},
	}
	coverable := []core.AgentID{"x", "y", "z"}

	s := MirrorAscentSolver{Steps: 500}
	lambda, err := s.Solve(panels, coverable)
	require.NoError(t, err)

	for _, p := range lambda {
		assert.InDelta(t, 1.0/3, p, 0.05)
	}
}
