package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/household"
	"github.com/r3b0rn/panelshop/internal/scenarios"
)

func TestRunScenarioAMeetsEveryLowerQuota(t *testing.T) {
	fx := scenarios.A()

	res, err := Run(fx.Agents, fx.Cats, fx.K, nil, 42, 50)
	require.NoError(t, err)
	assert.Len(t, res.Panel.Agents, fx.K)

	counts := map[core.FeatureValue]int{}
	for _, id := range res.Panel.Agents {
		for _, a := range fx.Agents {
			if a.ID != id {
				continue
			}
			for feature, value := range a.Values {
				counts[core.FeatureValue{Feature: feature, Value: value}]++
			}
		}
	}
	for fv, q := range fx.Cats.Quotas {
		assert.GreaterOrEqual(t, counts[fv], q.Min, "quota %s=%s", fv.Feature, fv.Value)
		assert.LessOrEqual(t, counts[fv], q.Max, "quota %s=%s", fv.Feature, fv.Value)
	}
}

func TestRunScenarioBExcludesBothHouseholdMembers(t *testing.T) {
	fx, addressed := scenarios.B()
	fx.Agents = addressed
	groups := household.Build(fx.Agents, []string{"addr"})

	res, err := Run(fx.Agents, fx.Cats, fx.K, groups, 7, 50)
	require.NoError(t, err)

	lisaIn := res.Panel.Contains("lisa")
	scroogeIn := res.Panel.Contains("scrooge")
	assert.False(t, lisaIn && scroogeIn, "household co-residents must never both appear in a legacy panel")
}

func TestRunIsDeterministicForAFixedSeed(t *testing.T) {
	fx := scenarios.A()
	res1, err := Run(fx.Agents, fx.Cats, fx.K, nil, 123, 50)
	require.NoError(t, err)
	res2, err := Run(fx.Agents, fx.Cats, fx.K, nil, 123, 50)
	require.NoError(t, err)
	assert.Equal(t, res1.Panel.Key(), res2.Panel.Key())
}
