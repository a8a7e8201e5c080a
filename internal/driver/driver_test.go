package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3b0rn/panelshop/internal/config"
	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/scenarios"
)

func baseSettings() config.Settings {
	return config.Settings{
		IDColumn:           "id",
		SelectionAlgorithm: config.AlgorithmMaximin,
		NumberSelections:   1,
		RandomNumberSeed:   42,
		MaxAttempts:        10,
	}
}

func TestRunMaximinReturnsAFeasiblePanel(t *testing.T) {
	fx := scenarios.A()
	out, err := Run(context.Background(), fx.Agents, fx.Cats, fx.K, baseSettings())
	require.NoError(t, err)
	require.Len(t, out.Panels, 1)
	assert.Len(t, out.Panels[0].Agents, fx.K)
	assert.NotEmpty(t, out.Log.Lines)
}

func TestRunLegacyReturnsAFeasiblePanel(t *testing.T) {
	fx := scenarios.A()
	settings := baseSettings()
	settings.SelectionAlgorithm = config.AlgorithmLegacy
	out, err := Run(context.Background(), fx.Agents, fx.Cats, fx.K, settings)
	require.NoError(t, err)
	require.Len(t, out.Panels, 1)
	assert.Len(t, out.Panels[0].Agents, fx.K)
}

func TestRunTestSelectionSkipsOptimization(t *testing.T) {
	fx := scenarios.A()
	settings := baseSettings()
	settings.TestSelection = true
	out, err := Run(context.Background(), fx.Agents, fx.Cats, fx.K, settings)
	require.NoError(t, err)
	require.Len(t, out.Panels, 1)
}

func TestRunScenarioDReportsInfeasibleQuotasWithSuggestions(t *testing.T) {
	fx := scenarios.D()
	settings := baseSettings()
	_, err := Run(context.Background(), fx.Agents, fx.Cats, fx.K, settings)
	require.Error(t, err)

	var infeasible *core.InfeasibleQuotasError
	require.ErrorAs(t, err, &infeasible)
	assert.NotEmpty(t, infeasible.Suggestions)
}

func TestRunUnknownAlgorithmIsRejected(t *testing.T) {
	fx := scenarios.A()
	settings := baseSettings()
	settings.SelectionAlgorithm = config.Algorithm("bogus")
	_, err := Run(context.Background(), fx.Agents, fx.Cats, fx.K, settings)
	require.Error(t, err)
	var unknown *core.UnknownAlgorithmError
	assert.ErrorAs(t, err, &unknown)
}
