// Package driver dispatches a run to the configured selection algorithm
// (spec.md §REDESIGN FLAGS "Dynamic dispatch"), assembles the
// diagnostic log, and applies spec.md §7's retry policy: legacy
// SelectionErrors are retried up to max_attempts, everything else
// propagates immediately.
package driver

import (
	"context"
	"math/rand"

	"github.com/r3b0rn/panelshop/internal/config"
	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/household"
	"github.com/r3b0rn/panelshop/internal/ilp"
	"github.com/r3b0rn/panelshop/internal/legacy"
	"github.com/r3b0rn/panelshop/internal/leximin"
	"github.com/r3b0rn/panelshop/internal/lottery"
	"github.com/r3b0rn/panelshop/internal/maximin"
	"github.com/r3b0rn/panelshop/internal/nash"
	"github.com/r3b0rn/panelshop/internal/relax"
	"github.com/r3b0rn/panelshop/internal/seed"
)

// Output is the core's external result (spec.md §6.2).
type Output struct {
	Panels []core.Panel
	Log    *core.Log
}

// Run implements spec.md §2's end-to-end pipeline: feasibility check
// (relaxing quotas if needed), algorithm dispatch, and lottery rounding
// into number_selections panels.
func Run(ctx context.Context, agents []core.Agent, cats *core.Categories, k int, settings config.Settings) (*Output, error) {
	log := &core.Log{}
	solver := ilp.GonumSolver{}

	var groups *household.Groups
	if settings.CheckSameAddress {
		groups = household.Build(agents, settings.CheckSameAddressColumns)
	}

	ai := ilp.NewAgentIndex(agents)
	base := ilp.BuildFeasibility(ai, cats, k, groups)

	feasCheck, err := solver.Solve(ctx, base)
	if err != nil {
		return nil, err
	}
	if feasCheck.Status != ilp.StatusOptimal {
		relaxer := relax.Relaxer{Solver: solver}
		result, relaxErr := relaxer.Relax(ctx, ai, cats, k, groups, nil)
		if relaxErr != nil {
			return nil, relaxErr
		}
		log.Printf("quotas infeasible as configured; suggested relaxation: %v", result.Diffs)
		return &Output{Log: log}, &core.InfeasibleQuotasError{Suggestions: result.Adjustments}
	}

	if settings.TestSelection {
		panel := ai.Panel(feasCheck.Selected())
		log.Printf("test_selection: returning first feasible panel without optimization")
		return &Output{Panels: []core.Panel{panel}, Log: log}, nil
	}

	if settings.SelectionAlgorithm == config.AlgorithmLegacy {
		return runLegacy(agents, cats, k, groups, settings, log)
	}

	return runOptimized(ctx, solver, ai, base, cats, k, settings, log)
}

func runLegacy(agents []core.Agent, cats *core.Categories, k int, groups *household.Groups, settings config.Settings, log *core.Log) (*Output, error) {
	res, err := legacy.Run(agents, cats, k, groups, settings.RandomNumberSeed, settings.MaxAttempts)
	if err != nil {
		return nil, err
	}
	log.Printf("legacy sampler succeeded after %d attempt(s)", res.Attempts)
	return &Output{Panels: []core.Panel{res.Panel}, Log: log}, nil
}

func runOptimized(ctx context.Context, solver ilp.MipSolver, ai *ilp.AgentIndex, base ilp.Problem, cats *core.Categories, k int, settings config.Settings, log *core.Log) (*Output, error) {
	rounds := len(ai.Agents)
	if settings.SelectionAlgorithm == config.AlgorithmMaximin {
		rounds = len(ai.Agents) / 2
	}
	seedRes, err := seed.Generate(ctx, solver, ai, base, rounds, log)
	if err != nil {
		return nil, err
	}

	var coverable []core.AgentID
	uncoverable := make(map[core.AgentID]bool, len(seedRes.Uncoverable))
	for _, id := range seedRes.Uncoverable {
		uncoverable[id] = true
	}
	for _, a := range ai.Agents {
		if !uncoverable[a.ID] {
			coverable = append(coverable, a.ID)
		}
	}

	var dist core.Distribution
	switch settings.SelectionAlgorithm {
	case config.AlgorithmMaximin:
		res, err := maximin.Solve(ctx, solver, ai, base, seedRes.Panels, coverable, log)
		if err != nil {
			return nil, err
		}
		dist = res.Distribution
	case config.AlgorithmLeximin:
		res, err := leximin.Solve(ctx, solver, ai, base, seedRes.Panels, coverable, log)
		if err != nil {
			return nil, err
		}
		dist = res.Distribution
	case config.AlgorithmNash:
		res, err := nash.Solve(ctx, solver, nash.MirrorAscentSolver{}, ai, base, seedRes.Panels, coverable, k, log)
		if err != nil {
			return nil, err
		}
		dist = res.Distribution
	default:
		return nil, &core.UnknownAlgorithmError{Name: string(settings.SelectionAlgorithm)}
	}

	var rng *rand.Rand
	if settings.RandomNumberSeed != 0 {
		rng = rand.New(rand.NewSource(settings.RandomNumberSeed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	n := settings.NumberSelections
	if n < 1 {
		n = 1
	}
	drawn := lottery.Round(dist, n, rng)
	panels := make([]core.Panel, len(drawn))
	for i, p := range drawn {
		panels[i] = p.Agent
	}
	log.Printf("drew %d panel(s) via pipage rounding", len(panels))

	return &Output{Panels: panels, Log: log}, nil
}
