// Package seed implements the multiplicative-weights initial-panel
// generator of spec.md §4.3: it discovers a diverse set of feasible
// panels covering every "coverable" agent, seeding the column-generation
// algorithms in internal/maximin, internal/leximin, and internal/nash.
//
// Grounded on the teacher's opt.Optimizer outer-loop shape (bounded
// rounds, per-round state update, a cycle-escape heuristic), generalized
// from permutation mutation to ILP-objective reweighting.
package seed

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/ilp"
)

// Result is the initial-panel generator's output: the discovered panel
// set, plus the agents that were found to be uncoverable (spec.md §4.3
// "Guarantees").
type Result struct {
	Panels      []core.Panel
	Uncoverable []core.AgentID
}

// Generate runs spec.md §4.3's multiplicative-weights loop for rounds
// iterations, then sweeps every still-uncovered agent with a
// single-inclusion objective.
func Generate(ctx context.Context, solver ilp.MipSolver, ai *ilp.AgentIndex, base ilp.Problem, rounds int, log *core.Log) (*Result, error) {
	n := len(ai.Agents)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}

	seen := make(map[string]bool)
	var panels []core.Panel
	covered := make([]bool, n)

	addIfNew := func(selected []int) bool {
		panel := ai.Panel(selected)
		key := panel.Key()
		if seen[key] {
			return false
		}
		seen[key] = true
		panels = append(panels, panel)
		for _, i := range selected {
			covered[i] = true
		}
		return true
	}

	for round := 0; round < rounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := ilp.WithObjective(base, append([]float64{}, weights...))
		sol, err := solver.Solve(ctx, p)
		if err != nil {
			return nil, err
		}
		if sol.Status != ilp.StatusOptimal {
			continue
		}
		selected := sol.Selected()
		isNew := addIfNew(selected)

		for _, i := range selected {
			weights[i] *= 0.8
		}
		sum := floats.Sum(weights)
		if sum > 0 {
			floats.Scale(float64(n)/sum, weights)
		}

		if !isNew {
			// blend toward uniform to escape the cycle (spec.md §4.3 step 4)
			for i := range weights {
				weights[i] = 0.9*weights[i] + 0.1
			}
		}

		log.Printf("seed round %d: panel of size %d (%d total panels so far)", round, len(selected), len(panels))
	}

	var uncoverable []core.AgentID
	for i, a := range ai.Agents {
		if covered[i] {
			continue
		}
		single := make([]float64, n)
		single[i] = 1
		p := ilp.WithObjective(base, single)
		sol, err := solver.Solve(ctx, p)
		if err != nil {
			return nil, err
		}
		if sol.Status == ilp.StatusOptimal && sol.X[i] > 0.5 {
			addIfNew(sol.Selected())
		} else {
			uncoverable = append(uncoverable, a.ID)
		}
	}
	if len(uncoverable) > 0 {
		log.Printf("uncoverable agents (selection probability forced to 0): %v", uncoverable)
	}

	return &Result{Panels: panels, Uncoverable: uncoverable}, nil
}
