// Package maximin implements spec.md §4.4: column generation over the
// reduced dual LP to maximize the minimum per-agent selection
// probability, then recovery of the primal panel distribution.
//
// Grounded on the teacher's opt package outer-loop shape (bounded
// rounds, incumbent tracking) generalized from metaheuristic search to
// LP-based column generation.
package maximin

import (
	"context"
	"sort"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/ilp"
	"github.com/r3b0rn/panelshop/internal/masterlp"
)

// EPS is the column-generation stopping gap from spec.md §9 ("Numeric
// Tolerances").
const EPS = 5e-4

// MaxRescueAttempts bounds the rescue heuristic's retry count (spec.md
// §4.4 "Rescue heuristic").
const MaxRescueAttempts = 10

// MaxColumnRounds bounds the outer column-generation loop so a
// pathological input cannot spin forever; in practice the EPS gap test
// terminates well before this.
const MaxColumnRounds = 2000

// Result is the maximin solve's output: a probability distribution and
// the final set of generated panels.
type Result struct {
	Distribution core.Distribution
	Panels       []core.Panel
	Z            float64 // the achieved maximin value
}

// Solve runs spec.md §4.4 to completion: seed panels are extended by
// repeatedly pricing against the reduced dual LP until the ILP pricing
// subproblem can no longer improve on the current bound, then the
// primal LP is solved over the final panel set to recover λ.
func Solve(ctx context.Context, solver ilp.MipSolver, ai *ilp.AgentIndex, base ilp.Problem, seedPanels []core.Panel, coverable []core.AgentID, log *core.Log) (*Result, error) {
	order := masterlp.NewAgentOrder(coverable)
	panels := append([]core.Panel{}, seedPanels...)
	seen := make(map[string]bool, len(panels))
	for _, p := range panels {
		seen[p.Key()] = true
	}

	for round := 0; round < MaxColumnRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dual, err := masterlp.SolveDual(order, panels, nil)
		if err != nil {
			return nil, &core.SolverFailureError{Status: "maximin master LP: " + err.Error()}
		}

		weights := make([]float64, len(ai.Agents))
		for i, a := range ai.Agents {
			weights[i] = dual.Y[a.ID]
		}
		priced := ilp.WithObjective(base, weights)
		sol, err := solver.Solve(ctx, priced)
		if err != nil {
			return nil, err
		}
		if sol.Status != ilp.StatusOptimal {
			return nil, &core.SolverFailureError{Status: "maximin pricing subproblem: " + sol.Status.String()}
		}

		value := sol.Objective
		if value <= dual.Z+EPS {
			log.Printf("maximin converged after %d rounds, z=%.6f, %d panels", round, dual.Z, len(panels))
			break
		}

		added := addPanel(ai, sol.Selected(), &panels, seen)
		if added {
			log.Printf("maximin round %d: added panel, pricing value=%.6f z=%.6f", round, value, dual.Z)
		}

		rescuePanel(ctx, solver, ai, base, order, dual, sol.Selected(), &panels, seen)
	}

	primal, err := masterlp.SolvePrimal(order, panels, nil)
	if err != nil {
		return nil, &core.SolverFailureError{Status: "maximin primal recovery LP: " + err.Error()}
	}

	dist := clipAndRenormalize(panels, primal.Lambda)
	return &Result{Distribution: dist, Panels: panels, Z: primal.Z}, nil
}

func addPanel(ai *ilp.AgentIndex, selected []int, panels *[]core.Panel, seen map[string]bool) bool {
	p := ai.Panel(selected)
	key := p.Key()
	if seen[key] {
		return false
	}
	seen[key] = true
	*panels = append(*panels, p)
	return true
}

// rescuePanel implements spec.md §4.4's "Rescue heuristic": scale down
// the priced agents' dual weight on the newly discovered panel and
// re-solve, picking up any further distinct panels cheaply before the
// next full master-LP resolve.
func rescuePanel(ctx context.Context, solver ilp.MipSolver, ai *ilp.AgentIndex, base ilp.Problem, order *masterlp.AgentOrder, dual masterlp.DualResult, lastSelected []int, panels *[]core.Panel, seen map[string]bool) {
	weights := make([]float64, len(ai.Agents))
	for i, a := range ai.Agents {
		weights[i] = dual.Y[a.ID]
	}
	onPanel := make(map[int]bool, len(lastSelected))
	for _, i := range lastSelected {
		onPanel[i] = true
	}

	for attempt := 0; attempt < MaxRescueAttempts; attempt++ {
		if ctx.Err() != nil {
			return
		}
		for i := range weights {
			if onPanel[i] && dual.Z > 0 {
				weights[i] *= dual.Z
			}
		}
		priced := ilp.WithObjective(base, weights)
		sol, err := solver.Solve(ctx, priced)
		if err != nil || sol.Status != ilp.StatusOptimal {
			return
		}
		if !addPanel(ai, sol.Selected(), panels, seen) {
			return
		}
		onPanel = make(map[int]bool, len(sol.Selected()))
		for _, i := range sol.Selected() {
			onPanel[i] = true
		}
	}
}

// clipAndRenormalize implements spec.md §4.4's "clip negatives and
// renormalize" step on the primal LP's recovered lambda.
func clipAndRenormalize(panels []core.Panel, lambda []float64) core.Distribution {
	clipped := make([]float64, len(lambda))
	var sum float64
	for i, v := range lambda {
		if v < 0 {
			v = 0
		}
		clipped[i] = v
		sum += v
	}
	var dist core.Distribution
	if sum <= 0 {
		return dist
	}
	for i, p := range panels {
		prob := clipped[i] / sum
		if prob <= 0 {
			continue
		}
		dist.Panels = append(dist.Panels, core.WeightedPanel{Panel: p, Prob: prob})
	}
	sort.Slice(dist.Panels, func(i, j int) bool { return dist.Panels[i].Panel.Key() < dist.Panels[j].Panel.Key() })
	return dist
}
