// Package masterlp builds the reduced master LPs that spec.md §4.4 and
// §4.5 column-generate over: the dual (agent-weight) form used to price
// new panels, and the primal (panel-probability) form used to recover a
// concrete distribution once the panel set stops changing.
package masterlp

import (
	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/stdlp"
)

// AgentOrder fixes a stable ordering of the coverable agents so dual
// variables can be addressed by index.
type AgentOrder struct {
	IDs   []core.AgentID
	posOf map[core.AgentID]int
}

// NewAgentOrder builds an order over the given agent ids.
func NewAgentOrder(ids []core.AgentID) *AgentOrder {
	o := &AgentOrder{IDs: ids, posOf: make(map[core.AgentID]int, len(ids))}
	for i, id := range ids {
		o.posOf[id] = i
	}
	return o
}

func (o *AgentOrder) pos(id core.AgentID) (int, bool) {
	p, ok := o.posOf[id]
	return p, ok
}

// DualResult is one solve of the reduced dual maximin LP (spec.md §4.4
// "Master LP (reduced)"): y_i per agent, and the optimal z.
type DualResult struct {
	Y map[core.AgentID]float64
	Z float64
}

// SolveDual solves:
//
//	minimize z
//	s.t. sum_{i in P} y_i <= z   for every P in panels
//	     sum_i y_i = 1
//	     y, z >= 0
//
// fixed gives spec.md §4.5's extra frozen-probability terms: when
// non-nil, agents in fixed are excluded from the "sum y_i = 1" row (they
// no longer compete for the free probability mass) and the objective
// becomes "minimize z - sum_{i in fixed} fixed[i]*y_i", matching the
// leximin outer loop's dual LP. Pass nil for plain maximin.
func SolveDual(order *AgentOrder, panels []core.Panel, fixed map[core.AgentID]float64) (DualResult, error) {
	n := len(order.IDs)
	zCol := n // z is the last variable

	prog := stdlp.Program{
		NumVars:  n + 1,
		Minimize: make([]float64, n+1),
	}
	prog.Minimize[zCol] = 1
	for id, frozen := range fixed {
		if i, ok := order.pos(id); ok {
			prog.Minimize[i] = -frozen
		}
	}

	for _, panel := range panels {
		row := stdlp.Row{Coeffs: map[int]float64{}, RHS: 0}
		for _, id := range panel.Agents {
			if i, ok := order.pos(id); ok {
				row.Coeffs[i] += 1
			}
		}
		row.Coeffs[zCol] -= 1
		prog.Le = append(prog.Le, row)
	}

	sumRow := stdlp.Row{Coeffs: map[int]float64{}, RHS: 1}
	for i, id := range order.IDs {
		if _, isFixed := fixed[id]; isFixed {
			continue
		}
		sumRow.Coeffs[i] = 1
	}
	prog.Eq = append(prog.Eq, sumRow)

	// agents already fixed contribute no free y mass: pin their column
	// to exactly 0 so the solver doesn't waste it on them.
	for id := range fixed {
		if i, ok := order.pos(id); ok {
			prog.Eq = append(prog.Eq, stdlp.Row{Coeffs: map[int]float64{i: 1}, RHS: 0})
		}
	}

	_, x, err := stdlp.Solve(prog)
	if err != nil {
		return DualResult{}, err
	}

	y := make(map[core.AgentID]float64, n)
	for i, id := range order.IDs {
		y[id] = x[i]
	}
	return DualResult{Y: y, Z: x[zCol]}, nil
}

// PrimalResult is one solve of the primal maximin LP (spec.md §4.4
// "Recovering the distribution"): a probability per panel.
type PrimalResult struct {
	Lambda []float64 // parallel to the panels slice passed in
	Z      float64
}

// SolvePrimal solves:
//
//	maximize z
//	s.t. sum_{P containing i} lambda_P >= z   for every agent i
//	     sum_P lambda_P = 1
//	     lambda, z >= 0
//
// floors gives spec.md §4.5's terminal-step lower bounds
// (sum_{P∋i} λ_P >= F[i] - eps for every fixed agent i) in place of the
// uniform z when non-nil; the last variable is then eps, which is
// minimized and reported as Z. Pass nil for plain maximin recovery.
func SolvePrimal(order *AgentOrder, panels []core.Panel, floors map[core.AgentID]float64) (PrimalResult, error) {
	m := len(panels)
	zCol := m

	prog := stdlp.Program{
		NumVars:  m + 1,
		Minimize: make([]float64, m+1),
	}
	prog.Minimize[zCol] = -1 // maximize z == minimize -z
	if floors != nil {
		prog.Minimize[zCol] = 1 // terminal step: minimize eps
	}

	membership := make([][]int, len(order.IDs))
	for p, panel := range panels {
		for _, id := range panel.Agents {
			if i, ok := order.pos(id); ok {
				membership[i] = append(membership[i], p)
			}
		}
	}

	for i, id := range order.IDs {
		row := stdlp.Row{Coeffs: map[int]float64{}, RHS: 0}
		for _, p := range membership[i] {
			row.Coeffs[p] = -1
		}
		if floors == nil {
			row.Coeffs[zCol] = 1
		} else if floor, ok := floors[id]; ok {
			row.Coeffs[zCol] = -1
			row.RHS = -floor
		} else {
			continue // unfixed agent with no lower bound in the terminal step
		}
		prog.Le = append(prog.Le, row)
	}

	sumRow := stdlp.Row{Coeffs: map[int]float64{}, RHS: 1}
	for p := range panels {
		sumRow.Coeffs[p] = 1
	}
	prog.Eq = append(prog.Eq, sumRow)

	_, x, err := stdlp.Solve(prog)
	if err != nil {
		return PrimalResult{}, err
	}
	return PrimalResult{Lambda: x[:m], Z: x[zCol]}, nil
}
