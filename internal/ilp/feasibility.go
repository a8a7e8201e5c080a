package ilp

import (
	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/household"
)

// AgentIndex fixes an ordering of agents for the lifetime of one run, so
// every Problem and Solution can be addressed by plain int indices.
type AgentIndex struct {
	Agents []core.Agent
	posOf  map[core.AgentID]int
}

// NewAgentIndex builds an index over agents in the given order.
func NewAgentIndex(agents []core.Agent) *AgentIndex {
	idx := &AgentIndex{Agents: agents, posOf: make(map[core.AgentID]int, len(agents))}
	for i, a := range agents {
		idx.posOf[a.ID] = i
	}
	return idx
}

// Pos returns the index of the given agent id.
func (ai *AgentIndex) Pos(id core.AgentID) (int, bool) {
	p, ok := ai.posOf[id]
	return p, ok
}

// Panel converts a set of selected indices into a core.Panel.
func (ai *AgentIndex) Panel(selected []int) core.Panel {
	p := core.Panel{Agents: make([]core.AgentID, len(selected))}
	for i, idx := range selected {
		p.Agents[i] = ai.Agents[idx].ID
	}
	return p
}

// BuildFeasibility constructs the 0/1 program of spec.md §4.1: pick
// exactly k agents, respect each (feature,value)'s [min,max] quota, and
// (if households is non-nil) at most one agent per household.
func BuildFeasibility(ai *AgentIndex, cats *core.Categories, k int, households *household.Groups) Problem {
	n := len(ai.Agents)
	p := Problem{
		NumVars:   n,
		Objective: make([]float64, n), // feasibility check only: zero objective
	}

	// sum_i x_i = k
	panelSize := LinearConstraint{Coeffs: make(map[int]float64, n), RHS: float64(k)}
	for i := range ai.Agents {
		panelSize.Coeffs[i] = 1
	}
	p.EqConstraints = append(p.EqConstraints, panelSize)

	// quota rows, two per (feature,value): -sum x_i <= -min, sum x_i <= max
	for feature, values := range cats.Values {
		for _, value := range values {
			q, ok := cats.Quota(feature, value)
			if !ok {
				continue
			}
			coeffs := make(map[int]float64)
			for i, a := range ai.Agents {
				if v, ok := a.Value(feature); ok && v == value {
					coeffs[i] = 1
				}
			}
			if q.Min > 0 {
				neg := make(map[int]float64, len(coeffs))
				for i, c := range coeffs {
					neg[i] = -c
				}
				p.LeConstraints = append(p.LeConstraints, LinearConstraint{Coeffs: neg, RHS: float64(-q.Min)})
			}
			p.LeConstraints = append(p.LeConstraints, LinearConstraint{Coeffs: coeffs, RHS: float64(q.Max)})
		}
	}

	// household rows: sum_{i in H} x_i <= 1
	if households != nil {
		for _, members := range households.Households() {
			coeffs := make(map[int]float64, len(members))
			for _, m := range members {
				if i, ok := ai.Pos(m); ok {
					coeffs[i] = 1
				}
			}
			p.LeConstraints = append(p.LeConstraints, LinearConstraint{Coeffs: coeffs, RHS: 1})
		}
	}

	return p
}

// WithObjective returns a copy of p with a new linear objective,
// leaving every constraint untouched; used by §4.3-§4.6 to re-price
// the same feasibility polytope with different agent weights.
func WithObjective(p Problem, objective []float64) Problem {
	out := p
	out.Objective = objective
	return out
}
