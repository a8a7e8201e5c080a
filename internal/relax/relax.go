// Package relax implements the quota relaxer of spec.md §4.2: when the
// feasibility program has no solution, propose the smallest weighted
// adjustment of lower/upper quotas (within [min_flex, max_flex]) that
// restores feasibility.
package relax

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/household"
	"github.com/r3b0rn/panelshop/internal/ilp"
)

// Relaxer proposes minimum-cost quota adjustments using the same
// MipSolver the feasibility check itself uses, by unary-encoding each
// (feature,value)'s slack range as extra binary variables shared across
// every "must-include" scenario (spec.md §4.2).
type Relaxer struct {
	Solver ilp.MipSolver
}

// Result is the relaxer's output: per-(feature,value) adjustments and a
// human-readable diff list (spec.md §4.2).
type Result struct {
	Adjustments []core.QuotaAdjustment
	Diffs       []string
	// MeanSlack/StdDevSlack summarize how much relaxation was needed,
	// across every (feature,value) whose quota moved at all.
	MeanSlack, StdDevSlack float64
}

// slackRange is how far a (feature,value)'s lower/upper quota may move.
type slackRange struct {
	feature, value           string
	min, max                 int
	minFlex, maxFlex         int
	lowerUnits, upperUnits   int // how many unary slack vars each side gets
}

// Relax finds the minimum-cost relaxation restoring feasibility for the
// base quota set, optionally also guaranteeing that every agent set in
// mustInclude can appear together in some feasible panel.
func (r Relaxer) Relax(ctx context.Context, ai *ilp.AgentIndex, cats *core.Categories, k int, groups *household.Groups, mustInclude [][]core.AgentID) (*Result, error) {
	ranges := buildSlackRanges(cats)

	numAgents := len(ai.Agents)
	numScenarios := len(mustInclude)
	if numScenarios == 0 {
		numScenarios = 1
		mustInclude = [][]core.AgentID{nil}
	}

	// Column layout: [scenario 0 agents][scenario 1 agents]...[lower
	// slack units for every (f,v)][upper slack units for every (f,v)].
	slackOffset := numScenarios * numAgents
	lowerCol := make(map[int]int) // slackRanges index -> first column
	upperCol := make(map[int]int)
	col := slackOffset
	for i, sr := range ranges {
		lowerCol[i] = col
		col += sr.lowerUnits
		upperCol[i] = col
		col += sr.upperUnits
	}
	numVars := col

	p := ilp.Problem{NumVars: numVars, Objective: make([]float64, numVars)}
	for i, sr := range ranges {
		weight := lowerWeight(sr.min)
		for j := 0; j < sr.lowerUnits; j++ {
			p.Objective[lowerCol[i]+j] = -weight
		}
		for j := 0; j < sr.upperUnits; j++ {
			p.Objective[upperCol[i]+j] = -1
		}
	}

	for s, required := range mustInclude {
		base := s * numAgents

		panelSize := ilp.LinearConstraint{Coeffs: make(map[int]float64, numAgents), RHS: float64(k)}
		for i := range ai.Agents {
			panelSize.Coeffs[base+i] = 1
		}
		p.EqConstraints = append(p.EqConstraints, panelSize)

		for i, sr := range ranges {
			coeffs := make(map[int]float64)
			for j, a := range ai.Agents {
				if v, ok := a.Value(sr.feature); ok && v == sr.value {
					coeffs[base+j] = 1
				}
			}
			if sr.min > 0 {
				lower := ilp.LinearConstraint{Coeffs: map[int]float64{}, RHS: float64(-sr.min)}
				for idx, c := range coeffs {
					lower.Coeffs[idx] = -c
				}
				for j := 0; j < sr.lowerUnits; j++ {
					lower.Coeffs[lowerCol[i]+j] = -1
				}
				p.LeConstraints = append(p.LeConstraints, lower)
			}
			upper := ilp.LinearConstraint{Coeffs: map[int]float64{}, RHS: float64(sr.max)}
			for idx, c := range coeffs {
				upper.Coeffs[idx] = c
			}
			for j := 0; j < sr.upperUnits; j++ {
				upper.Coeffs[upperCol[i]+j] = -1
			}
			p.LeConstraints = append(p.LeConstraints, upper)
		}

		if groups != nil {
			for _, members := range groups.Households() {
				coeffs := make(map[int]float64, len(members))
				for _, m := range members {
					if idx, ok := ai.Pos(m); ok {
						coeffs[base+idx] = 1
					}
				}
				p.LeConstraints = append(p.LeConstraints, ilp.LinearConstraint{Coeffs: coeffs, RHS: 1})
			}
		}

		for _, id := range required {
			if idx, ok := ai.Pos(id); ok {
				p.FixedOne = append(p.FixedOne, base+idx)
			}
		}
	}

	sol, err := r.Solver.Solve(ctx, p)
	if err != nil {
		return nil, err
	}
	if sol.Status != ilp.StatusOptimal {
		return nil, &core.InfeasibleQuotasCantRelaxError{
			Reason: "no relaxation within [min_flex, max_flex] restores feasibility",
		}
	}

	return summarize(ranges, lowerCol, upperCol, sol.X), nil
}

func buildSlackRanges(cats *core.Categories) []slackRange {
	var ranges []slackRange
	for feature, values := range cats.Values {
		for _, value := range values {
			q, ok := cats.Quota(feature, value)
			if !ok {
				continue
			}
			ranges = append(ranges, slackRange{
				feature: feature, value: value,
				min: q.Min, max: q.Max, minFlex: q.MinFlex, maxFlex: q.MaxFlex,
				lowerUnits: q.Min - q.MinFlex,
				upperUnits: q.MaxFlex - q.Max,
			})
		}
	}
	return ranges
}

// lowerWeight is spec.md §4.2's w_low(f,v) = 1 + 2/min(f,v) if min>0
// else 0: relaxations of already-low lower quotas are more salient.
func lowerWeight(min int) float64 {
	if min <= 0 {
		return 0
	}
	return 1 + 2/float64(min)
}

func summarize(ranges []slackRange, lowerCol, upperCol map[int]int, x []float64) *Result {
	res := &Result{}
	var slacks []float64
	for i, sr := range ranges {
		dMinus := 0
		for j := 0; j < sr.lowerUnits; j++ {
			if x[lowerCol[i]+j] > 0.5 {
				dMinus++
			}
		}
		dPlus := 0
		for j := 0; j < sr.upperUnits; j++ {
			if x[upperCol[i]+j] > 0.5 {
				dPlus++
			}
		}
		if dMinus == 0 && dPlus == 0 {
			continue
		}
		adj := core.QuotaAdjustment{
			Feature: sr.feature, Value: sr.value,
			OldMin: sr.min, OldMax: sr.max,
			NewMin: sr.min - dMinus, NewMax: sr.max + dPlus,
		}
		res.Adjustments = append(res.Adjustments, adj)
		res.Diffs = append(res.Diffs, adj.String())
		slacks = append(slacks, float64(dMinus+dPlus))
	}
	if len(slacks) > 0 {
		res.MeanSlack, res.StdDevSlack = stat.MeanStdDev(slacks, nil)
	}
	return res
}
