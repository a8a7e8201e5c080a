package ilp

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// GonumSolver is a depth-first branch-and-bound MipSolver over binary
// variables, with gonum's two-phase simplex (lp.Simplex) solving the LP
// relaxation at each node. Grounded on the GoMILP reference
// implementations (rlacjfjin/jjhbw forks): same standard-form
// conversion via slack variables, same lp.ErrInfeasible/lp.ErrSingular
// status mapping, generalized from general-integer MILP down to the
// binary-only programs spec.md §4.1 and §4.3-§4.6 need.
type GonumSolver struct {
	// MaxNodes bounds the search tree; 0 (or a negative value) means the
	// default cap of 200000 nodes. Present as a defensive cap for
	// pathological inputs, not part of the spec.
	MaxNodes int
}

// node is one branch-and-bound subproblem: the root LP relaxation plus
// a set of variables additionally fixed to 0 or 1 along this branch.
type node struct {
	fixedZero, fixedOne []int
}

// Solve implements MipSolver.
func (g GonumSolver) Solve(ctx context.Context, p Problem) (Solution, error) {
	std, err := buildStandardForm(p)
	if err != nil {
		return Solution{}, err
	}

	best := Solution{Status: StatusInfeasible}
	bestObj := negInf

	queue := []node{{fixedZero: p.FixedZero, fixedOne: p.FixedOne}}
	maxNodes := g.MaxNodes
	if maxNodes <= 0 {
		maxNodes = 200000
	}

	for len(queue) > 0 && maxNodes > 0 {
		if err := ctx.Err(); err != nil {
			return Solution{}, err
		}
		maxNodes--

		n := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		relaxObj, relaxX, status := solveRelaxation(std, n)
		switch status {
		case StatusFailure:
			return Solution{}, errors.New("ilp: lp relaxation returned a non-optimal, non-infeasible status")
		case StatusInfeasible:
			continue
		}

		// Bound: this branch cannot beat the incumbent.
		if relaxObj <= bestObj+1e-9 {
			continue
		}

		frac, isInteger := firstFractional(relaxX[:p.NumVars])
		if isInteger {
			x := make([]float64, p.NumVars)
			copy(x, relaxX[:p.NumVars])
			for i := range x {
				if x[i] > 0.5 {
					x[i] = 1
				} else {
					x[i] = 0
				}
			}
			obj := 0.0
			for i, c := range p.Objective {
				obj += c * x[i]
			}
			if obj > bestObj {
				bestObj = obj
				best = Solution{Status: StatusOptimal, Objective: obj, X: x}
			}
			continue
		}

		// Branch on the first fractional variable: one child fixes it
		// to 0, the other to 1.
		zeroChild := node{fixedZero: append(append([]int{}, n.fixedZero...), frac), fixedOne: n.fixedOne}
		oneChild := node{fixedZero: n.fixedZero, fixedOne: append(append([]int{}, n.fixedOne...), frac)}
		queue = append(queue, zeroChild, oneChild)
	}

	if best.Status != StatusOptimal {
		return Solution{Status: StatusInfeasible}, nil
	}
	return best, nil
}

const negInf = -1e300

// standardForm is the problem translated into gonum's required shape:
//
//	minimize c^T x
//	s.t.     A x = b, x >= 0
//
// Every Problem.LeConstraints row and every binary variable's implicit
// upper bound (x_i <= 1) gets its own slack column, following the same
// inequality-to-equality conversion the GoMILP reference performs
// before calling lp.Simplex.
type standardForm struct {
	c       []float64
	a       *mat.Dense
	b       []float64
	numOrig int
}

func buildStandardForm(p Problem) (standardForm, error) {
	if len(p.Objective) != p.NumVars {
		return standardForm{}, errors.New("ilp: objective length must equal NumVars")
	}

	numSlackBounds := p.NumVars // one upper-bound row (x_i<=1) per var
	numSlackLe := len(p.LeConstraints)
	numRows := len(p.EqConstraints) + numSlackBounds + numSlackLe
	numCols := p.NumVars + numSlackBounds + numSlackLe

	c := make([]float64, numCols)
	for i, v := range p.Objective {
		c[i] = -v // gonum minimizes; we maximize
	}

	a := mat.NewDense(numRows, numCols, nil)
	b := make([]float64, numRows)

	row := 0
	for _, eq := range p.EqConstraints {
		for i, coeff := range eq.Coeffs {
			a.Set(row, i, coeff)
		}
		b[row] = eq.RHS
		row++
	}
	for i := 0; i < p.NumVars; i++ {
		a.Set(row, i, 1)
		a.Set(row, p.NumVars+i, 1) // slack: x_i + s_i = 1
		b[row] = 1
		row++
	}
	for j, le := range p.LeConstraints {
		for i, coeff := range le.Coeffs {
			a.Set(row, i, coeff)
		}
		slackCol := p.NumVars + numSlackBounds + j
		a.Set(row, slackCol, 1)
		b[row] = le.RHS
		row++
	}

	return standardForm{c: c, a: a, b: b, numOrig: p.NumVars}, nil
}

// solveRelaxation solves the LP relaxation for a branch-and-bound node,
// by appending one equality row per fixed variable (x_i=0 or x_i=1) to
// the base standard form, then calling lp.Simplex.
func solveRelaxation(std standardForm, n node) (objective float64, x []float64, status Status) {
	extra := len(n.fixedZero) + len(n.fixedOne)
	rows, cols := std.a.Dims()

	a := mat.NewDense(rows+extra, cols, nil)
	a.Slice(0, rows, 0, cols).(*mat.Dense).Copy(std.a)
	b := make([]float64, rows+extra)
	copy(b, std.b)

	r := rows
	for _, v := range n.fixedZero {
		a.Set(r, v, 1)
		b[r] = 0
		r++
	}
	for _, v := range n.fixedOne {
		a.Set(r, v, 1)
		b[r] = 1
		r++
	}

	optF, optX, err := lp.Simplex(std.c, a, b, 0, nil)
	switch {
	case err == nil:
		return -optF, optX, StatusOptimal
	case errors.Is(err, lp.ErrInfeasible):
		return 0, nil, StatusInfeasible
	case errors.Is(err, lp.ErrSingular):
		return 0, nil, StatusInfeasible
	default:
		return 0, nil, StatusFailure
	}
}

// firstFractional returns the lowest-indexed variable whose relaxed
// value is not within 1e-6 of 0 or 1, and whether none was found.
func firstFractional(x []float64) (idx int, isInteger bool) {
	for i, v := range x {
		if v > 1e-6 && v < 1-1e-6 {
			return i, false
		}
	}
	return 0, true
}
