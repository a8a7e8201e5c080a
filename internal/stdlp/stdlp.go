// Package stdlp converts a sparse, human-shaped linear program (a
// minimize-objective with <= and == rows over non-negative variables)
// into gonum's required standard form and calls its simplex solver. It
// is the continuous-variable counterpart of internal/ilp's
// branch-and-bound: both reduce to the same lp.Simplex primitive, one
// directly (LP), one through branching (MIP).
package stdlp

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Row is a sparse linear expression: sum_i Coeffs[i]*x[i] {<=,==} RHS.
type Row struct {
	Coeffs map[int]float64
	RHS    float64
}

// Program is: minimize sum(Minimize[i]*x[i]) s.t. Le rows <= RHS,
// Eq rows == RHS, x >= 0.
type Program struct {
	NumVars  int
	Minimize []float64
	Le       []Row
	Eq       []Row
}

// ErrInfeasible and ErrUnbounded mirror gonum/lp's own sentinels so
// callers can branch on them without importing gonum directly.
var (
	ErrInfeasible = errors.New("stdlp: infeasible")
	ErrUnbounded  = errors.New("stdlp: unbounded or singular")
)

// Solve returns the optimal objective and the variable values for the
// first NumVars columns (slack columns are not returned).
func Solve(p Program) (obj float64, x []float64, err error) {
	numSlack := len(p.Le)
	numCols := p.NumVars + numSlack
	numRows := len(p.Le) + len(p.Eq)

	c := make([]float64, numCols)
	copy(c, p.Minimize)

	a := mat.NewDense(numRows, numCols, nil)
	b := make([]float64, numRows)

	row := 0
	for i, le := range p.Le {
		for idx, coeff := range le.Coeffs {
			a.Set(row, idx, coeff)
		}
		a.Set(row, p.NumVars+i, 1)
		b[row] = le.RHS
		row++
	}
	for _, eq := range p.Eq {
		for idx, coeff := range eq.Coeffs {
			a.Set(row, idx, coeff)
		}
		b[row] = eq.RHS
		row++
	}

	optF, optX, serr := lp.Simplex(c, a, b, 0, nil)
	switch {
	case serr == nil:
		return optF, optX[:p.NumVars], nil
	case errors.Is(serr, lp.ErrInfeasible):
		return 0, nil, ErrInfeasible
	case errors.Is(serr, lp.ErrSingular), errors.Is(serr, lp.ErrUnbounded):
		return 0, nil, ErrUnbounded
	default:
		return 0, nil, serr
	}
}
