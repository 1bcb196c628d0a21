package solver

import (
	"context"
	"errors"
	"math"

	"github.com/specialistvlad/fluxgrid/internal/ctxlog"
	"github.com/specialistvlad/fluxgrid/internal/fba"
	"github.com/specialistvlad/fluxgrid/internal/network"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const defaultTolerance = 1e-10

// Simplex solves models with gonum's dense simplex implementation. Every
// column bound becomes a constraint row, so it suits small models; use
// BoundedSimplex for genome-scale networks.
type Simplex struct {
	// Tolerance is handed to lp.Simplex and used to detect dependent rows.
	// Zero selects a default.
	Tolerance float64
}

// NewSimplex returns a Simplex with the default tolerance.
func NewSimplex() *Simplex {
	return &Simplex{Tolerance: defaultTolerance}
}

// Solve maximizes m's objective. Infeasible and unbounded programs are
// reported as solver errors.
func (s *Simplex) Solve(ctx context.Context, m *fba.Model) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("network", m.NetworkID)
	if m.Cols() == 0 {
		logger.Debug("Model has no columns.")
		return solveEmpty(m)
	}

	tol := s.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}

	sf, err := toStandardForm(m, tol)
	if err != nil {
		return nil, err
	}
	rows, cols := sf.a.Dims()
	logger.Debug("Standard form ready.", "rows", rows, "cols", cols, "dropped_rows", sf.dropped)

	optF, z, err := lp.Simplex(sf.c, sf.a, sf.b, tol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, network.Errorf(network.ErrSolver, "network %q: linear program is infeasible", m.NetworkID)
		case errors.Is(err, lp.ErrUnbounded):
			return nil, network.Errorf(network.ErrSolver, "network %q: linear program is unbounded", m.NetworkID)
		default:
			return nil, network.Errorf(network.ErrSolver, "network %q: %v", m.NetworkID, err)
		}
	}

	n := m.Cols()
	fluxes := make([]float64, n)
	for j := 0; j < n; j++ {
		fluxes[j] = m.ColLower[j] + z[j]
	}
	res := &Result{
		Objective: -optF + sf.offset,
		Fluxes:    fluxes,
		model:     m,
	}
	logger.Debug("Linear program solved.", "objective", res.Objective)
	return res, nil
}

type standardForm struct {
	c       []float64
	a       *mat.Dense
	b       []float64
	offset  float64 // objective contribution of the shifted lower bounds
	dropped int
}

// toStandardForm rewrites the bounded maximization
//
//	max cᵀx  s.t.  Sx = r, l ≤ x ≤ u
//
// as the minimization lp.Simplex accepts:
//
//	min -cᵀy  s.t.  Sy = r - Sl, y + w = u - l, y, w ≥ 0
//
// with x = y + l. The simplex needs full row rank, so linearly dependent
// rows of S are dropped. The bound rows own one slack each and are always
// independent, so only S is reduced.
func toStandardForm(m *fba.Model, tol float64) (*standardForm, error) {
	nr, nc := m.Rows(), m.Cols()
	obj := m.ObjectiveCoefficients()

	if nr == 0 {
		return nil, network.Errorf(network.ErrSolver, "network %q: model has no rows", m.NetworkID)
	}
	s := mat.NewDense(nr, nc, nil)
	rhs := make([]float64, nr)
	for i := 0; i < nr; i++ {
		if m.RowLower[i] != m.RowUpper[i] {
			return nil, network.Errorf(network.ErrSolver, "network %q: row %d is not an equality", m.NetworkID, i)
		}
		rhs[i] = m.RowLower[i]
	}
	for _, e := range m.Entries {
		s.Set(e.Metabolite, e.Reaction, s.At(e.Metabolite, e.Reaction)+e.Coefficient)
		rhs[e.Metabolite] -= e.Coefficient * m.ColLower[e.Reaction]
	}

	keep, err := independentRows(s, rhs, tol)
	if err != nil {
		return nil, network.Errorf(network.ErrSolver, "network %q: %v", m.NetworkID, err)
	}

	k := len(keep)
	sf := &standardForm{
		c:       make([]float64, 2*nc),
		a:       mat.NewDense(k+nc, 2*nc, nil),
		b:       make([]float64, k+nc),
		offset:  floats.Dot(obj, m.ColLower),
		dropped: nr - k,
	}
	for j, v := range obj {
		sf.c[j] = -v
	}
	for i, r := range keep {
		copy(sf.a.RawRowView(i)[:nc], s.RawRowView(r))
		sf.b[i] = rhs[r]
	}
	for j := 0; j < nc; j++ {
		sf.a.Set(k+j, j, 1)
		sf.a.Set(k+j, nc+j, 1)
		sf.b[k+j] = m.ColUpper[j] - m.ColLower[j]
	}
	return sf, nil
}

var errInconsistent = errors.New("mass balance constraints are inconsistent")

// independentRows returns the indices of a maximal set of linearly
// independent rows of a, in order. A dependent row whose right-hand side
// does not follow from the kept rows makes the system infeasible.
func independentRows(a *mat.Dense, b []float64, tol float64) ([]int, error) {
	m, n := a.Dims()
	var (
		basis  [][]float64
		pivots []int
		keep   []int
	)
	for i := 0; i < m; i++ {
		row := make([]float64, n+1)
		copy(row, a.RawRowView(i))
		row[n] = b[i]

		for k, br := range basis {
			if f := row[pivots[k]]; f != 0 {
				floats.AddScaled(row, -f/br[pivots[k]], br)
			}
		}

		pivot, best := -1, tol
		for j := 0; j < n; j++ {
			if v := math.Abs(row[j]); v > best {
				pivot, best = j, v
			}
		}
		if pivot < 0 {
			if math.Abs(row[n]) > tol*math.Max(1, math.Abs(b[i])) {
				return nil, errInconsistent
			}
			continue
		}
		basis = append(basis, row)
		pivots = append(pivots, pivot)
		keep = append(keep, i)
	}
	return keep, nil
}
