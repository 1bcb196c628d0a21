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
)

const (
	boundedTolerance = 1e-9

	// blandAfter is the number of consecutive degenerate steps after which
	// pricing switches to Bland's rule until the objective moves again.
	blandAfter = 64
)

var (
	errIterationLimit = errors.New("iteration limit reached")
	errUnbounded      = errors.New("linear program is unbounded")
)

// BoundedSimplex is a two-phase primal simplex on a dense tableau with one
// row per metabolite. Column bounds are handled by the ratio test instead of
// extra rows, so the tableau stays rows × cols.
type BoundedSimplex struct {
	// Tolerance for pivots, reduced costs and feasibility. Zero selects a
	// default.
	Tolerance float64
	// MaxIterations caps pivots plus bound flips per phase. Zero derives a
	// limit from the model size.
	MaxIterations int
}

// NewBoundedSimplex returns a BoundedSimplex with default settings.
func NewBoundedSimplex() *BoundedSimplex {
	return &BoundedSimplex{Tolerance: boundedTolerance}
}

// Solve maximizes m's objective. Infeasible and unbounded programs are
// reported as solver errors.
func (s *BoundedSimplex) Solve(ctx context.Context, m *fba.Model) (*Result, error) {
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
		tol = boundedTolerance
	}
	limit := s.MaxIterations
	if limit <= 0 {
		limit = 50*(m.Rows()+m.Cols()) + 1000
	}

	t, err := newTableau(m, tol)
	if err != nil {
		return nil, err
	}

	iters, err := t.run(ctx, limit)
	if err != nil {
		return nil, t.fail(m, err)
	}
	if r := t.infeasibility(); r > t.feasTol {
		return nil, network.Errorf(network.ErrSolver, "network %q: linear program is infeasible (residual %g)", m.NetworkID, r)
	}
	logger.Debug("Feasible basis found.", "iterations", iters)

	t.startPhaseTwo(m.ObjectiveCoefficients())
	iters, err = t.run(ctx, limit)
	if err != nil {
		return nil, t.fail(m, err)
	}

	fluxes := t.fluxes(m)
	res := &Result{
		Objective: floats.Dot(m.ObjectiveCoefficients(), fluxes),
		Fluxes:    fluxes,
		model:     m,
	}
	logger.Debug("Linear program solved.", "iterations", iters, "objective", res.Objective)
	return res, nil
}

// tableau holds B⁻¹A over the structural columns of
//
//	Sy = r - Sl, 0 ≤ y ≤ u - l
//
// with rows negated where needed so the phase one artificials start at a
// non-negative value. Artificials are not stored: one that leaves the basis
// never enters again. Basis entry n+i stands for row i's artificial.
type tableau struct {
	m, n int
	a    *mat.Dense
	d    []float64 // reduced costs
	cost []float64

	upper   []float64 // column ranges u - l
	basis   []int
	row     []int  // basis row of each column, -1 if nonbasic
	atUpper []bool // nonbasic column sits at its range
	x       []float64

	artCost  float64
	artUpper float64

	tol, feasTol float64
}

func newTableau(m *fba.Model, tol float64) (*tableau, error) {
	nr, nc := m.Rows(), m.Cols()
	if nr == 0 {
		return nil, network.Errorf(network.ErrSolver, "network %q: model has no rows", m.NetworkID)
	}
	t := &tableau{
		m:        nr,
		n:        nc,
		a:        mat.NewDense(nr, nc, nil),
		d:        make([]float64, nc),
		cost:     make([]float64, nc),
		upper:    make([]float64, nc),
		basis:    make([]int, nr),
		row:      make([]int, nc),
		atUpper:  make([]bool, nc),
		x:        make([]float64, nr),
		artCost:  1,
		artUpper: math.Inf(1),
		tol:      tol,
	}

	for j := 0; j < nc; j++ {
		l, u := m.ColLower[j], m.ColUpper[j]
		if math.IsInf(l, 0) || math.IsNaN(l) || math.IsNaN(u) {
			return nil, network.Errorf(network.ErrSolver, "network %q: column %d needs a finite lower bound", m.NetworkID, j)
		}
		if u < l {
			return nil, network.Errorf(network.ErrSolver, "network %q: linear program is infeasible: column %d has empty bounds", m.NetworkID, j)
		}
		t.upper[j] = u - l
		t.row[j] = -1
	}

	for i := 0; i < nr; i++ {
		if m.RowLower[i] != m.RowUpper[i] {
			return nil, network.Errorf(network.ErrSolver, "network %q: row %d is not an equality", m.NetworkID, i)
		}
		t.x[i] = m.RowLower[i]
		t.basis[i] = nc + i
	}
	for _, e := range m.Entries {
		t.a.Set(e.Metabolite, e.Reaction, t.a.At(e.Metabolite, e.Reaction)+e.Coefficient)
		t.x[e.Metabolite] -= e.Coefficient * m.ColLower[e.Reaction]
	}

	scale := 1.0
	for i := 0; i < nr; i++ {
		if t.x[i] < 0 {
			t.x[i] = -t.x[i]
			floats.Scale(-1, t.a.RawRowView(i))
		}
		scale = math.Max(scale, t.x[i])
	}
	t.feasTol = 1e3 * tol * scale

	t.price()
	return t, nil
}

func (t *tableau) costOf(v int) float64 {
	if v >= t.n {
		return t.artCost
	}
	return t.cost[v]
}

func (t *tableau) upperOf(v int) float64 {
	if v >= t.n {
		return t.artUpper
	}
	return t.upper[v]
}

// price recomputes the reduced costs from the current basis.
func (t *tableau) price() {
	copy(t.d, t.cost)
	for i, v := range t.basis {
		if cb := t.costOf(v); cb != 0 {
			floats.AddScaled(t.d, -cb, t.a.RawRowView(i))
		}
	}
}

// infeasibility is the total value of artificials still in the basis.
func (t *tableau) infeasibility() float64 {
	var sum float64
	for i, v := range t.basis {
		if v >= t.n {
			sum += math.Abs(t.x[i])
		}
	}
	return sum
}

// startPhaseTwo pins the artificials at zero and minimizes -obj.
func (t *tableau) startPhaseTwo(obj []float64) {
	t.artCost = 0
	t.artUpper = 0
	for j, c := range obj {
		t.cost[j] = -c
	}
	t.price()
}

// run pivots until no reduced cost improves the current phase objective.
func (t *tableau) run(ctx context.Context, limit int) (int, error) {
	degenerate := 0
	for iter := 0; ; iter++ {
		if iter%256 == 0 {
			if err := ctx.Err(); err != nil {
				return iter, err
			}
		}
		if iter >= limit {
			return iter, errIterationLimit
		}
		if t.artCost > 0 && t.infeasibility() <= t.feasTol {
			return iter, nil
		}

		bland := degenerate >= blandAfter
		j, dir := t.entering(bland)
		if j < 0 {
			return iter, nil
		}
		step, r := t.ratio(j, dir, bland)
		if math.IsInf(step, 1) {
			return iter, errUnbounded
		}
		if step <= t.tol {
			degenerate++
		} else {
			degenerate = 0
		}
		t.move(j, dir, step, r)
	}
}

// entering picks a nonbasic column whose move lowers the objective and the
// direction of that move. It returns -1 at optimality.
func (t *tableau) entering(bland bool) (int, float64) {
	best, bestJ, bestDir := t.tol, -1, 0.0
	for j := 0; j < t.n; j++ {
		if t.row[j] >= 0 || t.upper[j] <= t.tol {
			continue
		}
		var dir, gain float64
		switch {
		case !t.atUpper[j] && t.d[j] < -t.tol:
			dir, gain = 1, -t.d[j]
		case t.atUpper[j] && t.d[j] > t.tol:
			dir, gain = -1, t.d[j]
		default:
			continue
		}
		if bland {
			return j, dir
		}
		if gain > best {
			best, bestJ, bestDir = gain, j, dir
		}
	}
	return bestJ, bestDir
}

// ratio returns how far column j can move in direction dir and the row
// whose basic variable blocks it, or -1 when j reaches its own bound first.
func (t *tableau) ratio(j int, dir float64, bland bool) (float64, int) {
	raw := t.a.RawMatrix()
	step, r := t.upper[j], -1
	for i := 0; i < t.m; i++ {
		alpha := dir * raw.Data[i*raw.Stride+j]
		var lim float64
		switch {
		case alpha > t.tol:
			lim = t.x[i] / alpha
		case alpha < -t.tol:
			u := t.upperOf(t.basis[i])
			if math.IsInf(u, 1) {
				continue
			}
			lim = (u - t.x[i]) / -alpha
		default:
			continue
		}
		if lim < 0 {
			lim = 0
		}
		if lim < step-t.tol || (r >= 0 && lim <= step+t.tol && t.preferRow(i, r, j, bland)) {
			step, r = lim, i
		}
	}
	return step, r
}

// preferRow breaks ratio ties: smallest basic index under Bland's rule,
// otherwise the larger pivot.
func (t *tableau) preferRow(i, r, j int, bland bool) bool {
	if bland {
		return t.basis[i] < t.basis[r]
	}
	return math.Abs(t.a.At(i, j)) > math.Abs(t.a.At(r, j))
}

// move shifts column j by step in direction dir. With r < 0 the column flips
// to its other bound; otherwise it replaces the basic variable of row r.
func (t *tableau) move(j int, dir, step float64, r int) {
	raw := t.a.RawMatrix()
	if step != 0 {
		for i := 0; i < t.m; i++ {
			if v := raw.Data[i*raw.Stride+j]; v != 0 {
				t.x[i] -= dir * step * v
			}
		}
	}
	if r < 0 {
		t.atUpper[j] = !t.atUpper[j]
		return
	}

	start := 0.0
	if t.atUpper[j] {
		start = t.upper[j]
	}
	if leaving := t.basis[r]; leaving < t.n {
		t.row[leaving] = -1
		t.atUpper[leaving] = dir*raw.Data[r*raw.Stride+j] < 0
	}
	t.basis[r] = j
	t.row[j] = r
	t.atUpper[j] = false
	t.x[r] = start + dir*step
	t.pivot(r, j)
}

func (t *tableau) pivot(r, j int) {
	pr := t.a.RawRowView(r)
	floats.Scale(1/pr[j], pr)
	pr[j] = 1
	for i := 0; i < t.m; i++ {
		if i == r {
			continue
		}
		row := t.a.RawRowView(i)
		if f := row[j]; f != 0 {
			floats.AddScaled(row, -f, pr)
			row[j] = 0
		}
	}
	if f := t.d[j]; f != 0 {
		floats.AddScaled(t.d, -f, pr)
		t.d[j] = 0
	}
}

// fluxes maps the tableau back onto model columns, clamped to their bounds.
func (t *tableau) fluxes(m *fba.Model) []float64 {
	out := make([]float64, t.n)
	for j := range out {
		var y float64
		switch {
		case t.row[j] >= 0:
			y = t.x[t.row[j]]
		case t.atUpper[j]:
			y = t.upper[j]
		}
		y = math.Min(math.Max(y, 0), t.upper[j])
		out[j] = m.ColLower[j] + y
	}
	return out
}

func (t *tableau) fail(m *fba.Model, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return network.Errorf(network.ErrSolver, "network %q: %v", m.NetworkID, err)
}
