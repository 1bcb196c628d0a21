package solver

import (
	"context"

	"github.com/specialistvlad/fluxgrid/internal/fba"
	"github.com/specialistvlad/fluxgrid/internal/network"
)

// Solver maximizes the objective of a model.
type Solver interface {
	Solve(ctx context.Context, m *fba.Model) (*Result, error)
}

// Result is an optimal flux distribution.
type Result struct {
	Objective float64
	Fluxes    []float64 // indexed by model column
	model     *fba.Model
}

// Flux returns the flux through the column with the given reaction id.
func (r *Result) Flux(id string) (float64, bool) {
	col, ok := r.model.Column(id)
	if !ok {
		return 0, false
	}
	return r.Fluxes[col.Index], true
}

// NetFlux returns forward minus reverse flux of a network reaction.
func (r *Result) NetFlux(id string) (float64, bool) {
	col, ok := r.model.Column(id)
	if !ok || col.Reverse {
		return 0, false
	}
	v := r.Fluxes[col.Index]
	if col.Partner >= 0 {
		v -= r.Fluxes[col.Partner]
	}
	return v, true
}

// solveEmpty handles models without columns, which no simplex accepts. The
// program is feasible only if every row admits zero.
func solveEmpty(m *fba.Model) (*Result, error) {
	for i := range m.RowLower {
		if m.RowLower[i] > 0 || m.RowUpper[i] < 0 {
			return nil, network.Errorf(network.ErrSolver, "network %q: linear program is infeasible: no reactions can balance row %d", m.NetworkID, i)
		}
	}
	return &Result{Objective: 0, Fluxes: []float64{}, model: m}, nil
}
