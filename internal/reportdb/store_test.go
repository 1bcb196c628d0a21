package reportdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/fluxgrid/internal/fba"
	"github.com/specialistvlad/fluxgrid/internal/network"
	"github.com/specialistvlad/fluxgrid/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func model(t *testing.T, id string, reversible bool) *fba.Model {
	t.Helper()
	n := &network.Network{
		ID:          id,
		Metabolites: []network.Metabolite{{ID: "A_e"}, {ID: "B_c"}},
		Reactions: []network.Reaction{{
			ID:         "R1",
			Name:       "biomass0",
			Reversible: reversible,
			Reactants:  []network.Participant{{Metabolite: "A_e", Stoichiometry: 1}},
			Products:   []network.Participant{{Metabolite: "B_c", Stoichiometry: 1}},
		}},
	}
	p := fba.DefaultPolicy()
	p.BiomassMetabolite = "B_c"
	m, err := fba.Compile(context.Background(), n, p)
	require.NoError(t, err)
	return m
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "fluxgrid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveModelAndEntries(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	m := model(t, "toy", true)

	require.NoError(t, s.SaveModel(ctx, m))

	got, err := s.Entries(ctx, "toy")
	require.NoError(t, err)
	assert.Equal(t, m.Entries, got)

	ids, err := s.Networks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"toy"}, ids)
}

func TestStore_SaveModelReplaces(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	require.NoError(t, s.SaveModel(ctx, model(t, "toy", true)))
	require.NoError(t, s.SaveModel(ctx, model(t, "toy", false)))

	got, err := s.Entries(ctx, "toy")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStore_SaveResult(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	m := model(t, "toy", true)
	require.NoError(t, s.SaveModel(ctx, m))

	res, err := solver.NewSimplex().Solve(ctx, m)
	require.NoError(t, err)
	require.NoError(t, s.SaveResult(ctx, m, res))

	// R1 and its reverse column form a cycle, so both run at the cap.
	v, ok, err := s.Flux(ctx, "toy", "R1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 1000, v, 1e-6)

	_, ok, err = s.Flux(ctx, "toy", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveResultNeedsModel(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	m := model(t, "toy", false)

	err := s.SaveResult(ctx, m, &solver.Result{Fluxes: []float64{0}})
	require.ErrorIs(t, err, network.ErrIO)
}

func TestStore_FluxBeforeSolve(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.SaveModel(ctx, model(t, "toy", false)))

	_, ok, err := s.Flux(ctx, "toy", "R1")
	require.NoError(t, err)
	assert.False(t, ok)
}
