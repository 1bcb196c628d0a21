package fba

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/specialistvlad/fluxgrid/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_IrreversibleScenario(t *testing.T) {
	m, err := Compile(context.Background(), twoMetaboliteNetwork(false), toyPolicy())
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Metabolite: 0, Reaction: 0, Coefficient: -1},
		{Metabolite: 1, Reaction: 0, Coefficient: 1},
	}, m.Entries)
	assert.Equal(t, 0, m.Objective)
	assert.Equal(t, 1, m.ObjectiveMatches)
	assert.Equal(t, []float64{1}, m.ObjectiveCoefficients())
	assert.Equal(t, "toy", m.NetworkID)
}

func TestCompile_ReversibleScenario(t *testing.T) {
	m, err := Compile(context.Background(), twoMetaboliteNetwork(true), toyPolicy())
	require.NoError(t, err)

	require.Len(t, m.Entries, 4)
	assert.Equal(t, Entry{Metabolite: 0, Reaction: 1, Coefficient: 1}, m.Entries[2])
	assert.Equal(t, Entry{Metabolite: 1, Reaction: 1, Coefficient: -1}, m.Entries[3])

	require.Equal(t, 2, m.Cols())
	rev := m.Reactions[1]
	assert.True(t, rev.Reverse)
	assert.Equal(t, "R1_reverse", rev.ID)
	assert.Equal(t, "biomass0_reverse", rev.Name)
	assert.Equal(t, 0, rev.Partner)
	assert.Equal(t, 1, m.Reactions[0].Partner)

	// The reverse column is never the objective.
	assert.Equal(t, []float64{1, 0}, m.ObjectiveCoefficients())

	s := m.Summary()
	assert.Equal(t, Summary{
		EnvironmentMetabolites: 1,
		CytosolMetabolites:     1,
		Metabolites:            2,
		ForwardReactions:       1,
		ReverseReactions:       1,
		Reactions:              2,
		NonZeros:               4,
	}, s)
}

func TestCompile_Bounds(t *testing.T) {
	pol := toyPolicy()
	pol.FluxUpper = 10
	m, err := Compile(context.Background(), twoMetaboliteNetwork(true), pol)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0}, m.RowLower)
	assert.Equal(t, []float64{0, 0}, m.RowUpper)
	assert.Equal(t, []float64{0, 0}, m.ColLower)
	assert.Equal(t, []float64{10, 10}, m.ColUpper)
}

func TestCompile_UnknownCompartment(t *testing.T) {
	n := twoMetaboliteNetwork(false)
	n.Metabolites = append(n.Metabolites, network.Metabolite{ID: "C_m"})

	m, err := Compile(context.Background(), n, toyPolicy())
	require.ErrorIs(t, err, network.ErrParse)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), `"C_m"`)
}

func TestCompile_MissingBiomassBeforeReactions(t *testing.T) {
	n := twoMetaboliteNetwork(false)
	// This reaction would be a parse error if reactions were looked at first.
	n.Reactions = append(n.Reactions, network.Reaction{
		ID:        "R_bad",
		Reactants: []network.Participant{p("Nope_c", 1)},
	})

	_, err := Compile(context.Background(), n, DefaultPolicy())
	require.ErrorIs(t, err, network.ErrValidation)
	assert.NotErrorIs(t, err, network.ErrParse)
	assert.Contains(t, err.Error(), "M_biomass_c")
}

func TestCompile_BiomassMustBeCytosolic(t *testing.T) {
	n := twoMetaboliteNetwork(false)
	pol := toyPolicy()
	pol.BiomassMetabolite = "A_e"

	_, err := Compile(context.Background(), n, pol)
	require.ErrorIs(t, err, network.ErrValidation)
}

func TestCompile_UnresolvedParticipantNamesReaction(t *testing.T) {
	n := twoMetaboliteNetwork(false)
	n.Reactions[0].Products = append(n.Reactions[0].Products, p("Ghost_c", 1))

	_, err := Compile(context.Background(), n, toyPolicy())
	require.ErrorIs(t, err, network.ErrParse)
	assert.Contains(t, err.Error(), `reaction "R1"`)
	assert.Contains(t, err.Error(), `"Ghost_c"`)
}

func TestCompile_Objective(t *testing.T) {
	testCases := []struct {
		name      string
		names     []string
		require   bool
		wantCol   int
		wantCount int
		wantErr   bool
	}{
		{name: "first match wins", names: []string{"x", "biomass0", "biomass0"}, wantCol: 1, wantCount: 2},
		{name: "no match leaves zero objective", names: []string{"x", "y"}, wantCol: -1, wantCount: 0},
		{name: "strict rejects missing", names: []string{"x"}, require: true, wantErr: true},
		{name: "strict rejects ambiguous", names: []string{"biomass0", "biomass0"}, require: true, wantErr: true},
		{name: "strict accepts unique", names: []string{"x", "biomass0"}, require: true, wantCol: 1, wantCount: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := twoMetaboliteNetwork(false)
			n.Reactions = nil
			for i, name := range tc.names {
				n.Reactions = append(n.Reactions, network.Reaction{
					ID:        fmt.Sprintf("R%d", i),
					Name:      name,
					Reactants: []network.Participant{p("A_e", 1)},
					Products:  []network.Participant{p("B_c", 1)},
				})
			}
			pol := toyPolicy()
			pol.RequireObjective = tc.require

			m, err := Compile(context.Background(), n, pol)
			if tc.wantErr {
				require.ErrorIs(t, err, network.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCol, m.Objective)
			assert.Equal(t, tc.wantCount, m.ObjectiveMatches)

			var sum float64
			for _, c := range m.ObjectiveCoefficients() {
				sum += c
			}
			if tc.wantCol < 0 {
				assert.Zero(t, sum)
			} else {
				assert.Equal(t, 1.0, sum)
			}
		})
	}
}

func TestCompile_InvalidPolicy(t *testing.T) {
	pol := toyPolicy()
	pol.FluxUpper = 0
	_, err := Compile(context.Background(), twoMetaboliteNetwork(false), pol)
	require.ErrorIs(t, err, network.ErrValidation)
}

// randomNetwork builds a valid network with a random shape.
func randomNetwork(rng *rand.Rand) *network.Network {
	n := &network.Network{ID: "random"}
	nm := 2 + rng.Intn(20)
	ids := make([]string, 0, nm)
	for i := 0; i < nm; i++ {
		suffix := "_e"
		if rng.Intn(2) == 0 {
			suffix = "_c"
		}
		ids = append(ids, fmt.Sprintf("M%d%s", i, suffix))
	}
	ids = append(ids, DefaultBiomassMetabolite)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	for _, id := range ids {
		n.Metabolites = append(n.Metabolites, network.Metabolite{ID: id})
	}

	nr := 1 + rng.Intn(15)
	for i := 0; i < nr; i++ {
		r := network.Reaction{
			ID:         fmt.Sprintf("R%d", i),
			Reversible: rng.Intn(2) == 0,
		}
		for j := rng.Intn(3); j > 0; j-- {
			r.Reactants = append(r.Reactants, p(ids[rng.Intn(len(ids))], float64(1+rng.Intn(4))))
		}
		for j := rng.Intn(3); j > 0; j-- {
			r.Products = append(r.Products, p(ids[rng.Intn(len(ids))], float64(1+rng.Intn(4))))
		}
		n.Reactions = append(n.Reactions, r)
	}
	n.Reactions[rng.Intn(nr)].Name = DefaultObjectiveName
	return n
}

func TestCompile_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		n := randomNetwork(rng)
		m, err := Compile(context.Background(), n, DefaultPolicy())
		require.NoError(t, err)

		// Rows are exactly [0, total) in discovery order.
		require.Len(t, m.Metabolites, len(n.Metabolites))
		for i, met := range m.Metabolites {
			require.Equal(t, i, met.Index)
			require.Equal(t, n.Metabolites[i].ID, met.ID)
		}

		// Forward columns follow declaration order, reverse columns follow
		// encounter order of reversible reactions.
		numRev := 0
		for i, r := range n.Reactions {
			require.Equal(t, r.ID, m.Reactions[i].ID)
			require.Equal(t, i, m.Reactions[i].Index)
			if r.Reversible {
				rev := m.Reactions[len(n.Reactions)+numRev]
				require.Equal(t, r.ID+ReverseSuffix, rev.ID)
				require.Equal(t, i, rev.Partner)
				require.Equal(t, rev.Index, m.Reactions[i].Partner)
				numRev++
			}
		}
		require.Equal(t, len(n.Reactions)+numRev, m.Cols())

		// Entry count formula.
		want := 0
		for _, r := range n.Reactions {
			mult := 1
			if r.Reversible {
				mult = 2
			}
			want += r.Participants() * mult
		}
		require.Len(t, m.Entries, want)

		// Every reverse entry mirrors a forward entry.
		forward := make(map[[2]int][]float64)
		for _, e := range m.Entries {
			if !m.Reactions[e.Reaction].Reverse {
				k := [2]int{e.Metabolite, e.Reaction}
				forward[k] = append(forward[k], e.Coefficient)
			}
		}
		for _, e := range m.Entries {
			col := m.Reactions[e.Reaction]
			if !col.Reverse {
				continue
			}
			coeffs := forward[[2]int{e.Metabolite, col.Partner}]
			require.Contains(t, coeffs, -e.Coefficient)
		}
	}
}
