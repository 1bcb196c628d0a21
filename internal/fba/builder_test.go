package fba

import (
	"math"
	"testing"

	"github.com/specialistvlad/fluxgrid/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndexed(t *testing.T, reactions int, ids ...string) *Indexer {
	t.Helper()
	idx := NewIndexer(DefaultPolicy(), reactions)
	var ms []network.Metabolite
	for _, id := range ids {
		ms = append(ms, network.Metabolite{ID: id})
	}
	require.NoError(t, idx.IndexMetabolites(ms))
	return idx
}

func TestBuilder_SignsAndMirror(t *testing.T) {
	idx := newIndexed(t, 1, "A_e", "B_c", "C_c")
	b := NewBuilder(idx)

	r := network.Reaction{
		ID:         "R",
		Reversible: true,
		Reactants:  []network.Participant{p("A_e", 2), p("B_c", 0.5)},
		Products:   []network.Participant{p("C_c", 3)},
	}
	cols, err := idx.IndexReaction(r)
	require.NoError(t, err)
	require.NoError(t, b.AddReaction(cols, r))

	assert.Equal(t, []Entry{
		{Metabolite: 0, Reaction: 0, Coefficient: -2},
		{Metabolite: 1, Reaction: 0, Coefficient: -0.5},
		{Metabolite: 2, Reaction: 0, Coefficient: 3},
		{Metabolite: 0, Reaction: 1, Coefficient: 2},
		{Metabolite: 1, Reaction: 1, Coefficient: 0.5},
		{Metabolite: 2, Reaction: 1, Coefficient: -3},
	}, b.Entries())
}

func TestBuilder_RejectsBadParticipants(t *testing.T) {
	testCases := []struct {
		name string
		part network.Participant
	}{
		{"unknown compartment", p("A_x", 1)},
		{"undeclared", p("Q_c", 1)},
		{"negative", p("A_e", -1)},
		{"nan", p("A_e", math.NaN())},
		{"inf", p("A_e", math.Inf(1))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx := newIndexed(t, 1, "A_e", "B_c")
			b := NewBuilder(idx)
			r := network.Reaction{
				ID:        "R_bad",
				Reactants: []network.Participant{p("B_c", 1)},
				Products:  []network.Participant{tc.part},
			}
			cols, err := idx.IndexReaction(r)
			require.NoError(t, err)

			err = b.AddReaction(cols, r)
			require.ErrorIs(t, err, network.ErrParse)
			assert.Contains(t, err.Error(), `reaction "R_bad"`)
			assert.Empty(t, b.Entries(), "nothing is emitted for a rejected reaction")
		})
	}
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "reactant", Reactant.String())
	assert.Equal(t, "product", Product.String())
}
