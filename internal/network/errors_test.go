package network

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorf_PrefixesKind(t *testing.T) {
	err := Errorf(ErrParse, "reaction %q references unknown metabolite %q", "R1", "X_c")

	require.ErrorIs(t, err, ErrParse)
	assert.Equal(t, `parse error: reaction "R1" references unknown metabolite "X_c"`, err.Error())
}

func TestKind(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"parse", Errorf(ErrParse, "x"), ErrParse},
		{"validation wrapped twice", fmt.Errorf("network n1: %w", Errorf(ErrValidation, "x")), ErrValidation},
		{"io", Errorf(ErrIO, "x"), ErrIO},
		{"solver", Errorf(ErrSolver, "x"), ErrSolver},
		{"foreign", fs.ErrNotExist, nil},
		{"nil", nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Kind(tc.err)
			assert.True(t, errors.Is(got, tc.want) || (got == nil && tc.want == nil))
		})
	}
}

func TestReaction_Participants(t *testing.T) {
	r := Reaction{
		Reactants: []Participant{{Metabolite: "A_e", Stoichiometry: 1}},
		Products:  []Participant{{Metabolite: "B_c", Stoichiometry: 1}, {Metabolite: "C_c", Stoichiometry: 2}},
	}
	assert.Equal(t, 3, r.Participants())
}
