package fba

import (
	"github.com/specialistvlad/fluxgrid/internal/network"
)

func p(id string, s float64) network.Participant {
	return network.Participant{Metabolite: id, Stoichiometry: s}
}

// twoMetaboliteNetwork is A_e -> B_c named "biomass0", with B_c as biomass.
func twoMetaboliteNetwork(reversible bool) *network.Network {
	return &network.Network{
		ID: "toy",
		Metabolites: []network.Metabolite{
			{ID: "A_e"},
			{ID: "B_c"},
		},
		Reactions: []network.Reaction{{
			ID:         "R1",
			Name:       "biomass0",
			Reversible: reversible,
			Reactants:  []network.Participant{p("A_e", 1)},
			Products:   []network.Participant{p("B_c", 1)},
		}},
	}
}

func toyPolicy() Policy {
	pol := DefaultPolicy()
	pol.BiomassMetabolite = "B_c"
	return pol
}
