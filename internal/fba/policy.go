// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package fba

import (
	"math"

	"github.com/specialistvlad/fluxgrid/internal/network"
)

const (
	DefaultObjectiveName     = "biomass0"
	DefaultBiomassMetabolite = "M_biomass_c"
	DefaultFluxUpper         = 1000.0

	// ReverseSuffix marks the synthetic reverse column of a reversible reaction.
	ReverseSuffix = "_reverse"
)

// Policy holds everything about the linear program that does not come from
// the network itself.
type Policy struct {
	// ObjectiveName is matched exactly against reaction names.
	ObjectiveName string
	// BiomassMetabolite must be declared in the cytosol.
	BiomassMetabolite string

	FluxLower float64
	FluxUpper float64
	// MassBalance is the value every row is fixed at.
	MassBalance float64

	// RequireObjective turns a missing or ambiguous objective reaction into a
	// validation error instead of a warning.
	RequireObjective bool
}

// DefaultPolicy returns the closed steady-state policy: rows fixed at 0,
// columns in [0, 1000], objective reaction named "biomass0".
func DefaultPolicy() Policy {
	return Policy{
		ObjectiveName:     DefaultObjectiveName,
		BiomassMetabolite: DefaultBiomassMetabolite,
		FluxLower:         0,
		FluxUpper:         DefaultFluxUpper,
		MassBalance:       0,
	}
}

// Validate reports a validation error for policies no model can be built with.
func (p Policy) Validate() error {
	switch {
	case p.ObjectiveName == "":
		return network.Errorf(network.ErrValidation, "objective reaction name is empty")
	case p.BiomassMetabolite == "":
		return network.Errorf(network.ErrValidation, "biomass metabolite id is empty")
	case !finite(p.FluxLower) || !finite(p.FluxUpper) || !finite(p.MassBalance):
		return network.Errorf(network.ErrValidation, "flux bounds must be finite")
	case p.FluxLower < 0:
		return network.Errorf(network.ErrValidation, "flux lower bound %g is negative", p.FluxLower)
	case p.FluxUpper <= p.FluxLower:
		return network.Errorf(network.ErrValidation, "flux upper bound %g must exceed lower bound %g", p.FluxUpper, p.FluxLower)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
