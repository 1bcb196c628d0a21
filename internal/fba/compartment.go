// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package fba

import (
	"fmt"

	"github.com/specialistvlad/fluxgrid/internal/network"
)

// Compartment is the location of a metabolite. Only two exist.
type Compartment int

const (
	Environment Compartment = iota
	Cytosol

	numCompartments = 2
)

func (c Compartment) String() string {
	switch c {
	case Environment:
		return "environment"
	case Cytosol:
		return "cytosol"
	default:
		return fmt.Sprintf("Compartment(%d)", int(c))
	}
}

// CompartmentOf resolves the compartment from the one-character suffix of a
// metabolite id: "_e" is the environment, "_c" the cytosol. Anything else is
// a parse error.
func CompartmentOf(id string) (Compartment, error) {
	n := len(id)
	if n < 3 || id[n-2] != '_' {
		return 0, network.Errorf(network.ErrParse, "metabolite %q has no compartment suffix", id)
	}
	switch id[n-1] {
	case 'e':
		return Environment, nil
	case 'c':
		return Cytosol, nil
	default:
		return 0, network.Errorf(network.ErrParse, "metabolite %q has unexpected compartment %q", id, id[n-2:])
	}
}
