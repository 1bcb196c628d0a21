// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package fba

import (
	"math"

	"github.com/specialistvlad/fluxgrid/internal/network"
)

// Role is the side of a reaction a participant is on.
type Role int

const (
	Reactant Role = iota
	Product
)

func (r Role) String() string {
	if r == Reactant {
		return "reactant"
	}
	return "product"
}

// sign is -1 for consumed and +1 for produced metabolites.
func (r Role) sign() float64 {
	if r == Reactant {
		return -1
	}
	return 1
}

// Entry is one nonzero of the stoichiometric matrix.
type Entry struct {
	Metabolite  int
	Reaction    int
	Coefficient float64
}

// Builder accumulates matrix entries against the indices of an Indexer.
type Builder struct {
	idx     *Indexer
	entries []Entry
}

// NewBuilder returns a Builder resolving metabolites through idx.
func NewBuilder(idx *Indexer) *Builder {
	return &Builder{idx: idx}
}

type resolved struct {
	row  int
	role Role
	mag  float64
}

// AddReaction emits the entries of r. Forward entries come first, reactants
// before products, followed by the mirrored reverse entries in the same
// participant order. Nothing is emitted if any participant fails to resolve.
func (b *Builder) AddReaction(cols Columns, r network.Reaction) error {
	parts := make([]resolved, 0, r.Participants())
	add := func(ps []network.Participant, role Role) error {
		for _, p := range ps {
			if _, err := CompartmentOf(p.Metabolite); err != nil {
				return network.Errorf(network.ErrParse, "reaction %q: %s %q has an unexpected compartment", r.ID, role, p.Metabolite)
			}
			row, ok := b.idx.Resolve(p.Metabolite)
			if !ok {
				return network.Errorf(network.ErrParse, "reaction %q: %s %q is not a declared metabolite", r.ID, role, p.Metabolite)
			}
			if math.IsNaN(p.Stoichiometry) || math.IsInf(p.Stoichiometry, 0) || p.Stoichiometry < 0 {
				return network.Errorf(network.ErrParse, "reaction %q: %s %q has invalid stoichiometry %g", r.ID, role, p.Metabolite, p.Stoichiometry)
			}
			parts = append(parts, resolved{row: row, role: role, mag: p.Stoichiometry})
		}
		return nil
	}
	if err := add(r.Reactants, Reactant); err != nil {
		return err
	}
	if err := add(r.Products, Product); err != nil {
		return err
	}

	for _, p := range parts {
		b.entries = append(b.entries, Entry{Metabolite: p.row, Reaction: cols.Forward, Coefficient: p.role.sign() * p.mag})
	}
	if cols.Reversible() {
		for _, p := range parts {
			b.entries = append(b.entries, Entry{Metabolite: p.row, Reaction: cols.Reverse, Coefficient: -p.role.sign() * p.mag})
		}
	}
	return nil
}

// Entries returns the entries emitted so far in emission order.
func (b *Builder) Entries() []Entry {
	return b.entries
}
