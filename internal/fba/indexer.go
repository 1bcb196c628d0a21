// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package fba

import (
	"github.com/specialistvlad/fluxgrid/internal/network"
)

// Metabolite is a metabolite with its row index.
type Metabolite struct {
	Index       int
	ID          string
	Name        string
	Compartment Compartment
}

// Reaction is one column of the model. A reversible network reaction owns two
// columns that point at each other through Partner.
type Reaction struct {
	Index   int
	ID      string
	Name    string
	Reverse bool
	Partner int // column of the opposite direction, -1 if irreversible
}

// Columns are the column indices assigned to one network reaction.
type Columns struct {
	Forward int
	Reverse int // -1 if the reaction is irreversible
}

// Reversible reports whether a reverse column was allocated.
func (c Columns) Reversible() bool {
	return c.Reverse >= 0
}

// Indexer assigns row and column indices for a single network. It owns all
// counters; a new Indexer is needed per network.
type Indexer struct {
	policy Policy

	metabolites   []Metabolite
	byCompartment [numCompartments]map[string]int

	numForward int
	forward    []Reaction
	reverse    []Reaction
	reactionID map[string]struct{}

	objective        int
	objectiveMatches int
}

// NewIndexer returns an Indexer for a network declaring reactionCount
// reactions. The count fixes where reverse columns start.
func NewIndexer(policy Policy, reactionCount int) *Indexer {
	idx := &Indexer{
		policy:     policy,
		numForward: reactionCount,
		forward:    make([]Reaction, 0, reactionCount),
		reactionID: make(map[string]struct{}, reactionCount),
		objective:  -1,
	}
	for c := range idx.byCompartment {
		idx.byCompartment[c] = make(map[string]int)
	}
	return idx
}

// IndexMetabolites assigns the next row index to every metabolite in order.
// It fails on the first unknown compartment or duplicate id, leaving no
// partial state a caller could build on.
func (idx *Indexer) IndexMetabolites(ms []network.Metabolite) error {
	for _, m := range ms {
		c, err := CompartmentOf(m.ID)
		if err != nil {
			return err
		}
		if _, dup := idx.byCompartment[c][m.ID]; dup {
			return network.Errorf(network.ErrParse, "metabolite %q declared twice", m.ID)
		}
		i := len(idx.metabolites)
		idx.byCompartment[c][m.ID] = i
		idx.metabolites = append(idx.metabolites, Metabolite{
			Index:       i,
			ID:          m.ID,
			Name:        m.Name,
			Compartment: c,
		})
	}
	return nil
}

// CheckBiomass fails unless the policy's biomass metabolite was indexed in
// the cytosol. It must run before any reaction is indexed.
func (idx *Indexer) CheckBiomass() error {
	if _, ok := idx.byCompartment[Cytosol][idx.policy.BiomassMetabolite]; !ok {
		return network.Errorf(network.ErrValidation, "could not find biomass metabolite %q in the cytosol", idx.policy.BiomassMetabolite)
	}
	return nil
}

// Resolve returns the row index of a metabolite id, consulting the index of
// the compartment named by its suffix.
func (idx *Indexer) Resolve(id string) (int, bool) {
	c, err := CompartmentOf(id)
	if err != nil {
		return 0, false
	}
	i, ok := idx.byCompartment[c][id]
	return i, ok
}

// IndexReaction assigns the forward column of the next reaction and, when it
// is reversible, the next reverse column. The first reaction whose name equals
// the policy's objective name becomes the objective.
func (idx *Indexer) IndexReaction(r network.Reaction) (Columns, error) {
	if _, dup := idx.reactionID[r.ID]; dup {
		return Columns{}, network.Errorf(network.ErrParse, "reaction %q declared twice or clashes with a reverse column id", r.ID)
	}
	reverseID := r.ID + ReverseSuffix
	if r.Reversible {
		if _, dup := idx.reactionID[reverseID]; dup {
			return Columns{}, network.Errorf(network.ErrParse, "reverse column %q of reaction %q clashes with a declared reaction", reverseID, r.ID)
		}
	}
	if len(idx.forward) == idx.numForward {
		return Columns{}, network.Errorf(network.ErrParse, "reaction %q exceeds the declared %d reactions", r.ID, idx.numForward)
	}
	idx.reactionID[r.ID] = struct{}{}

	cols := Columns{Forward: len(idx.forward), Reverse: -1}
	fwd := Reaction{Index: cols.Forward, ID: r.ID, Name: r.Name, Partner: -1}

	if r.Reversible {
		cols.Reverse = idx.numForward + len(idx.reverse)
		fwd.Partner = cols.Reverse
		idx.reactionID[reverseID] = struct{}{}
		name := r.Name
		if name == "" {
			name = r.ID
		}
		idx.reverse = append(idx.reverse, Reaction{
			Index:   cols.Reverse,
			ID:      reverseID,
			Name:    name + ReverseSuffix,
			Reverse: true,
			Partner: cols.Forward,
		})
	}
	idx.forward = append(idx.forward, fwd)

	if r.Name == idx.policy.ObjectiveName {
		idx.objectiveMatches++
		if idx.objective < 0 {
			idx.objective = cols.Forward
		}
	}
	return cols, nil
}

// Objective returns the objective column (-1 if none matched) and how many
// reactions matched the objective name.
func (idx *Indexer) Objective() (column, matches int) {
	return idx.objective, idx.objectiveMatches
}

// Metabolites returns the indexed metabolites ordered by row.
func (idx *Indexer) Metabolites() []Metabolite {
	return idx.metabolites
}

// Count returns how many metabolites were indexed in compartment c.
func (idx *Indexer) Count(c Compartment) int {
	return len(idx.byCompartment[c])
}
