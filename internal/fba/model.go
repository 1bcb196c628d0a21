// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package fba

// Model is the assembled linear program of one network: rows are metabolite
// mass balances, columns are reaction fluxes. It is not modified after
// Assemble returns.
type Model struct {
	NetworkID   string
	NetworkName string

	Metabolites []Metabolite // by row
	Reactions   []Reaction   // by column, forward columns first
	Entries     []Entry

	// Objective is the column maximized by the solver, -1 if no reaction
	// carried the objective name. ObjectiveMatches counts all such reactions.
	Objective        int
	ObjectiveMatches int

	RowLower []float64
	RowUpper []float64
	ColLower []float64
	ColUpper []float64

	environment int
	cytosol     int
	forward     int
	reverse     int
}

// Summary holds the counts reported for a model.
type Summary struct {
	EnvironmentMetabolites int
	CytosolMetabolites     int
	Metabolites            int
	ForwardReactions       int
	ReverseReactions       int
	Reactions              int
	NonZeros               int
}

// Assemble freezes the output of idx and b into a Model under policy p.
func Assemble(idx *Indexer, b *Builder, p Policy) *Model {
	reactions := make([]Reaction, 0, len(idx.forward)+len(idx.reverse))
	reactions = append(reactions, idx.forward...)
	reactions = append(reactions, idx.reverse...)

	rows, cols := len(idx.metabolites), len(reactions)
	m := &Model{
		Metabolites:      append([]Metabolite(nil), idx.metabolites...),
		Reactions:        reactions,
		Entries:          append([]Entry(nil), b.entries...),
		Objective:        idx.objective,
		ObjectiveMatches: idx.objectiveMatches,
		RowLower:         fill(rows, p.MassBalance),
		RowUpper:         fill(rows, p.MassBalance),
		ColLower:         fill(cols, p.FluxLower),
		ColUpper:         fill(cols, p.FluxUpper),
		environment:      idx.Count(Environment),
		cytosol:          idx.Count(Cytosol),
		forward:          len(idx.forward),
		reverse:          len(idx.reverse),
	}
	return m
}

func fill(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Rows returns the number of mass-balance constraints.
func (m *Model) Rows() int { return len(m.Metabolites) }

// Cols returns the number of flux columns, forward plus reverse.
func (m *Model) Cols() int { return len(m.Reactions) }

// ObjectiveCoefficients returns 1 for the objective column and 0 for every
// other column. Without an objective all coefficients are 0.
func (m *Model) ObjectiveCoefficients() []float64 {
	c := make([]float64, m.Cols())
	if m.Objective >= 0 {
		c[m.Objective] = 1
	}
	return c
}

// Column returns the column with the given reaction id. Reverse columns are
// found by their suffixed id.
func (m *Model) Column(id string) (Reaction, bool) {
	for _, r := range m.Reactions {
		if r.ID == id {
			return r, true
		}
	}
	return Reaction{}, false
}

// Summary returns the model's counts.
func (m *Model) Summary() Summary {
	return Summary{
		EnvironmentMetabolites: m.environment,
		CytosolMetabolites:     m.cytosol,
		Metabolites:            len(m.Metabolites),
		ForwardReactions:       m.forward,
		ReverseReactions:       m.reverse,
		Reactions:              len(m.Reactions),
		NonZeros:               len(m.Entries),
	}
}
