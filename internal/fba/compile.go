// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package fba

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fluxgrid/internal/ctxlog"
	"github.com/specialistvlad/fluxgrid/internal/network"
)

// Compile indexes, builds and assembles n in one pass. Metabolites are
// indexed and the biomass metabolite checked before the first reaction is
// looked at.
func Compile(ctx context.Context, n *network.Network, p Policy) (*Model, error) {
	logger := ctxlog.FromContext(ctx).With("network", n.ID)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	idx := NewIndexer(p, len(n.Reactions))
	if err := idx.IndexMetabolites(n.Metabolites); err != nil {
		return nil, err
	}
	if err := idx.CheckBiomass(); err != nil {
		return nil, err
	}
	logger.Debug("Metabolites indexed.",
		"environment", idx.Count(Environment),
		"cytosol", idx.Count(Cytosol),
	)

	b := NewBuilder(idx)
	for _, r := range n.Reactions {
		cols, err := idx.IndexReaction(r)
		if err != nil {
			return nil, err
		}
		if err := b.AddReaction(cols, r); err != nil {
			return nil, err
		}
	}
	logger.Debug("Stoichiometric matrix built.", "reactions", len(n.Reactions), "entries", len(b.Entries()))

	if err := checkObjective(ctx, idx, p); err != nil {
		return nil, err
	}

	m := Assemble(idx, b, p)
	m.NetworkID = n.ID
	m.NetworkName = n.Name
	logger.Debug("Model assembled.", "rows", m.Rows(), "cols", m.Cols(), "objective", m.Objective)
	return m, nil
}

func checkObjective(ctx context.Context, idx *Indexer, p Policy) error {
	logger := ctxlog.FromContext(ctx)
	col, matches := idx.Objective()
	var problem string
	switch {
	case matches == 0:
		problem = fmt.Sprintf("no reaction is named %q", p.ObjectiveName)
	case matches > 1:
		problem = fmt.Sprintf("%d reactions are named %q", matches, p.ObjectiveName)
	default:
		return nil
	}
	if p.RequireObjective {
		return network.Errorf(network.ErrValidation, "objective reaction: %s", problem)
	}
	if col < 0 {
		logger.Warn("No objective reaction; the objective is zero.", "reason", problem)
	} else {
		logger.Warn("Ambiguous objective reaction; using the first match.", "reason", problem, "column", col)
	}
	return nil
}
