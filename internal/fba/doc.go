// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package fba compiles a metabolic network into the sparse linear program
// solved by Flux Balance Analysis.
//
// # Pipeline
//
// Compilation is a single linear pass over one network:
//
//   - Indexer assigns every metabolite a row index. Rows share one counter
//     across both compartments, so indices are contiguous from 0 in discovery
//     order. Every reaction gets a forward column in declaration order; each
//     reversible reaction also gets a reverse column, allocated after all
//     forward columns in the order reversible reactions are met.
//
//   - Builder turns every reaction participant into signed matrix entries.
//     Reactants are negative and products positive on the forward column; the
//     reverse column carries the same entries negated.
//
//   - Assemble freezes both into a Model: equality rows fixed at the mass
//     balance value, column bounds and the single objective column taken from
//     a Policy.
//
// A Model never leaves this package half built. All indices are 0-based; any
// other convention a solver needs is the solver adapter's business.
package fba
