// Package solver hands an assembled fba.Model to a linear programming
// solver and maps the answer back onto model columns.
//
// The model is 0-based and bounded. BoundedSimplex works on it directly;
// Simplex rewrites it into the standard form gonum's lp package expects.
package solver
