// Package network defines the format-agnostic representation of a metabolic
// network as it comes out of a source file, along with the Loader interface
// implemented by the concrete file formats and the error kinds shared by every
// stage of the compilation pipeline.
//
// A Network is plain data. It carries no indices and performs no validation
// beyond what a loader needs to produce it; the fba package owns all of that.
package network
