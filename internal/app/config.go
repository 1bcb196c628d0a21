package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/fluxgrid/internal/fba"
)

// Solver names accepted in Config.Solver.
const (
	SolverBounded = "bounded"
	SolverDense   = "dense"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths     []string // network files or directories of them
	ReportDir string
	DBPath    string // SQLite database; empty disables it
	Solve     bool
	Solver    string // "bounded" or "dense"

	ObjectiveName     string
	BiomassMetabolite string
	FluxUpper         float64
	StrictObjective   bool

	LogFormat string
	LogLevel  string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ReportDir:         "Sparse_Matrices",
		Solve:             true,
		Solver:            SolverBounded,
		ObjectiveName:     fba.DefaultObjectiveName,
		BiomassMetabolite: fba.DefaultBiomassMetabolite,
		FluxUpper:         fba.DefaultFluxUpper,
		LogFormat:         "text",
		LogLevel:          "info",
	}
}

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one network path is required")
	}
	switch cfg.Solver {
	case SolverBounded, SolverDense:
	default:
		return nil, fmt.Errorf("unknown solver %q: must be %q or %q", cfg.Solver, SolverBounded, SolverDense)
	}
	if cfg.ReportDir == "" {
		return nil, errors.New("report directory cannot be empty")
	}
	if err := cfg.Policy().Validate(); err != nil {
		return nil, fmt.Errorf("invalid model policy: %w", err)
	}
	return &cfg, nil
}

// Policy returns the model policy described by the configuration.
func (c *Config) Policy() fba.Policy {
	p := fba.DefaultPolicy()
	p.ObjectiveName = c.ObjectiveName
	p.BiomassMetabolite = c.BiomassMetabolite
	p.FluxUpper = c.FluxUpper
	p.RequireObjective = c.StrictObjective
	return p
}
