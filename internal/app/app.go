package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/fluxgrid/internal/hcl"
	"github.com/specialistvlad/fluxgrid/internal/network"
	"github.com/specialistvlad/fluxgrid/internal/sbml"
	"github.com/specialistvlad/fluxgrid/internal/solver"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loaders map[string]network.Loader // by lower-case file extension
	solver  solver.Solver
}

// Option customizes an App.
type Option func(*App)

// WithSolver replaces the default simplex solver.
func WithSolver(s solver.Solver) Option {
	return func(a *App) { a.solver = s }
}

// WithLoader registers a loader for files with the given extension.
func WithLoader(ext string, l network.Loader) Option {
	return func(a *App) { a.loaders[ext] = l }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	hclLoader, sbmlLoader := hcl.NewLoader(), sbml.NewLoader()
	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loaders: map[string]network.Loader{
			".hcl":  hclLoader,
			".xml":  sbmlLoader,
			".sbml": sbmlLoader,
		},
		solver: newSolver(cfg.Solver),
	}
	for _, opt := range opts {
		opt(a)
	}
	logger.Debug("App configured.", "paths", len(cfg.Paths), "solve", cfg.Solve, "report_dir", cfg.ReportDir, "solver", cfg.Solver)
	return a
}

func newSolver(name string) solver.Solver {
	if name == SolverDense {
		return solver.NewSimplex()
	}
	return solver.NewBoundedSimplex()
}

func (a *App) extensions() []string {
	exts := make([]string, 0, len(a.loaders))
	for ext := range a.loaders {
		exts = append(exts, ext)
	}
	return exts
}
