package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/fluxgrid/internal/ctxlog"
	"github.com/specialistvlad/fluxgrid/internal/fba"
	"github.com/specialistvlad/fluxgrid/internal/fsutil"
	"github.com/specialistvlad/fluxgrid/internal/network"
	"github.com/specialistvlad/fluxgrid/internal/report"
	"github.com/specialistvlad/fluxgrid/internal/reportdb"
	"github.com/specialistvlad/fluxgrid/internal/solver"
)

const separator = "###################################################################"

// Outcome is what processing one network produced.
type Outcome struct {
	Model      *fba.Model
	Result     *solver.Result // nil when solving is disabled
	ReportPath string
}

// Run processes every configured network in order. A failing network is
// reported and skipped; Run returns an error if any network failed.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	start := time.Now()

	files, err := a.inputs()
	if err != nil {
		return err
	}
	a.logger.Debug("Inputs resolved.", "count", len(files))

	var store *reportdb.Store
	if a.config.DBPath != "" {
		store, err = reportdb.Open(ctx, a.config.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	failed := 0
	for i, path := range files {
		if i > 0 {
			fmt.Fprintf(a.outW, "%s\n\n", separator)
		}
		if _, err := a.Process(ctx, path, store); err != nil {
			failed++
			kind := "error"
			if k := network.Kind(err); k != nil {
				kind = k.Error()
			}
			a.logger.Error("Network processing failed.", "path", path, "kind", kind, "error", err)
			fmt.Fprintf(a.outW, "%s: %v\n\n", path, err)
		}
	}

	fmt.Fprintf(a.outW, "Simulation has finished in %.3f seconds.\n", time.Since(start).Seconds())
	if failed > 0 {
		return fmt.Errorf("%d of %d networks failed", failed, len(files))
	}
	return nil
}

// Process runs one network file through load, compile, solve and report.
// store may be nil.
func (a *App) Process(ctx context.Context, path string, store *reportdb.Store) (*Outcome, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)

	loader, ok := a.loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, network.Errorf(network.ErrParse, "%s: unsupported network file type", path)
	}
	n, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if n.ID == "" {
		n.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	logger.Info("Successfully read network.", "network", n.ID)

	m, err := fba.Compile(ctx, n, a.config.Policy())
	if err != nil {
		return nil, err
	}
	out := &Outcome{Model: m}

	if a.config.Solve {
		res, err := a.solver.Solve(ctx, m)
		if err != nil {
			return out, err
		}
		out.Result = res
		logger.Info("Successfully finished linear programming step.", "network", n.ID, "objective", res.Objective)
	}

	if err := report.WriteSummary(a.outW, m, out.Result); err != nil {
		return out, network.Errorf(network.ErrIO, "write summary: %v", err)
	}

	out.ReportPath, err = report.WriteMatrixFile(a.config.ReportDir, m)
	if err != nil {
		return out, err
	}
	fmt.Fprintf(a.outW, "Successfully created sparse matrix in file: %s\n\n", out.ReportPath)

	if store != nil {
		if err := store.SaveModel(ctx, m); err != nil {
			return out, err
		}
		if out.Result != nil {
			if err := store.SaveResult(ctx, m, out.Result); err != nil {
				return out, err
			}
		}
		logger.Debug("Model stored.", "db", a.config.DBPath)
	}
	return out, nil
}

// inputs expands directories into the supported files they contain. Plain
// file arguments are kept even if they do not exist, so that they fail as
// their own network.
func (a *App) inputs() ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}
	for _, path := range a.config.Paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, a.extensions()...)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}
