package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/fluxgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// envKeys maps flags to the environment variables that provide their
// defaults. Explicit flags always win.
var envKeys = map[string]string{
	"report-dir":  "FLUXGRID_REPORT_DIR",
	"upper-bound": "FLUXGRID_UPPER_BOUND",
	"objective":   "FLUXGRID_OBJECTIVE",
	"biomass":     "FLUXGRID_BIOMASS",
	"db":          "FLUXGRID_DB",
	"log-level":   "FLUXGRID_LOG_LEVEL",
	"log-format":  "FLUXGRID_LOG_FORMAT",
	"solver":      "FLUXGRID_SOLVER",
}

const defaultEnvFile = ".env"

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("fluxgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
fluxgrid - compile metabolic networks into flux balance linear programs.

Usage:
  fluxgrid [options] PATH...

Arguments:
  PATH
    A network file (.hcl, .xml, .sbml) or a directory containing them.
    Networks are processed one after another.

Options:
`)
		flagSet.PrintDefaults()
	}

	def := app.DefaultConfig()
	reportDirFlag := flagSet.String("report-dir", def.ReportDir, "Directory for sparse matrix reports.")
	upperFlag := flagSet.Float64("upper-bound", def.FluxUpper, "Upper flux bound of every reaction column.")
	objectiveFlag := flagSet.String("objective", def.ObjectiveName, "Name of the objective reaction.")
	biomassFlag := flagSet.String("biomass", def.BiomassMetabolite, "Id of the cytosolic biomass metabolite.")
	strictFlag := flagSet.Bool("strict-objective", false, "Fail when the objective reaction is missing or ambiguous.")
	solveFlag := flagSet.Bool("solve", def.Solve, "Solve the linear program of every network.")
	solverFlag := flagSet.String("solver", def.Solver, "LP solver. Options: 'bounded' (bounded-variable tableau) or 'dense' (gonum simplex, small models).")
	dbFlag := flagSet.String("db", "", "SQLite database to store models and fluxes in. Empty disables it.")
	logFormatFlag := flagSet.String("log-format", def.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", def.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	envFileFlag := flagSet.String("env-file", defaultEnvFile, "File with FLUXGRID_* defaults.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No network path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if err := applyEnv(flagSet, *envFileFlag); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Paths:             flagSet.Args(),
		ReportDir:         *reportDirFlag,
		DBPath:            *dbFlag,
		Solve:             *solveFlag,
		Solver:            strings.ToLower(*solverFlag),
		ObjectiveName:     *objectiveFlag,
		BiomassMetabolite: *biomassFlag,
		FluxUpper:         *upperFlag,
		StrictObjective:   *strictFlag,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// applyEnv fills flags that were not given on the command line from the
// process environment, then from envFile. A missing default env file is
// not an error.
func applyEnv(flagSet *flag.FlagSet, envFile string) error {
	fileEnv, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || isSet(flagSet, "env-file") {
			return fmt.Errorf("read env file %s: %w", envFile, err)
		}
		fileEnv = nil
	}

	for name, key := range envKeys {
		if isSet(flagSet, name) {
			continue
		}
		val, ok := os.LookupEnv(key)
		if !ok {
			val, ok = fileEnv[key]
		}
		if !ok {
			continue
		}
		if err := flagSet.Set(name, val); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, val, err)
		}
		slog.Debug("Flag default taken from environment.", "flag", name, "env", key)
	}
	return nil
}

func isSet(flagSet *flag.FlagSet, name string) bool {
	set := false
	flagSet.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
