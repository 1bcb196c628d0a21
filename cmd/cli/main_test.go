package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const toyHCL = `
network "toy" {
  metabolite "A_e" {}
  metabolite "M_biomass_c" {}

  reaction "R_EX_A" {
    product "A_e" {}
  }
  reaction "R_BIOMASS" {
    name = "biomass0"
    reactant "A_e" {}
    product "M_biomass_c" {}
  }
  reaction "R_SINK" {
    reactant "M_biomass_c" {}
  }
}
`

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_WritesReport(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	netPath := filepath.Join(dir, "toy.hcl")
	require.NoError(t, os.WriteFile(netPath, []byte(toyHCL), 0600))
	reportDir := filepath.Join(dir, "reports")
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"--report-dir", reportDir, "--log-level=error", netPath})

	// --- Assert ---
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(reportDir, "SM_toy.tsv"))
	require.Contains(t, out.String(), "Simulation has finished in")
}

func TestRun_NetworkFailureIsReported(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	netPath := filepath.Join(dir, "broken.hcl")
	require.NoError(t, os.WriteFile(netPath, []byte(`network "x" {`), 0600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"--report-dir", filepath.Join(dir, "r"), "--log-level=error", netPath})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 of 1 networks failed")
	require.Contains(t, out.String(), "parse error")
}
