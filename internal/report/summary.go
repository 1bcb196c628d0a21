package report

import (
	"fmt"
	"io"

	"github.com/specialistvlad/fluxgrid/internal/fba"
	"github.com/specialistvlad/fluxgrid/internal/solver"
)

// WriteSummary prints the counts of a model and, when res is not nil, the
// optimal objective value.
func WriteSummary(w io.Writer, m *fba.Model, res *solver.Result) error {
	s := m.Summary()
	name := m.NetworkID
	if m.NetworkName != "" {
		name = fmt.Sprintf("%s (%s)", m.NetworkID, m.NetworkName)
	}
	_, err := fmt.Fprintf(w, `Metabolic data for species: %s

Number of external metabolites: %d
Number of internal metabolites: %d
Total number metabolites: %d

Number of forward reactions: %d
Number of reverse reactions: %d
Total number of reactions: %d

Number of non-zeroes in sparse matrix: %d
`,
		name,
		s.EnvironmentMetabolites, s.CytosolMetabolites, s.Metabolites,
		s.ForwardReactions, s.ReverseReactions, s.Reactions,
		s.NonZeros,
	)
	if err != nil {
		return err
	}

	switch {
	case m.Objective < 0:
		_, err = fmt.Fprintln(w, "Objective reaction: none")
	default:
		_, err = fmt.Fprintf(w, "Objective reaction: %s\n", m.Reactions[m.Objective].ID)
	}
	if err != nil {
		return err
	}
	if res != nil {
		_, err = fmt.Fprintf(w, "Objective value: %g\n", res.Objective)
	}
	return err
}
