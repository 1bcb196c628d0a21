package network

import "context"

// Network is one metabolic network read from a single source file.
type Network struct {
	ID          string
	Name        string
	Source      string // path the network was loaded from
	Metabolites []Metabolite
	Reactions   []Reaction
}

// Metabolite is a species declaration. Compartment is the raw tag reported by
// the source format, if any; the compiler derives the compartment from the id.
type Metabolite struct {
	ID          string
	Name        string
	Compartment string
}

// Reaction is a reaction declaration with its ordered participants.
type Reaction struct {
	ID         string
	Name       string
	Reversible bool
	Reactants  []Participant
	Products   []Participant
}

// Participant references a metabolite by id with a non-negative magnitude.
type Participant struct {
	Metabolite    string
	Stoichiometry float64
}

// Participants returns the number of reactants and products of r.
func (r Reaction) Participants() int {
	return len(r.Reactants) + len(r.Products)
}

// Loader reads a network from a path.
type Loader interface {
	Load(ctx context.Context, path string) (*Network, error)
}
