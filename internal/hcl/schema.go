package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot decodes the top level of a network file.
type fileRoot struct {
	Networks []*Network `hcl:"network,block"`
	Remain   hcl.Body   `hcl:",remain"`
}

// Network represents a `network` block. Block order inside it is the
// declaration order of metabolites and reactions.
type Network struct {
	ID          string        `hcl:"id,label"`
	Name        string        `hcl:"name,optional"`
	Locals      *Locals       `hcl:"locals,block"`
	Metabolites []*Metabolite `hcl:"metabolite,block"`
	Reactions   []*Reaction   `hcl:"reaction,block"`
}

// Locals holds named constants usable as `local.<name>` in stoichiometry
// expressions.
type Locals struct {
	Body hcl.Body `hcl:",remain"`
}

// Metabolite represents a `metabolite` block.
type Metabolite struct {
	ID          string `hcl:"id,label"`
	Name        string `hcl:"name,optional"`
	Compartment string `hcl:"compartment,optional"`
}

// Reaction represents a `reaction` block.
type Reaction struct {
	ID         string         `hcl:"id,label"`
	Name       string         `hcl:"name,optional"`
	Reversible bool           `hcl:"reversible,optional"`
	Reactants  []*Participant `hcl:"reactant,block"`
	Products   []*Participant `hcl:"product,block"`
}

// Participant represents a `reactant` or `product` block. A missing
// stoichiometry means 1.
type Participant struct {
	Metabolite    string         `hcl:"metabolite,label"`
	Stoichiometry hcl.Expression `hcl:"stoichiometry,optional"`
}
