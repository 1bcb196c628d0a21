// Package sbml implements network.Loader for SBML documents. Only the
// species and reaction lists of the model are read; annotations, kinetic
// laws and package extensions are ignored.
package sbml

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/specialistvlad/fluxgrid/internal/ctxlog"
	"github.com/specialistvlad/fluxgrid/internal/network"
)

type document struct {
	XMLName xml.Name `xml:"sbml"`
	Level   string   `xml:"level,attr"`
	Model   *model   `xml:"model"`
}

type model struct {
	ID        string     `xml:"id,attr"`
	Name      string     `xml:"name,attr"`
	Species   []species  `xml:"listOfSpecies>species"`
	Reactions []reaction `xml:"listOfReactions>reaction"`
}

type species struct {
	ID          string `xml:"id,attr"`
	Name        string `xml:"name,attr"`
	Compartment string `xml:"compartment,attr"`
}

type reaction struct {
	ID         string             `xml:"id,attr"`
	Name       string             `xml:"name,attr"`
	Reversible string             `xml:"reversible,attr"`
	Reactants  []speciesReference `xml:"listOfReactants>speciesReference"`
	Products   []speciesReference `xml:"listOfProducts>speciesReference"`
}

type speciesReference struct {
	Species       string `xml:"species,attr"`
	Stoichiometry string `xml:"stoichiometry,attr"`
}

// Loader reads SBML files.
type Loader struct{}

// NewLoader creates a new SBML network loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the SBML document at path.
func (l *Loader) Load(ctx context.Context, path string) (*network.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, network.Errorf(network.ErrIO, "could not open SBML file %s: %v", path, err)
	}
	defer f.Close()

	n, err := l.Decode(ctx, f)
	if err != nil {
		return nil, err
	}
	n.Source = path
	return n, nil
}

// Decode reads an SBML document from r.
func (l *Loader) Decode(ctx context.Context, r io.Reader) (*network.Network, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, network.Errorf(network.ErrParse, "could not read SBML document: %v", err)
	}
	if doc.Model == nil {
		return nil, network.Errorf(network.ErrParse, "SBML document has no model")
	}

	n := &network.Network{
		ID:          doc.Model.ID,
		Name:        doc.Model.Name,
		Metabolites: make([]network.Metabolite, 0, len(doc.Model.Species)),
		Reactions:   make([]network.Reaction, 0, len(doc.Model.Reactions)),
	}
	for _, s := range doc.Model.Species {
		n.Metabolites = append(n.Metabolites, network.Metabolite{ID: s.ID, Name: s.Name, Compartment: s.Compartment})
	}
	for _, r := range doc.Model.Reactions {
		rev, err := reversible(r.Reversible)
		if err != nil {
			return nil, network.Errorf(network.ErrParse, "reaction %q: %v", r.ID, err)
		}
		reactants, err := participants(r.ID, r.Reactants)
		if err != nil {
			return nil, err
		}
		products, err := participants(r.ID, r.Products)
		if err != nil {
			return nil, err
		}
		n.Reactions = append(n.Reactions, network.Reaction{
			ID:         r.ID,
			Name:       r.Name,
			Reversible: rev,
			Reactants:  reactants,
			Products:   products,
		})
	}

	ctxlog.FromContext(ctx).Debug("SBML model read.", "network", n.ID, "level", doc.Level, "species", len(n.Metabolites), "reactions", len(n.Reactions))
	return n, nil
}

// reversible defaults to true, as in SBML levels 1 and 2.
func reversible(attr string) (bool, error) {
	if attr == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(attr))
	if err != nil {
		return false, fmt.Errorf("invalid reversible attribute %q", attr)
	}
	return v, nil
}

func participants(reactionID string, refs []speciesReference) ([]network.Participant, error) {
	out := make([]network.Participant, 0, len(refs))
	for _, ref := range refs {
		s := 1.0
		if ref.Stoichiometry != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(ref.Stoichiometry), 64)
			if err != nil || v < 0 {
				return nil, network.Errorf(network.ErrParse, "reaction %q: species %q has invalid stoichiometry %q", reactionID, ref.Species, ref.Stoichiometry)
			}
			s = v
		}
		out = append(out, network.Participant{Metabolite: ref.Species, Stoichiometry: s})
	}
	return out, nil
}
