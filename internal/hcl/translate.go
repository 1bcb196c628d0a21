// This file translates the decoded HCL blocks into the format-agnostic
// network model, evaluating stoichiometry expressions on the way.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/fluxgrid/internal/ctxlog"
	"github.com/specialistvlad/fluxgrid/internal/network"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

func (l *Loader) translateNetwork(ctx context.Context, s *Network) (*network.Network, error) {
	evalCtx, err := l.evalContext(s)
	if err != nil {
		return nil, err
	}

	n := &network.Network{
		ID:          s.ID,
		Name:        s.Name,
		Metabolites: make([]network.Metabolite, 0, len(s.Metabolites)),
		Reactions:   make([]network.Reaction, 0, len(s.Reactions)),
	}
	for _, m := range s.Metabolites {
		n.Metabolites = append(n.Metabolites, network.Metabolite{
			ID:          m.ID,
			Name:        m.Name,
			Compartment: m.Compartment,
		})
	}
	for _, r := range s.Reactions {
		reactants, err := l.translateParticipants(ctx, r, r.Reactants, evalCtx)
		if err != nil {
			return nil, err
		}
		products, err := l.translateParticipants(ctx, r, r.Products, evalCtx)
		if err != nil {
			return nil, err
		}
		n.Reactions = append(n.Reactions, network.Reaction{
			ID:         r.ID,
			Name:       r.Name,
			Reversible: r.Reversible,
			Reactants:  reactants,
			Products:   products,
		})
	}
	return n, nil
}

// evalContext exposes the network's locals as `local.<name>`.
func (l *Loader) evalContext(s *Network) (*hcl.EvalContext, error) {
	locals := map[string]cty.Value{}
	if s.Locals != nil && s.Locals.Body != nil {
		attrs, diags := s.Locals.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, network.Errorf(network.ErrParse, "network %q: invalid locals: %s", s.ID, diags.Error())
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, network.Errorf(network.ErrParse, "network %q: local %q: %s", s.ID, name, diags.Error())
			}
			locals[name] = val
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"local": cty.ObjectVal(locals)},
	}, nil
}

func (l *Loader) translateParticipants(ctx context.Context, r *Reaction, ps []*Participant, evalCtx *hcl.EvalContext) ([]network.Participant, error) {
	out := make([]network.Participant, 0, len(ps))
	for _, p := range ps {
		s, err := l.stoichiometry(ctx, p.Stoichiometry, evalCtx)
		if err != nil {
			return nil, network.Errorf(network.ErrParse, "reaction %q: metabolite %q: %v", r.ID, p.Metabolite, err)
		}
		out = append(out, network.Participant{Metabolite: p.Metabolite, Stoichiometry: s})
	}
	return out, nil
}

// stoichiometry evaluates expr to a magnitude. Null means 1.
func (l *Loader) stoichiometry(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) (float64, error) {
	if expr == nil {
		return 1, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return 0, diags
	}
	if val.IsNull() {
		return 1, nil
	}
	if !val.IsWhollyKnown() {
		return 0, fmt.Errorf("stoichiometry is not known")
	}

	num, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %s to number: %w", val.Type().FriendlyName(), err)
	}
	if !val.Type().Equals(cty.Number) {
		ctxlog.FromContext(ctx).Debug("Implicitly converted stoichiometry.", "from", val.Type().FriendlyName())
	}

	var f float64
	if err := gocty.FromCtyValue(num, &f); err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("stoichiometry %g is negative", f)
	}
	return f, nil
}
