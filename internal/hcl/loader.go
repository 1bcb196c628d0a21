package hcl

import (
	"context"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/fluxgrid/internal/ctxlog"
	"github.com/specialistvlad/fluxgrid/internal/network"
)

// Loader is the HCL implementation of the network.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL network loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the file at path, which must hold exactly one network block.
func (l *Loader) Load(ctx context.Context, path string) (*network.Network, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, network.Errorf(network.ErrIO, "failed to read HCL file: %v", err)
	}
	return l.LoadBytes(ctx, src, path)
}

// LoadBytes parses src as if it were read from filename.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*network.Network, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, network.Errorf(network.ErrParse, "failed to parse HCL file %s: %s", filename, diags.Error())
	}
	return l.decode(ctx, filename, file.Body)
}

func (l *Loader) decode(ctx context.Context, path string, body hcl.Body) (*network.Network, error) {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, network.Errorf(network.ErrParse, "failed to decode HCL file %s: %s", path, diags.Error())
	}
	if len(root.Networks) != 1 {
		return nil, network.Errorf(network.ErrParse, "%s: expected exactly one network block, found %d", path, len(root.Networks))
	}

	n, err := l.translateNetwork(ctx, root.Networks[0])
	if err != nil {
		return nil, err
	}
	n.Source = path
	logger.Debug("HCL loading complete.", "network", n.ID, "metabolites", len(n.Metabolites), "reactions", len(n.Reactions))
	return n, nil
}
