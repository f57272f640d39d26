package hcl_adapter

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/contractexplorer/internal/config"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
// It is safe for concurrent use; every call parses with its own parser.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses the explorer configuration file at path.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	if path == "" {
		return &config.Model{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Config file not found, using defaults.", "path", path)
			return &config.Model{}, nil
		}
		return nil, fmt.Errorf("error accessing config file %s: %w", path, err)
	}

	hclFile, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root configRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model, err := translateConfig(ctx, &root)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	logger.Debug("Config file loaded.", "path", path, "networks", len(model.Networks))
	return model, nil
}

// LoadManifest parses a single contract manifest. A manifest without a
// contract block is returned with no contracts; deciding whether that is
// acceptable is up to the caller.
func (l *Loader) LoadManifest(ctx context.Context, path string) (*config.Manifest, error) {
	logger := ctxlog.FromContext(ctx).With("manifest", path)

	hclFile, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse contract manifest %s: %w", path, diags)
	}

	var root manifestRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode contract manifest %s: %w", path, diags)
	}

	m := &config.Manifest{Path: path}
	for _, c := range root.Contracts {
		def, err := translateContract(ctxlog.WithLogger(ctx, logger), c)
		if err != nil {
			return nil, fmt.Errorf("in contract manifest %s: %w", path, err)
		}
		m.Contracts = append(m.Contracts, def)
	}
	logger.Debug("Contract manifest parsed.", "contracts", len(m.Contracts))
	return m, nil
}
