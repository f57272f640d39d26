// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/contractexplorer/internal/config"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
)

func translateConfig(ctx context.Context, root *configRoot) (*config.Model, error) {
	model := &config.Model{}

	if e := root.Explorer; e != nil {
		model.Explorer = config.Explorer{
			ContractsDir:  deref(e.ContractsDir),
			Listen:        deref(e.Listen),
			ActiveNetwork: deref(e.ActiveNetwork),
		}
		if e.LoadConcurrency != nil {
			model.Explorer.LoadConcurrency = *e.LoadConcurrency
		}
		ttl, err := parseDuration(e.MetadataTTL, "metadata_ttl")
		if err != nil {
			return nil, err
		}
		model.Explorer.MetadataTTL = ttl
	}

	seen := make(map[string]struct{}, len(root.Networks))
	for _, n := range root.Networks {
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("network %q is defined more than once", n.ID)
		}
		seen[n.ID] = struct{}{}

		label := deref(n.Label)
		if label == "" {
			label = n.ID
		}
		model.Networks = append(model.Networks, &config.Network{
			ID:             n.ID,
			Label:          label,
			Passphrase:     n.Passphrase,
			RPCURL:         n.RPCURL,
			HorizonURL:     deref(n.HorizonURL),
			RPCHeaders:     n.RPCHeaders,
			HorizonHeaders: n.HorizonHeaders,
		})
	}

	if w := root.Wallet; w != nil {
		timeout, err := parseDuration(w.Timeout, "timeout")
		if err != nil {
			return nil, err
		}
		model.Wallet = &config.Wallet{BridgeURL: w.BridgeURL, Timeout: timeout}
	}

	ctxlog.FromContext(ctx).Debug("Translated HCL config to internal model.")
	return model, nil
}

// translateContract converts a contract block into the agnostic model.
func translateContract(ctx context.Context, c *contractBlock) (*config.ContractDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("contract", c.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	def := &config.ContractDefinition{
		Name:        c.Name,
		ContractID:  c.ContractID,
		Description: deref(c.Description),
	}

	methods := make(map[string]struct{}, len(c.Methods))
	for _, m := range c.Methods {
		if _, dup := methods[m.Name]; dup {
			return nil, fmt.Errorf("contract '%s': method '%s' is defined more than once", c.Name, m.Name)
		}
		methods[m.Name] = struct{}{}

		method := &config.MethodDefinition{
			Name:        m.Name,
			Description: deref(m.Description),
			ReadOnly:    m.ReadOnly != nil && *m.ReadOnly,
		}

		args := make(map[string]struct{}, len(m.Args))
		for _, a := range m.Args {
			if _, dup := args[a.Name]; dup {
				return nil, fmt.Errorf("contract '%s', method '%s': arg '%s' is defined more than once", c.Name, m.Name, a.Name)
			}
			args[a.Name] = struct{}{}

			arg, err := translateArg(ctx, a)
			if err != nil {
				return nil, fmt.Errorf("contract '%s', method '%s', arg '%s': %w", c.Name, m.Name, a.Name, err)
			}
			method.Args = append(method.Args, arg)
		}
		def.Methods = append(def.Methods, method)
	}

	logger.Debug("Translated contract definition.", "methods", len(def.Methods))
	return def, nil
}

func translateArg(ctx context.Context, a *argBlock) (*config.ArgDefinition, error) {
	arg := &config.ArgDefinition{Name: a.Name, Description: deref(a.Description)}

	var typeExpr = a.Type
	if !isExprDefined(ctx, typeExpr, "type") {
		typeExpr = nil
	}
	ty, kind, err := typeExprToCtyType(ctx, typeExpr)
	if err != nil {
		return nil, err
	}
	arg.Type, arg.Kind = ty, kind
	return arg, nil
}

func parseDuration(s *string, attr string) (time.Duration, error) {
	if s == nil || *s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", attr, *s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", attr, *s)
	}
	return d, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
