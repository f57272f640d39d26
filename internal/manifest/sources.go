package manifest

import (
	"context"
	"fmt"

	"github.com/specialistvlad/contractexplorer/internal/config"
	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/specialistvlad/contractexplorer/internal/fsutil"
	"github.com/specialistvlad/contractexplorer/internal/network"
)

const manifestExtension = ".hcl"

// ActiveNetwork reports the network clients should be bound to.
type ActiveNetwork interface {
	Active() network.Network
}

// Resolve loads the manifest at path and builds its contract module. A
// manifest without a contract block yields a module with no default client.
func Resolve(ctx context.Context, cfg config.Loader, path string, net network.Network) (*contract.Module, error) {
	m, err := cfg.LoadManifest(ctx, path)
	if err != nil {
		return nil, err
	}

	switch len(m.Contracts) {
	case 0:
		return &contract.Module{}, nil
	case 1:
	default:
		return nil, fmt.Errorf("contract manifest %s defines %d contracts, expected one", path, len(m.Contracts))
	}

	client, err := NewClient(m.Contracts[0], net)
	if err != nil {
		return nil, err
	}
	return &contract.Module{Default: client}, nil
}

// Sources finds every manifest under dir and returns a loader source map
// keyed by file path. Nothing is parsed until a factory is invoked, and each
// factory binds its client to the network active at that moment.
func Sources(ctx context.Context, cfg config.Loader, dir string, nets ActiveNetwork) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := fsutil.FindFilesByExtension(dir, manifestExtension)
	if err != nil {
		return nil, fmt.Errorf("failed to scan contracts directory %s: %w", dir, err)
	}
	logger.Debug("Found contract manifests.", "dir", dir, "count", len(paths))

	sources := make(map[string]any, len(paths))
	for _, path := range paths {
		sources[path] = func(ctx context.Context) (any, error) {
			return Resolve(ctx, cfg, path, nets.Active())
		}
	}
	return sources, nil
}
