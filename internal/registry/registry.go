package registry

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strings"

	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/specialistvlad/contractexplorer/internal/network"
)

// KeyPrefix is prepended to the source keys of compiled-in modules.
const KeyPrefix = "builtin/"

// Module is the interface that all compiled-in modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Networks reports the network that factories should bind clients to.
type Networks interface {
	Active() network.Network
}

// Registry holds the registered contract factories for a single application
// instance.
type Registry struct {
	networks  Networks
	factories map[string]any
}

// New creates an empty Registry whose modules resolve against networks.
func New(networks Networks) *Registry {
	return &Registry{
		networks:  networks,
		factories: make(map[string]any),
	}
}

// Network returns the network active right now. Factories call it when they
// are invoked, not when they are registered.
func (r *Registry) Network() network.Network {
	return r.networks.Active()
}

// RegisterContract adds a factory under KeyPrefix+name. Registering the same
// name twice is a programming error and panics.
func (r *Registry) RegisterContract(name string, factory any) {
	key := KeyPrefix + name
	if _, exists := r.factories[key]; exists {
		panic(fmt.Sprintf("contract module '%s' already registered", key))
	}
	slog.Debug("Registering contract module.", "key", key)
	r.factories[key] = factory
}

// Sources returns a copy of the registered factories keyed by source key.
func (r *Registry) Sources() map[string]any {
	return maps.Clone(r.factories)
}

// Validate reports registered keys that the loader would silently skip.
func (r *Registry) Validate(ctx context.Context) error {
	var bad []string
	for key := range r.factories {
		if loader.Skipped(loader.Identifier(key)) {
			bad = append(bad, key)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	ctxlog.FromContext(ctx).Debug("Registry validation found skipped keys.", "keys", bad)
	return fmt.Errorf("registry validation failed: modules will never load: %s", strings.Join(bad, ", "))
}
