package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/contractexplorer/internal/config"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/specialistvlad/contractexplorer/internal/manifest"
	"github.com/specialistvlad/contractexplorer/internal/metadata"
	"github.com/specialistvlad/contractexplorer/internal/metrics"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/registry"
	"github.com/specialistvlad/contractexplorer/internal/rpc"
	"github.com/specialistvlad/contractexplorer/internal/server"
	"github.com/specialistvlad/contractexplorer/internal/signatures"
	"github.com/specialistvlad/contractexplorer/internal/transport"
	"github.com/specialistvlad/contractexplorer/internal/view"
	"github.com/specialistvlad/contractexplorer/internal/wallet"
	"resty.dev/v3"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx       context.Context
	outW      io.Writer
	logger    *slog.Logger
	logCloser io.Closer
	config    *Config
	cfgLoader config.Loader

	networks *network.Provider
	registry *registry.Registry
	metrics  *metrics.Metrics
	http     *resty.Client
	fetcher  *metadata.Fetcher
	checker  *signatures.Checker
	signer   wallet.Signer

	mu        sync.Mutex
	result    *loader.Result
	resultGen uint64
	reloads   atomic.Uint64

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration errors are fatal and panic; the entrypoint recovers them.
func NewApp(outW io.Writer, appConfig *Config, cfgLoader config.Loader, modules ...registry.Module) *App {
	logger, logCloser := newLogger(appConfig.LogLevel, appConfig.LogFormat, appConfig.LogFile, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := cfgLoader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	effective := merge(*appConfig, model)
	logger.Debug("Configuration loaded.", "config", appConfig.ConfigPath, "contracts_dir", effective.ContractsDir, "listen", effective.Listen)

	networks, err := network.NewProvider(toNetworks(model.Networks), effective.Network)
	if err != nil {
		panic(fmt.Errorf("failed to configure networks: %w", err))
	}
	logger.Debug("Networks configured.", "active", networks.Active().ID, "count", len(networks.List()))

	reg := registry.New(networks)
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Keys the loader would skip are a mistake in a module, not fatal.
	if err := reg.Validate(ctx); err != nil {
		logger.Warn("Registry validation failed.", "error", err)
	}

	hc := transport.New(0)
	fetcher, err := metadata.NewFetcher(ctx, rpc.New(hc), effective.MetadataTTL)
	if err != nil {
		panic(err)
	}

	var signer wallet.Signer = wallet.Passthrough{}
	if model.Wallet != nil && model.Wallet.BridgeURL != "" {
		signer = &wallet.SocketIO{URL: model.Wallet.BridgeURL, Timeout: model.Wallet.Timeout}
		logger.Debug("Wallet bridge configured.", "url", model.Wallet.BridgeURL)
	}

	return &App{
		ctx:       ctx,
		outW:      outW,
		logger:    logger,
		logCloser: logCloser,
		config:    &effective,
		cfgLoader: cfgLoader,
		networks:  networks,
		registry:  reg,
		metrics:   metrics.New(),
		http:      hc,
		fetcher:   fetcher,
		checker:   signatures.NewChecker(signatures.NewHorizon(hc)),
		signer:    signer,
	}
}

// merge fills the empty fields of cfg from the config file and the defaults.
func merge(cfg Config, model *config.Model) Config {
	file := model.Explorer
	if cfg.ContractsDir == "" {
		cfg.ContractsDir = file.ContractsDir
	}
	if cfg.ContractsDir == "" {
		cfg.ContractsDir = DefaultContractsDir
	}
	if cfg.Listen == "" {
		cfg.Listen = file.Listen
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Network == "" {
		cfg.Network = file.ActiveNetwork
	}
	if cfg.LoadConcurrency == 0 {
		cfg.LoadConcurrency = file.LoadConcurrency
	}
	if cfg.MetadataTTL == 0 {
		cfg.MetadataTTL = file.MetadataTTL
	}
	return cfg
}

func toNetworks(defs []*config.Network) []network.Network {
	out := make([]network.Network, 0, len(defs))
	for _, d := range defs {
		out = append(out, network.Network{
			ID:             d.ID,
			Label:          d.Label,
			Passphrase:     d.Passphrase,
			RPCURL:         d.RPCURL,
			HorizonURL:     d.HorizonURL,
			RPCHeaders:     d.RPCHeaders,
			HorizonHeaders: d.HorizonHeaders,
		})
	}
	return out
}

// withLogger attaches the app logger unless ctx already carries one.
func (a *App) withLogger(ctx context.Context) context.Context {
	if ctxlog.FromContext(ctx) == slog.Default() {
		return ctxlog.WithLogger(ctx, a.logger)
	}
	return ctx
}

// Sources merges the compiled-in modules with the manifests found in the
// contracts directory. A directory that cannot be scanned is logged and
// skipped.
func (a *App) Sources(ctx context.Context) map[string]any {
	ctx = a.withLogger(ctx)
	sources := a.registry.Sources()

	found, err := manifest.Sources(ctx, a.cfgLoader, a.config.ContractsDir, a.networks)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Failed to scan contracts directory.", "dir", a.config.ContractsDir, "error", err)
		return sources
	}
	for key, factory := range found {
		sources[key] = factory
	}
	return sources
}

// Reload runs the loader over all sources and makes the result current.
// When reloads overlap, the one started last wins: an older reload that
// finishes later is discarded and the current result is returned instead.
func (a *App) Reload(ctx context.Context) *loader.Result {
	ctx = a.withLogger(ctx)
	gen := a.reloads.Add(1)
	res := loader.LoadModules(ctx, a.Sources(ctx),
		loader.WithConcurrency(a.config.LoadConcurrency),
		loader.WithObserver(a.metrics.ObserveContract),
	)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen < a.resultGen {
		ctxlog.FromContext(ctx).Debug("Discarding stale contract load.", "generation", gen, "current", a.resultGen)
		return a.result
	}
	a.result, a.resultGen = res, gen
	a.metrics.SetContracts(len(res.Loaded), len(res.Failed))
	return res
}

// Contracts returns the current load result, loading on first use.
func (a *App) Contracts() *loader.Result {
	a.mu.Lock()
	res := a.result
	a.mu.Unlock()
	if res != nil {
		return res
	}
	return a.Reload(a.ctx)
}

// Handler returns the explorer HTTP handler bound to this app.
func (a *App) Handler() http.Handler {
	return server.New(server.Deps{
		Contracts:  a,
		Networks:   a.networks,
		Metadata:   a.fetcher,
		Signatures: a.checker,
		Signer:     a.signer,
		Metrics:    a.metrics,
		Logger:     a.logger,
		Modal:      view.NewModal(a.config.OpenOnStart, view.Placement(a.config.Placement)),
	})
}

// Close releases the app's clients, caches and log file.
func (a *App) Close() error {
	return errors.Join(
		a.closeHTTPServer(),
		a.fetcher.Close(a.ctx),
		a.http.Close(),
		a.logCloser.Close(),
	)
}

// Context returns the app's base context, which carries its logger.
func (a *App) Context() context.Context { return a.ctx }

// Config returns the effective configuration.
func (a *App) Config() *Config { return a.config }

// Networks returns the network provider.
func (a *App) Networks() *network.Provider { return a.networks }

// Metadata returns the metadata fetcher.
func (a *App) Metadata() *metadata.Fetcher { return a.fetcher }

// Signatures returns the signature checker.
func (a *App) Signatures() *signatures.Checker { return a.checker }

// Signer returns the configured wallet signer.
func (a *App) Signer() wallet.Signer { return a.signer }

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
