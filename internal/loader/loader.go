package loader

import (
	"context"
	"sort"
	"time"

	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Failure messages recorded for entries that never produced a module.
const (
	MsgInvalidImport = "Invalid import function"
	MsgInvalidModule = "Invalid contract module"
)

// Result partitions the outcome of one LoadModules call.
type Result struct {
	Loaded map[string]*contract.Module `json:"-"`
	Failed map[string]string           `json:"failed"`
	// Names lists loaded identifiers in processing order, then failed ones.
	Names []string `json:"names"`
	// Shadowed lists source keys that were not processed because an earlier
	// key produced the same identifier.
	Shadowed []string `json:"shadowed"`
}

// Module returns the loaded module for name.
func (r *Result) Module(name string) (*contract.Module, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.Loaded[name]
	return m, ok
}

// Failure returns the failure message recorded for name.
func (r *Result) Failure(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	msg, ok := r.Failed[name]
	return msg, ok
}

// Has reports whether name is one of the result's identifiers.
func (r *Result) Has(name string) bool {
	_, loaded := r.Module(name)
	_, failed := r.Failure(name)
	return loaded || failed
}

// Observer is notified once per processed entry.
type Observer func(id string, ok bool, elapsed time.Duration)

type options struct {
	concurrency int
	observer    Observer
}

// Option configures LoadModules.
type Option func(*options)

// WithConcurrency bounds how many factories are resolved at once. Values
// below 2 load sequentially.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithObserver registers a callback invoked after each entry settles. It may
// be called from several goroutines.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

type entry struct {
	key     string
	id      string
	factory any
}

type outcome struct {
	module  *contract.Module
	failure string
}

// plan orders the sources by key and applies the skip and collision rules.
func plan(sources map[string]any) (entries []entry, shadowed []string) {
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	owners := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		id := Identifier(k)
		if Skipped(id) {
			continue
		}
		if _, taken := owners[id]; taken {
			shadowed = append(shadowed, k)
			continue
		}
		owners[id] = struct{}{}
		entries = append(entries, entry{key: k, id: id, factory: sources[k]})
	}
	return entries, shadowed
}

// LoadModules resolves every factory in sources and partitions the results.
//
// Supported factory shapes are func() (any, error), func() any,
// func(context.Context) (any, error), func() Deferred and values implementing
// Factory. Any other value is recorded as MsgInvalidImport without being
// called. Errors, rejections and panics become the entry's failure message.
// A resolved value that is not a contract module is recorded as
// MsgInvalidModule.
//
// LoadModules never fails as a whole. Cancelling ctx only cuts short entries
// that are still awaiting a Deferred.
func LoadModules(ctx context.Context, sources map[string]any, opts ...Option) *Result {
	o := options{concurrency: 1}
	for _, opt := range opts {
		opt(&o)
	}
	logger := ctxlog.FromContext(ctx)

	entries, shadowed := plan(sources)
	for _, key := range shadowed {
		logger.Warn("Contract module shadowed by an earlier source.", "key", key, "contract", Identifier(key))
	}

	outcomes := make([]outcome, len(entries))
	run := func(i int) {
		start := time.Now()
		outcomes[i] = loadOne(ctx, entries[i])
		if o.observer != nil {
			o.observer(entries[i].id, outcomes[i].module != nil, time.Since(start))
		}
	}

	if o.concurrency < 2 {
		for i := range entries {
			run(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.concurrency)
		for i := range entries {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := &Result{
		Loaded:   make(map[string]*contract.Module),
		Failed:   make(map[string]string),
		Names:    make([]string, 0, len(entries)),
		Shadowed: append([]string{}, shadowed...),
	}
	var failedNames []string
	for i, e := range entries {
		out := outcomes[i]
		if out.module != nil {
			res.Loaded[e.id] = out.module
			res.Names = append(res.Names, e.id)
			continue
		}
		logger.Warn("Failed to load contract module.", "contract", e.id, "key", e.key, "error", out.failure)
		res.Failed[e.id] = out.failure
		failedNames = append(failedNames, e.id)
	}
	res.Names = append(res.Names, failedNames...)

	logger.Info("Contract modules loaded.", "loaded", len(res.Loaded), "failed", len(res.Failed), "shadowed", len(res.Shadowed))
	return res
}

func loadOne(ctx context.Context, e entry) outcome {
	fn := invocable(e.factory)
	if fn == nil {
		return outcome{failure: MsgInvalidImport}
	}

	value, err := resolve(ctx, fn)
	if err != nil {
		return outcome{failure: err.Error()}
	}

	m, ok := AsContractModule(value)
	if !ok {
		return outcome{failure: MsgInvalidModule}
	}
	return outcome{module: m}
}
